package dmc_service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/iwtcode/dmcAdapter/internal/config"
	"github.com/iwtcode/dmcAdapter/internal/domain/models"
	"github.com/iwtcode/dmcAdapter/internal/interfaces"
	"github.com/iwtcode/dmcAdapter/internal/middleware/logging"
)

// dmcService - фасад над контроллером, планировщиком и состоянием.
// Каждая операция с устройством заворачивается в задачу планировщика:
// вызывающая сторона блокируется до результата, но устройство всегда
// видит команды строго последовательно.
type dmcService struct {
	cfg      *config.AppConfig
	logger   *logging.Logger
	producer interfaces.KafkaService

	controller *Controller
	scheduler  *Scheduler
	state      *MachineState

	pollMu  sync.Mutex
	pollJob *PeriodicJob
}

// NewDmcService создает сервис и запускает рабочий поток планировщика.
// producer может быть nil, тогда телеметрия не публикуется.
func NewDmcService(cfg *config.AppConfig, logger *logging.Logger, producer interfaces.KafkaService, dial interfaces.LinkDialer) interfaces.DmcService {
	svcLogger := logger.WithPrefix("DMC")
	state := NewMachineState(cfg.Device.AlertCapacity)
	controller := NewController(dial, cfg.Device, svcLogger)

	// Граница задачи: любая ошибка попадает в журнал состояния
	// и никогда не завершает рабочий поток.
	onError := func(err error) {
		state.Alert(models.SeverityError, err.Error())
	}
	scheduler := NewScheduler(onError, svcLogger)

	return &dmcService{
		cfg:        cfg,
		logger:     svcLogger,
		producer:   producer,
		controller: controller,
		scheduler:  scheduler,
		state:      state,
	}
}

// do выполняет fn на рабочем потоке и возвращает результат синхронно.
func (s *dmcService) do(fn func() error) error {
	errCh := make(chan error, 1)
	if err := s.scheduler.Submit(func() error {
		err := fn()
		errCh <- err
		return err
	}); err != nil {
		return err
	}
	select {
	case err := <-errCh:
		return err
	case <-s.scheduler.doneCh:
		// При drain задача могла успеть выполниться до остановки.
		select {
		case err := <-errCh:
			return err
		default:
			return fmt.Errorf("scheduler is stopped")
		}
	}
}

// --- ConnectionManager ---

func (s *dmcService) Connect(address string) error {
	return s.do(func() error {
		if err := s.controller.Connect(address); err != nil {
			return err
		}
		s.state.SetConnected(true, address)
		s.state.Alert(models.SeverityInfo, "Connected to: "+address)
		return nil
	})
}

func (s *dmcService) Disconnect() error {
	return s.do(func() error {
		s.controller.Disconnect()
		s.state.SetConnected(false, s.controller.Address())
		s.state.Alert(models.SeverityInfo, "Disconnected")
		return nil
	})
}

func (s *dmcService) IsConnected() bool {
	return s.controller.IsConnected()
}

func (s *dmcService) Cmd(text string) (string, error) {
	var resp string
	err := s.do(func() error {
		var err error
		resp, err = s.controller.Cmd(text)
		return err
	})
	return resp, err
}

// --- MotionManager ---

func (s *dmcService) Jog(axis byte, speed float64) error {
	return s.do(func() error {
		return s.controller.Jog(axis, speed)
	})
}

func (s *dmcService) StopJog(axis byte) error {
	return s.do(func() error {
		return s.controller.StopJog(axis)
	})
}

func (s *dmcService) TeachPoint(name string) (models.PointRecord, error) {
	var record models.PointRecord
	err := s.do(func() error {
		var err error
		record, err = s.controller.TeachPoint(name)
		if err == nil {
			s.state.Alert(models.SeverityInfo, "Point taught: "+name)
		}
		return err
	})
	return record, err
}

func (s *dmcService) ListAddresses() []string {
	var names []string
	_ = s.do(func() error {
		names = s.controller.ListAddresses()
		return nil
	})
	return names
}

func (s *dmcService) EStop() error {
	return s.do(func() error {
		err := s.controller.EStop()
		s.state.SetConnected(false, s.controller.Address())
		s.state.Alert(models.SeverityWarn, "E-STOP triggered")
		return err
	})
}

// --- ArrayManager ---

func (s *dmcService) ReadArray(name string, length int) ([]float64, error) {
	var out []float64
	err := s.do(func() error {
		var err error
		out, err = s.controller.ReadArray(name, length)
		return err
	})
	return out, err
}

func (s *dmcService) WriteArray(name string, data []float64) error {
	return s.do(func() error {
		return s.controller.WriteArray(name, data)
	})
}

// --- PollingManager ---

func (s *dmcService) StartPolling(interval time.Duration) error {
	if interval <= 0 {
		interval = s.cfg.Device.PollInterval
	}

	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	if s.pollJob != nil {
		return fmt.Errorf("polling is already started")
	}

	job, err := s.scheduler.Schedule(interval, s.poll)
	if err != nil {
		return err
	}
	s.pollJob = job
	s.logger.Info("Polling started", "interval", interval, "jobID", job.ID())
	return nil
}

func (s *dmcService) StopPolling() error {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	if s.pollJob == nil {
		return fmt.Errorf("polling is not started")
	}
	s.pollJob.Cancel()
	s.logger.Info("Polling stopped", "jobID", s.pollJob.ID())
	s.pollJob = nil
	return nil
}

func (s *dmcService) IsPollingActive() bool {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	return s.pollJob != nil
}

// poll - периодическая задача опроса. Вне соединения такт пропускается.
func (s *dmcService) poll() error {
	if !s.controller.IsConnected() {
		return nil
	}
	axes, err := s.controller.ReadStatus()
	if err != nil {
		return fmt.Errorf("poll error: %w", err)
	}
	s.state.UpdateStatus(axes)
	s.publish()
	return nil
}

// publish отправляет свежий снапшот в Kafka, если продюсер настроен.
func (s *dmcService) publish() {
	if s.producer == nil {
		return
	}
	record := models.TelemetryRecord{
		Address:   s.controller.Address(),
		Timestamp: time.Now(),
		Snapshot:  s.state.Snapshot(),
	}
	value, err := json.Marshal(record)
	if err != nil {
		s.logger.Error("Failed to serialize telemetry", "error", err)
		return
	}
	if err := s.producer.Produce(context.Background(), []byte(record.Address), value); err != nil {
		s.logger.Error("Failed to send telemetry to Kafka", "error", err)
	}
}

// --- Состояние и наблюдатели ---

func (s *dmcService) Snapshot() models.StatusSnapshot {
	return s.state.Snapshot()
}

func (s *dmcService) Messages() []models.AlertMessage {
	return s.state.Messages()
}

func (s *dmcService) Subscribe(obs interfaces.Observer) string {
	return s.state.Subscribe(obs)
}

func (s *dmcService) Unsubscribe(token string) {
	s.state.Unsubscribe(token)
}

// Shutdown останавливает опрос и рабочий поток, затем разрывает соединение.
func (s *dmcService) Shutdown(drain bool) {
	s.pollMu.Lock()
	if s.pollJob != nil {
		s.pollJob.Cancel()
		s.pollJob = nil
	}
	s.pollMu.Unlock()

	s.scheduler.Shutdown(drain)
	// Рабочий поток остановлен, прямой вызов безопасен.
	s.controller.Disconnect()
	s.state.SetConnected(false, s.controller.Address())
}
