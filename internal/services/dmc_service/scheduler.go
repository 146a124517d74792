package dmc_service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/iwtcode/dmcAdapter/internal/middleware/logging"
)

// Job - единица работы, выполняемая на рабочем потоке планировщика.
type Job func() error

// PeriodicJob - зарегистрированная периодическая задача. Планировщик ведет
// для нее абсолютный дедлайн следующего запуска, поэтому интервалы не
// накапливают дрейф.
type PeriodicJob struct {
	id        string
	interval  time.Duration
	next      time.Time
	fn        Job
	cancelled atomic.Bool
}

// ID возвращает идентификатор задачи.
func (p *PeriodicJob) ID() string { return p.id }

// Cancel отменяет задачу до ее следующего запуска. Уже начавшийся вызов
// доработает до конца.
func (p *PeriodicJob) Cancel() { p.cancelled.Store(true) }

// Scheduler владеет единственным рабочим потоком, который в порядке FIFO
// выполняет разовые задачи и перемежает их периодическими. Это единственный
// контекст, которому разрешено обращаться к Controller.
type Scheduler struct {
	queue  chan Job
	addCh  chan *PeriodicJob
	stopCh chan struct{}
	doneCh chan struct{}

	stopOnce sync.Once
	drain    atomic.Bool
	onError  func(error)
	logger   *logging.Logger
}

// idleWait - время сна рабочего потока при отсутствии периодических задач.
const idleWait = time.Hour

// joinTimeout - предельное время ожидания завершения рабочего потока.
const joinTimeout = 5 * time.Second

// NewScheduler создает планировщик и запускает рабочий поток.
// onError вызывается на рабочем потоке для каждой ошибки задачи.
func NewScheduler(onError func(error), logger *logging.Logger) *Scheduler {
	s := &Scheduler{
		queue:   make(chan Job, 64),
		addCh:   make(chan *PeriodicJob),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		onError: onError,
		logger:  logger.WithPrefix("SCHEDULER"),
	}
	go s.run()
	return s
}

// Submit ставит разовую задачу в очередь.
func (s *Scheduler) Submit(fn Job) error {
	select {
	case <-s.stopCh:
		return fmt.Errorf("scheduler is stopped")
	default:
	}
	select {
	case s.queue <- fn:
		return nil
	case <-s.stopCh:
		return fmt.Errorf("scheduler is stopped")
	}
}

// Schedule регистрирует периодическую задачу с заданным интервалом.
func (s *Scheduler) Schedule(interval time.Duration, fn Job) (*PeriodicJob, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", interval)
	}
	job := &PeriodicJob{
		id:       uuid.New().String(),
		interval: interval,
		fn:       fn,
	}
	select {
	case s.addCh <- job:
		return job, nil
	case <-s.stopCh:
		return nil, fmt.Errorf("scheduler is stopped")
	}
}

// Shutdown останавливает периодические задачи и рабочий поток. При drain
// оставшиеся в очереди разовые задачи выполняются, иначе отбрасываются.
// Ожидание завершения ограничено joinTimeout.
func (s *Scheduler) Shutdown(drain bool) {
	s.stopOnce.Do(func() {
		s.drain.Store(drain)
		close(s.stopCh)
	})
	select {
	case <-s.doneCh:
	case <-time.After(joinTimeout):
		s.logger.Warn("Worker did not stop within join timeout")
	}
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	var periodic []*PeriodicJob
	timer := time.NewTimer(idleWait)
	defer timer.Stop()

	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		periodic = compact(periodic)
		timer.Reset(s.nextWait(periodic))

		select {
		case <-s.stopCh:
			s.finish()
			return
		case fn := <-s.queue:
			// Остановка и готовая задача могли совпасть: уже извлеченная
			// задача подчиняется флагу drain, как и остаток очереди.
			select {
			case <-s.stopCh:
				if s.drain.Load() {
					s.exec(fn)
				}
				s.finish()
				return
			default:
			}
			s.exec(fn)
		case job := <-s.addCh:
			job.next = time.Now().Add(job.interval)
			periodic = append(periodic, job)
		case <-timer.C:
			now := time.Now()
			for _, job := range periodic {
				if job.cancelled.Load() || job.next.After(now) {
					continue
				}
				s.exec(job.fn)
				// Дедлайн абсолютный: пропущенные такты не навёрстываются.
				for !job.next.After(time.Now()) {
					job.next = job.next.Add(job.interval)
				}
			}
		}
	}
}

// finish дорабатывает или отбрасывает очередь после остановки.
func (s *Scheduler) finish() {
	for {
		select {
		case fn := <-s.queue:
			if s.drain.Load() {
				s.exec(fn)
			}
		default:
			s.logger.Info("Worker stopped", "drained", s.drain.Load())
			return
		}
	}
}

// exec выполняет задачу, гасит панику и сообщает об ошибках через onError.
// Ошибка задачи никогда не завершает рабочий поток.
func (s *Scheduler) exec(fn Job) {
	defer func() {
		if r := recover(); r != nil {
			s.report(fmt.Errorf("job panic: %v", r))
		}
	}()
	if err := fn(); err != nil {
		s.report(err)
	}
}

func (s *Scheduler) report(err error) {
	s.logger.Error("Job failed", "error", err)
	if s.onError != nil {
		s.onError(err)
	}
}

func (s *Scheduler) nextWait(periodic []*PeriodicJob) time.Duration {
	wait := idleWait
	now := time.Now()
	for _, job := range periodic {
		if job.cancelled.Load() {
			continue
		}
		d := job.next.Sub(now)
		if d < 0 {
			d = 0
		}
		if d < wait {
			wait = d
		}
	}
	return wait
}

func compact(periodic []*PeriodicJob) []*PeriodicJob {
	kept := periodic[:0]
	for _, job := range periodic {
		if !job.cancelled.Load() {
			kept = append(kept, job)
		}
	}
	return kept
}
