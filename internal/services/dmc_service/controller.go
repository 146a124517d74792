package dmc_service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/iwtcode/dmcAdapter/internal/config"
	"github.com/iwtcode/dmcAdapter/internal/domain/models"
	"github.com/iwtcode/dmcAdapter/internal/interfaces"
	"github.com/iwtcode/dmcAdapter/internal/middleware/logging"
	apperrors "github.com/iwtcode/dmcAdapter/pkg/errors"
)

// statusQuery запрашивает позиции и состояния выключателей всех осей одной командой.
const statusQuery = "MG{Z10.0} _RPA, _RPB, _RPC, _RPD, _TSA, _TSB, _TSC, _TSD"

// positionQuery запрашивает только позиции осей (для обучения точек).
const positionQuery = "MG{Z10.0} _RPA, _RPB, _RPC, _RPD"

// revisionQuery - запрос отчета о ревизии прошивки (Ctrl-R Ctrl-V).
// Ответ идентифицирует модель, например "DMC4080 Rev 1.3c".
const revisionQuery = "\x12\x16"

// Controller сериализует весь обмен с контроллером DMC через DeviceLink.
// Все методы, кроме IsConnected, должны вызываться только из рабочего
// потока планировщика: устройство не переносит чередования команд.
type Controller struct {
	dial   interfaces.LinkDialer
	cfg    config.DeviceConfig
	logger *logging.Logger

	link      interfaces.DeviceLink
	connected atomic.Bool
	address   string
	faults    int

	points map[string]models.PointRecord
}

// NewController создает новый контроллер поверх фабрики линков.
func NewController(dial interfaces.LinkDialer, cfg config.DeviceConfig, logger *logging.Logger) *Controller {
	return &Controller{
		dial:   dial,
		cfg:    cfg,
		logger: logger.WithPrefix("CONTROLLER"),
		points: make(map[string]models.PointRecord),
	}
}

// Connect открывает линк и проверяет, что на другом конце контроллер DMC.
func (c *Controller) Connect(address string) error {
	if c.connected.Load() {
		return fmt.Errorf("already connected to %s", c.address)
	}

	link := c.dial()
	if err := link.Open(address); err != nil {
		return &apperrors.ConnectionError{Address: address, Err: err}
	}

	// Рукопожатие: отчет о ревизии должен назвать модель DMC.
	ident, err := link.Send(revisionQuery, c.cfg.CommandTimeout)
	if err != nil {
		_ = link.Close()
		return &apperrors.ConnectionError{Address: address, Err: err}
	}
	if !strings.HasPrefix(strings.TrimSpace(ident), "DMC") {
		_ = link.Close()
		return &apperrors.ConnectionError{
			Address: address,
			Err:     fmt.Errorf("unexpected handshake reply %q", ident),
		}
	}

	c.link = link
	c.address = address
	c.faults = 0
	c.connected.Store(true)
	c.logger.Info("Connected to controller", "address", address, "ident", strings.TrimSpace(ident))
	return nil
}

// Disconnect разрывает соединение. Идемпотентен: повторный вызов безопасен.
func (c *Controller) Disconnect() {
	if !c.connected.Swap(false) {
		return
	}
	if c.link != nil {
		if err := c.link.Close(); err != nil {
			c.logger.Warn("Error closing device link", "error", err)
		}
		c.link = nil
	}
	c.logger.Info("Disconnected from controller", "address", c.address)
}

// IsConnected - неблокирующая проверка состояния соединения.
func (c *Controller) IsConnected() bool {
	return c.connected.Load()
}

// Address возвращает адрес текущего (или последнего) подключения.
func (c *Controller) Address() string {
	return c.address
}

// Cmd отправляет одну команду и блокирует рабочий поток до ответа или
// таймаута. Ответ с маркером ошибки приводит к запросу TC1 и возвращается
// как DeviceCommandError. После FaultLimit подряд идущих ошибок устройства
// соединение принудительно разрывается.
func (c *Controller) Cmd(text string) (string, error) {
	if !c.connected.Load() {
		return "", apperrors.ErrNotConnected
	}

	resp, err := c.link.Send(text, c.cfg.CommandTimeout)
	if err != nil {
		c.logger.Error("Command failed", "cmd", text, "error", err)
		return "", err
	}
	c.logger.Debug("Command executed", "cmd", text, "resp", resp)

	if strings.HasSuffix(resp, "?") {
		return "", c.recordFault(c.queryError())
	}

	// Команды семейства TC сами являются запросом статуса ошибки:
	// ненулевой ведущий код означает отказ последней операции.
	if strings.HasPrefix(text, "TC") {
		if code, message := parseErrorReply(resp); code != 0 {
			return "", c.recordFault(&apperrors.DeviceCommandError{Code: code, Message: message})
		}
	}

	c.faults = 0
	return resp, nil
}

// queryError запрашивает у контроллера расшифровку последней ошибки.
func (c *Controller) queryError() error {
	resp, err := c.link.Send("TC1", c.cfg.CommandTimeout)
	if err != nil {
		return &apperrors.DeviceCommandError{Code: -1, Message: err.Error()}
	}
	code, message := parseErrorReply(resp)
	if code == 0 {
		// Контроллер отверг команду, но TC уже сброшен.
		message = "command rejected"
	}
	return &apperrors.DeviceCommandError{Code: code, Message: message}
}

// recordFault считает подряд идущие ошибки устройства и после достижения
// лимита разрывает соединение, чтобы не долбить неисправный контроллер.
func (c *Controller) recordFault(err error) error {
	c.faults++
	if c.cfg.FaultLimit > 0 && c.faults >= c.cfg.FaultLimit {
		c.logger.Error("Fault limit reached, forcing disconnect",
			"faults", c.faults, "limit", c.cfg.FaultLimit)
		c.Disconnect()
	}
	return err
}

// ReadStatus выполняет батч-запрос состояния и разбирает его в типизированные
// статусы осей. Входы концевых выключателей у DMC активны нулем.
func (c *Controller) ReadStatus() (map[string]models.AxisStatus, error) {
	resp, err := c.Cmd(statusQuery)
	if err != nil {
		return nil, err
	}
	nums := parseNumberList(resp)
	if len(nums) < 2*len(models.Axes) {
		return nil, fmt.Errorf("short status reply: %d values in %q", len(nums), resp)
	}

	axes := make(map[string]models.AxisStatus, len(models.Axes))
	for i, axis := range models.Axes {
		bits := int(nums[len(models.Axes)+i])
		axes[string(axis)] = models.AxisStatus{
			Position:     nums[i],
			Moving:       bits&128 != 0,
			ForwardLimit: bits&8 == 0,
			ReverseLimit: bits&4 == 0,
		}
	}
	return axes, nil
}

// Jog запускает толчковое движение оси с заданной скоростью.
func (c *Controller) Jog(axis byte, speed float64) error {
	if !models.ValidAxis(axis) {
		return fmt.Errorf("invalid axis %q", string(axis))
	}
	if math.Abs(speed) > c.cfg.MaxJogSpeed {
		return fmt.Errorf("jog speed %v out of range, limit %v", speed, c.cfg.MaxJogSpeed)
	}
	if !c.connected.Load() {
		return apperrors.ErrNotConnected
	}
	if _, err := c.Cmd(fmt.Sprintf("JG%c=%d", axis, int(speed))); err != nil {
		return err
	}
	_, err := c.Cmd(fmt.Sprintf("BG%c", axis))
	return err
}

// StopJog останавливает движение оси. Идемпотентен: ST на стоящей оси
// контроллер принимает без ошибки.
func (c *Controller) StopJog(axis byte) error {
	if !models.ValidAxis(axis) {
		return fmt.Errorf("invalid axis %q", string(axis))
	}
	if !c.connected.Load() {
		return apperrors.ErrNotConnected
	}
	_, err := c.Cmd(fmt.Sprintf("ST%c", axis))
	return err
}

// EStop отправляет команду аварийной остановки и разрывает соединение
// независимо от результата.
func (c *Controller) EStop() error {
	if !c.connected.Load() {
		return apperrors.ErrNotConnected
	}
	_, err := c.Cmd("AB")
	c.Disconnect()
	return err
}

// TeachPoint считывает текущие позиции осей и сохраняет их в именованный слот.
func (c *Controller) TeachPoint(name string) (models.PointRecord, error) {
	if name == "" {
		return models.PointRecord{}, fmt.Errorf("point name must not be empty")
	}
	if !c.connected.Load() {
		return models.PointRecord{}, apperrors.ErrNotConnected
	}

	resp, err := c.Cmd(positionQuery)
	if err != nil {
		return models.PointRecord{}, err
	}
	nums := parseNumberList(resp)
	if len(nums) < len(models.Axes) {
		return models.PointRecord{}, fmt.Errorf("failed to read positions: %q", resp)
	}

	record := models.PointRecord{
		Name:      name,
		Positions: make(map[string]float64, len(models.Axes)),
		TaughtAt:  time.Now(),
	}
	for i, axis := range models.Axes {
		record.Positions[string(axis)] = nums[i]
	}
	c.points[name] = record
	c.logger.Info("Point taught", "name", name)
	return record, nil
}

// ListAddresses возвращает имена известных слотов памяти в отсортированном порядке.
func (c *Controller) ListAddresses() []string {
	names := make([]string, 0, len(c.points))
	for name := range c.points {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Point возвращает сохраненный слот по имени.
func (c *Controller) Point(name string) (models.PointRecord, bool) {
	record, ok := c.points[name]
	return record, ok
}

// ReadArray читает length элементов именованного массива контроллера
// чанками фиксированного размера. Каждый чанк при неполном разборе
// повторяется до ChunkRetries раз; исчерпание попыток прерывает перенос
// целиком с точным отчетом о числе перенесенных элементов.
func (c *Controller) ReadArray(name string, length int) ([]float64, error) {
	if length <= 0 {
		return nil, fmt.Errorf("array length must be positive, got %d", length)
	}
	if !c.connected.Load() {
		return nil, apperrors.ErrNotConnected
	}

	chunk := c.chunkSize()
	out := make([]float64, 0, length)
	for i := 0; i < length; i += chunk {
		// Разрыв соединения мог произойти между чанками.
		if !c.connected.Load() {
			return nil, &apperrors.ArrayTransferError{
				Name: name, Transferred: len(out), Total: length,
				Err: apperrors.ErrNotConnected,
			}
		}

		n := chunk
		if length-i < n {
			n = length - i
		}
		refs := make([]string, n)
		for j := 0; j < n; j++ {
			refs[j] = fmt.Sprintf("%s[%d]", name, i+j)
		}
		query := "MG " + strings.Join(refs, ", ")

		vals, err := c.readChunk(query, n)
		if err != nil {
			return nil, &apperrors.ArrayTransferError{
				Name: name, Transferred: len(out), Total: length, Err: err,
			}
		}
		out = append(out, vals...)
	}
	return out, nil
}

func (c *Controller) readChunk(query string, want int) ([]float64, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.ChunkRetries; attempt++ {
		resp, err := c.Cmd(query)
		if err != nil {
			lastErr = err
			continue
		}
		vals := parseNumberList(resp)
		if len(vals) == want {
			return vals, nil
		}
		lastErr = fmt.Errorf("expected %d values, parsed %d from %q", want, len(vals), resp)
	}
	return nil, lastErr
}

// WriteArray записывает data в именованный массив контроллера начиная с
// нулевого индекса, чанками фиксированного размера с повтором при сбое.
func (c *Controller) WriteArray(name string, data []float64) error {
	if len(data) == 0 {
		return fmt.Errorf("array data must not be empty")
	}
	if !c.connected.Load() {
		return apperrors.ErrNotConnected
	}

	chunk := c.chunkSize()
	for i := 0; i < len(data); i += chunk {
		if !c.connected.Load() {
			return &apperrors.ArrayTransferError{
				Name: name, Transferred: i, Total: len(data),
				Err: apperrors.ErrNotConnected,
			}
		}

		n := chunk
		if len(data)-i < n {
			n = len(data) - i
		}
		parts := make([]string, n)
		for j := 0; j < n; j++ {
			parts[j] = name + "[" + strconv.Itoa(i+j) + "]=" +
				strconv.FormatFloat(data[i+j], 'f', -1, 64)
		}
		line := strings.Join(parts, ";")

		if err := c.writeChunk(line); err != nil {
			return &apperrors.ArrayTransferError{
				Name: name, Transferred: i, Total: len(data), Err: err,
			}
		}
	}
	return nil
}

func (c *Controller) writeChunk(line string) error {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.ChunkRetries; attempt++ {
		if _, err := c.Cmd(line); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

func (c *Controller) chunkSize() int {
	if c.cfg.ArrayChunkSize > 0 {
		return c.cfg.ArrayChunkSize
	}
	return 50
}
