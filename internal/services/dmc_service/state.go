package dmc_service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwtcode/dmcAdapter/internal/domain/models"
	"github.com/iwtcode/dmcAdapter/internal/interfaces"
)

// MachineState - разделяемое состояние машины с ограниченным журналом
// сообщений. Мутации выполняет рабочий поток; читатели получают копии.
// Уведомления доставляются синхронно на мутирующем потоке, поэтому
// наблюдатели не должны блокировать.
type MachineState struct {
	mu        sync.RWMutex
	connected bool
	address   string
	axes      map[string]models.AxisStatus
	updatedAt time.Time
	alerts    []models.AlertMessage
	capacity  int
	observers map[string]interfaces.Observer
}

// NewMachineState создает состояние с заданной емкостью журнала.
func NewMachineState(alertCapacity int) *MachineState {
	if alertCapacity <= 0 {
		alertCapacity = 100
	}
	return &MachineState{
		axes:      make(map[string]models.AxisStatus),
		capacity:  alertCapacity,
		observers: make(map[string]interfaces.Observer),
	}
}

// Subscribe регистрирует наблюдателя и возвращает токен для отписки.
func (m *MachineState) Subscribe(obs interfaces.Observer) string {
	token := uuid.New().String()
	m.mu.Lock()
	m.observers[token] = obs
	m.mu.Unlock()
	return token
}

// Unsubscribe снимает регистрацию наблюдателя. Неизвестный токен игнорируется.
func (m *MachineState) Unsubscribe(token string) {
	m.mu.Lock()
	delete(m.observers, token)
	m.mu.Unlock()
}

// SetConnected обновляет флаг соединения и адрес устройства.
func (m *MachineState) SetConnected(connected bool, address string) {
	m.mu.Lock()
	m.connected = connected
	m.address = address
	m.updatedAt = time.Now()
	snapshot, observers := m.snapshotLocked()
	m.mu.Unlock()

	notify(observers, snapshot)
}

// UpdateStatus замещает статусы осей результатом свежего опроса.
func (m *MachineState) UpdateStatus(axes map[string]models.AxisStatus) {
	m.mu.Lock()
	m.axes = make(map[string]models.AxisStatus, len(axes))
	for k, v := range axes {
		m.axes[k] = v
	}
	m.updatedAt = time.Now()
	snapshot, observers := m.snapshotLocked()
	m.mu.Unlock()

	notify(observers, snapshot)
}

// Alert добавляет сообщение в журнал, вытесняя самое старое при переполнении.
func (m *MachineState) Alert(severity models.Severity, text string) {
	msg := models.AlertMessage{Text: text, Severity: severity, Timestamp: time.Now()}

	m.mu.Lock()
	m.alerts = append(m.alerts, msg)
	if len(m.alerts) > m.capacity {
		m.alerts = m.alerts[len(m.alerts)-m.capacity:]
	}
	observers := m.observersLocked()
	m.mu.Unlock()

	for _, obs := range observers {
		obs.OnAlert(severity, text)
	}
}

// Snapshot возвращает копию состояния; она никогда не отражает
// частично примененную мутацию.
func (m *MachineState) Snapshot() models.StatusSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, _ := m.snapshotLocked()
	return snapshot
}

// Messages возвращает копию журнала от старых сообщений к новым.
func (m *MachineState) Messages() []models.AlertMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.AlertMessage, len(m.alerts))
	copy(out, m.alerts)
	return out
}

func (m *MachineState) snapshotLocked() (models.StatusSnapshot, []interfaces.Observer) {
	axes := make(map[string]models.AxisStatus, len(m.axes))
	for k, v := range m.axes {
		axes[k] = v
	}
	snapshot := models.StatusSnapshot{
		Connected: m.connected,
		Address:   m.address,
		Axes:      axes,
		UpdatedAt: m.updatedAt,
	}
	return snapshot, m.observersLocked()
}

func (m *MachineState) observersLocked() []interfaces.Observer {
	observers := make([]interfaces.Observer, 0, len(m.observers))
	for _, obs := range m.observers {
		observers = append(observers, obs)
	}
	return observers
}

func notify(observers []interfaces.Observer, snapshot models.StatusSnapshot) {
	for _, obs := range observers {
		obs.OnStateChanged(snapshot)
	}
}
