package interfaces

import (
	"time"

	"github.com/iwtcode/dmcAdapter/internal/domain/models"
)

// DmcService - это агрегирующий интерфейс для всей бизнес-логики.
// Все операции выполняются на единственном рабочем потоке планировщика;
// вызывающая сторона блокируется до результата, но никогда не трогает
// устройство напрямую.
type DmcService interface {
	ConnectionManager
	MotionManager
	ArrayManager
	PollingManager

	// Snapshot возвращает копию текущего состояния машины.
	Snapshot() models.StatusSnapshot
	// Messages возвращает копию журнала сообщений (от старых к новым).
	Messages() []models.AlertMessage
	// Subscribe регистрирует наблюдателя; возвращает токен для Unsubscribe.
	Subscribe(obs Observer) string
	Unsubscribe(token string)
	// Shutdown останавливает планировщик и разрывает соединение.
	Shutdown(drain bool)
}

// ConnectionManager определяет контракт для управления подключением.
type ConnectionManager interface {
	Connect(address string) error
	Disconnect() error
	IsConnected() bool
	Cmd(text string) (string, error)
}

// MotionManager определяет контракт для команд движения.
type MotionManager interface {
	Jog(axis byte, speed float64) error
	StopJog(axis byte) error
	TeachPoint(name string) (models.PointRecord, error)
	ListAddresses() []string
	EStop() error
}

// ArrayManager определяет контракт для чтения и записи массивов контроллера.
type ArrayManager interface {
	ReadArray(name string, length int) ([]float64, error)
	WriteArray(name string, data []float64) error
}

// PollingManager определяет контракт для периодического опроса состояния.
type PollingManager interface {
	StartPolling(interval time.Duration) error
	StopPolling() error
	IsPollingActive() bool
}

// Observer получает синхронные уведомления об изменениях состояния.
// Обработчики не должны блокировать: длительную работу наблюдатель
// перекладывает в собственную горутину.
type Observer interface {
	OnStateChanged(snapshot models.StatusSnapshot)
	OnAlert(severity models.Severity, text string)
}
