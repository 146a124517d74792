package interfaces

import "time"

// DeviceLink определяет контракт низкоуровневого канала связи с контроллером.
// Реализация владеет сокетом; сервис гарантирует, что Send вызывается
// только из одного потока исполнения.
type DeviceLink interface {
	Open(address string) error
	Close() error
	Send(text string, timeout time.Duration) (string, error)
}

// LinkDialer создает новый неподключенный DeviceLink.
type LinkDialer func() DeviceLink
