package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotConnected возвращается любой операцией контроллера, требующей живого
// соединения. Проверка выполняется до какого-либо обмена с устройством.
var ErrNotConnected = errors.New("not connected to controller")

// ConnectionError описывает неудачную попытку подключения: устройство
// недоступно либо ответ на рукопожатие не идентифицировал контроллер DMC.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("connect to %s failed: %v", e.Address, e.Err)
	}
	return fmt.Sprintf("connect to %s failed", e.Address)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DeviceCommandError несет ненулевой код статуса, которым устройство ответило
// на команду, ось (0, если ошибка не привязана к оси) и расшифровку кода
// из таблицы ошибок DMC.
type DeviceCommandError struct {
	Code    int
	Axis    byte
	Message string
}

func (e *DeviceCommandError) Error() string {
	if e.Axis != 0 {
		return fmt.Sprintf("device error %d on axis %c: %s", e.Code, e.Axis, e.Message)
	}
	return fmt.Sprintf("device error %d: %s", e.Code, e.Message)
}

// TimeoutError сообщает, что устройство не ответило в отведенный срок.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out after %s", e.Command, e.Timeout)
}

// ArrayTransferError прерывает чанковый перенос массива после исчерпания
// бюджета повторов. Transferred - число полностью зафиксированных элементов
// до сбойного чанка; дальше него перенос не продвинулся.
type ArrayTransferError struct {
	Name        string
	Transferred int
	Total       int
	Err         error
}

func (e *ArrayTransferError) Error() string {
	return fmt.Sprintf("array %s transfer aborted at %d/%d elements: %v",
		e.Name, e.Transferred, e.Total, e.Err)
}

func (e *ArrayTransferError) Unwrap() error { return e.Err }
