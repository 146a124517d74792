package models

import "time"

// Axes - фиксированный набор осей контроллера DMC.
var Axes = []byte{'A', 'B', 'C', 'D'}

// ValidAxis проверяет, принадлежит ли ось допустимому набору.
func ValidAxis(axis byte) bool {
	for _, a := range Axes {
		if a == axis {
			return true
		}
	}
	return false
}

// AxisStatus содержит позицию и флаги концевых выключателей одной оси.
type AxisStatus struct {
	Position     float64 `json:"position"`
	Moving       bool    `json:"moving"`
	ForwardLimit bool    `json:"forward_limit"`
	ReverseLimit bool    `json:"reverse_limit"`
}

// StatusSnapshot - неизменяемая копия состояния машины на момент чтения.
type StatusSnapshot struct {
	Connected bool                  `json:"connected"`
	Address   string                `json:"address"`
	Axes      map[string]AxisStatus `json:"axes"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// PointRecord - позиция осей, сохраненная в именованном слоте.
type PointRecord struct {
	Name      string             `json:"name"`
	Positions map[string]float64 `json:"positions"`
	TaughtAt  time.Time          `json:"taught_at"`
}

// Severity - уровень важности сообщения в журнале.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// AlertMessage - запись ограниченного журнала сообщений.
type AlertMessage struct {
	Text      string    `json:"text"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}
