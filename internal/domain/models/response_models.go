package models

import "time"

// ErrorResponse представляет стандартный ответ с ошибкой.
type ErrorResponse struct {
	Status string `json:"status" example:"error"`
	Error  struct {
		Code    int    `json:"code" example:"404"`
		Message string `json:"message" example:"not connected to controller"`
	} `json:"error"`
}

// MessageResponse представляет стандартный успешный ответ с сообщением.
type MessageResponse struct {
	Status  string `json:"status" example:"ok"`
	Message string `json:"message" example:"Polling started successfully"`
}

// TelemetryRecord - агрегированная запись состояния для отправки в Kafka.
type TelemetryRecord struct {
	Address   string         `json:"address"`
	Timestamp time.Time      `json:"timestamp"`
	Snapshot  StatusSnapshot `json:"snapshot"`
}
