package models

// ConnectionRequest определяет структуру для нового запроса на подключение.
type ConnectionRequest struct {
	Address string `json:"address" binding:"required"` // "192.168.0.50:23"
}

// PollingRequest определяет структуру для запроса на запуск опроса.
type PollingRequest struct {
	Interval int `json:"interval" binding:"required,gt=0"` // в миллисекундах
}

// CommandRequest определяет структуру для произвольной текстовой команды.
type CommandRequest struct {
	Text string `json:"text" binding:"required"`
}

// JogRequest определяет структуру для запуска толчкового движения оси.
type JogRequest struct {
	Axis  string  `json:"axis" binding:"required,len=1"`
	Speed float64 `json:"speed"`
}

// StopJogRequest определяет структуру для остановки движения оси.
type StopJogRequest struct {
	Axis string `json:"axis" binding:"required,len=1"`
}

// TeachRequest определяет структуру для сохранения текущей позиции в слот.
type TeachRequest struct {
	Name string `json:"name" binding:"required"`
}

// ArrayWriteRequest определяет структуру для записи массива контроллера.
type ArrayWriteRequest struct {
	Values []float64 `json:"values" binding:"required,min=1"`
}
