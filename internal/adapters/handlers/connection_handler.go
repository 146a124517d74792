package handlers

import (
	"errors"
	"net/http"

	"github.com/iwtcode/dmcAdapter/internal/domain/models"
	apperrors "github.com/iwtcode/dmcAdapter/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Connect устанавливает соединение с контроллером DMC.
// @Summary Подключиться к контроллеру
// @Tags Connection
// @Accept json
// @Produce json
// @Param input body models.ConnectionRequest true "Адрес контроллера (e.g. '192.168.0.50:23')"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse "Контроллер недоступен или не прошел рукопожатие"
// @Router /connect [post]
func (h *Handler) Connect(c *gin.Context) {
	var req models.ConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	h.logger.Info("Attempting to connect", "address", req.Address)

	if err := h.service.Connect(req.Address); err != nil {
		var connErr *apperrors.ConnectionError
		if errors.As(err, &connErr) {
			h.ErrorResponse(c, err, http.StatusBadGateway, "controller unreachable", true)
			return
		}
		h.InternalError(c, err)
		return
	}

	h.logger.Info("Connected successfully", "address", req.Address)
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Connected to " + req.Address,
	})
}

// Disconnect разрывает соединение с контроллером. Идемпотентен.
// @Summary Отключиться от контроллера
// @Tags Connection
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /connect [delete]
func (h *Handler) Disconnect(c *gin.Context) {
	if err := h.service.Disconnect(); err != nil {
		h.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Disconnected",
	})
}

// ConnectionStatus возвращает текущее состояние соединения.
// @Summary Состояние соединения
// @Tags Connection
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /connect [get]
func (h *Handler) ConnectionStatus(c *gin.Context) {
	snapshot := h.service.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"connected": snapshot.Connected,
		"address":   snapshot.Address,
		"polling":   h.service.IsPollingActive(),
	})
}

// Command выполняет произвольную текстовую команду контроллера.
// @Summary Выполнить команду
// @Tags Command
// @Accept json
// @Produce json
// @Param input body models.CommandRequest true "Текст команды"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Нет соединения"
// @Router /command [post]
func (h *Handler) Command(c *gin.Context) {
	var req models.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	resp, err := h.service.Cmd(req.Text)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotConnected) {
			h.Conflict(c, err)
			return
		}
		var cmdErr *apperrors.DeviceCommandError
		if errors.As(err, &cmdErr) {
			c.JSON(http.StatusOK, gin.H{
				"status": "error",
				"error": gin.H{
					"code":    cmdErr.Code,
					"message": cmdErr.Message,
				},
			})
			return
		}
		h.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"response": resp,
	})
}

// Status возвращает снапшот состояния машины.
// @Summary Снапшот состояния
// @Tags Status
// @Produce json
// @Success 200 {object} models.StatusSnapshot
// @Router /status [get]
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"snapshot": h.service.Snapshot(),
	})
}

// Messages возвращает журнал сообщений от старых к новым.
// @Summary Журнал сообщений
// @Tags Status
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /messages [get]
func (h *Handler) Messages(c *gin.Context) {
	messages := h.service.Messages()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"count":    len(messages),
		"messages": messages,
	})
}
