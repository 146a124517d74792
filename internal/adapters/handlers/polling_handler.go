package handlers

import (
	"net/http"
	"time"

	"github.com/iwtcode/dmcAdapter/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// StartPolling запускает периодический опрос состояния контроллера.
// @Summary Запустить опрос
// @Tags Polling
// @Accept json
// @Produce json
// @Param input body models.PollingRequest true "Интервал опроса в миллисекундах"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /polling/start [post]
func (h *Handler) StartPolling(c *gin.Context) {
	var req models.PollingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	duration := time.Duration(req.Interval) * time.Millisecond
	h.logger.Info("Attempting to start polling", "interval", duration)

	if err := h.service.StartPolling(duration); err != nil {
		h.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Polling started",
	})
}

// StopPolling останавливает периодический опрос.
// @Summary Остановить опрос
// @Tags Polling
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /polling/stop [post]
func (h *Handler) StopPolling(c *gin.Context) {
	if err := h.service.StopPolling(); err != nil {
		h.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Polling stopped",
	})
}
