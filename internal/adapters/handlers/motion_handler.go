package handlers

import (
	"errors"
	"net/http"

	"github.com/iwtcode/dmcAdapter/internal/domain/models"
	apperrors "github.com/iwtcode/dmcAdapter/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Jog запускает толчковое движение оси.
// @Summary Запустить jog
// @Tags Motion
// @Accept json
// @Produce json
// @Param input body models.JogRequest true "Ось и скорость"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Нет соединения"
// @Router /motion/jog [post]
func (h *Handler) Jog(c *gin.Context) {
	var req models.JogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	if err := h.service.Jog(req.Axis[0], req.Speed); err != nil {
		if errors.Is(err, apperrors.ErrNotConnected) {
			h.Conflict(c, err)
			return
		}
		h.BadRequest(c, err, "Jog rejected")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Jog started on axis " + req.Axis,
	})
}

// StopJog останавливает движение оси. Идемпотентен при живом соединении.
// @Summary Остановить jog
// @Tags Motion
// @Accept json
// @Produce json
// @Param input body models.StopJogRequest true "Ось"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Нет соединения"
// @Router /motion/stop [post]
func (h *Handler) StopJog(c *gin.Context) {
	var req models.StopJogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	if err := h.service.StopJog(req.Axis[0]); err != nil {
		if errors.Is(err, apperrors.ErrNotConnected) {
			h.Conflict(c, err)
			return
		}
		h.BadRequest(c, err, "Stop rejected")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Axis " + req.Axis + " stopped",
	})
}

// EStop выполняет аварийную остановку и разрывает соединение.
// @Summary Аварийная остановка
// @Tags Motion
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /motion/estop [post]
func (h *Handler) EStop(c *gin.Context) {
	err := h.service.EStop()
	if err != nil && !errors.Is(err, apperrors.ErrNotConnected) {
		// Соединение уже разорвано, сообщаем об исходе команды AB.
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "E-STOP triggered, abort command failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "E-STOP triggered",
	})
}

// TeachPoint сохраняет текущую позицию осей в именованный слот.
// @Summary Обучить точку
// @Tags Teach
// @Accept json
// @Produce json
// @Param input body models.TeachRequest true "Имя слота"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Нет соединения"
// @Router /teach [post]
func (h *Handler) TeachPoint(c *gin.Context) {
	var req models.TeachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	record, err := h.service.TeachPoint(req.Name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotConnected) {
			h.Conflict(c, err)
			return
		}
		h.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"point":  record,
	})
}

// ListAddresses возвращает имена известных слотов памяти.
// @Summary Список слотов
// @Tags Teach
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /teach/addresses [get]
func (h *Handler) ListAddresses(c *gin.Context) {
	addresses := h.service.ListAddresses()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"count":     len(addresses),
		"addresses": addresses,
	})
}
