package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/iwtcode/dmcAdapter/internal/domain/models"
	apperrors "github.com/iwtcode/dmcAdapter/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ReadArray читает length элементов именованного массива контроллера.
// @Summary Прочитать массив
// @Tags Arrays
// @Produce json
// @Param name path string true "Имя массива"
// @Param length query int true "Число элементов"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Нет соединения"
// @Failure 502 {object} models.ErrorResponse "Перенос прерван"
// @Router /arrays/{name} [get]
func (h *Handler) ReadArray(c *gin.Context) {
	name := c.Param("name")
	length, err := strconv.Atoi(c.Query("length"))
	if err != nil || length <= 0 {
		h.BadRequest(c, err, "Invalid length parameter")
		return
	}

	values, err := h.service.ReadArray(name, length)
	if err != nil {
		h.arrayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"name":   name,
		"count":  len(values),
		"values": values,
	})
}

// WriteArray записывает значения в именованный массив контроллера.
// @Summary Записать массив
// @Tags Arrays
// @Accept json
// @Produce json
// @Param name path string true "Имя массива"
// @Param input body models.ArrayWriteRequest true "Значения"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Нет соединения"
// @Failure 502 {object} models.ErrorResponse "Перенос прерван"
// @Router /arrays/{name} [post]
func (h *Handler) WriteArray(c *gin.Context) {
	name := c.Param("name")

	var req models.ArrayWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	if err := h.service.WriteArray(name, req.Values); err != nil {
		h.arrayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Array " + name + " written",
		"count":   len(req.Values),
	})
}

// arrayError транслирует ошибки переноса массива в HTTP-ответ,
// сохраняя отчет о частичном прогрессе.
func (h *Handler) arrayError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotConnected) {
		h.Conflict(c, err)
		return
	}
	var transferErr *apperrors.ArrayTransferError
	if errors.As(err, &transferErr) {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"status": "error",
			"error": gin.H{
				"code":        http.StatusBadGateway,
				"message":     transferErr.Error(),
				"transferred": transferErr.Transferred,
				"total":       transferErr.Total,
			},
		})
		return
	}
	h.InternalError(c, err)
}
