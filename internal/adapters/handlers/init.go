package handlers

import (
	"net/http"

	"github.com/iwtcode/dmcAdapter/internal/config"
	"github.com/iwtcode/dmcAdapter/internal/interfaces"
	"github.com/iwtcode/dmcAdapter/internal/middleware/logging"

	"github.com/gin-gonic/gin"
)

// Handler - структура для обработчиков HTTP-запросов
type Handler struct {
	service interfaces.DmcService
	logger  *logging.Logger
}

// NewHandler создает новый экземпляр Handler
func NewHandler(service interfaces.DmcService, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.WithPrefix("HANDLER"),
	}
}

// ProvideRouter настраивает и возвращает HTTP-роутер
func ProvideRouter(h *Handler, cfg *config.AppConfig) http.Handler {
	gin.SetMode(cfg.GinMode)

	router := gin.Default()

	// Logger Middleware
	router.Use(LoggingMiddleware(h.logger))

	// Группа API v1
	v1 := router.Group("/api/v1")
	{
		connection := v1.Group("/connect")
		{
			connection.POST("", h.Connect)
			connection.DELETE("", h.Disconnect)
			connection.GET("", h.ConnectionStatus)
		}

		polling := v1.Group("/polling")
		{
			polling.POST("/start", h.StartPolling)
			polling.POST("/stop", h.StopPolling)
		}

		motion := v1.Group("/motion")
		{
			motion.POST("/jog", h.Jog)
			motion.POST("/stop", h.StopJog)
			motion.POST("/estop", h.EStop)
		}

		teach := v1.Group("/teach")
		{
			teach.POST("", h.TeachPoint)
			teach.GET("/addresses", h.ListAddresses)
		}

		arrays := v1.Group("/arrays")
		{
			arrays.GET("/:name", h.ReadArray)
			arrays.POST("/:name", h.WriteArray)
		}

		v1.POST("/command", h.Command)
		v1.GET("/status", h.Status)
		v1.GET("/messages", h.Messages)
		v1.GET("/ws", h.StateStream)
	}

	return router
}
