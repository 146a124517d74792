package handlers

import (
	"net/http"

	"github.com/iwtcode/dmcAdapter/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamEvent - кадр, отправляемый подписчику websocket-потока.
type streamEvent struct {
	Type     string                 `json:"type"` // "state" или "alert"
	Snapshot *models.StatusSnapshot `json:"snapshot,omitempty"`
	Severity models.Severity        `json:"severity,omitempty"`
	Text     string                 `json:"text,omitempty"`
}

// streamObserver пересылает уведомления состояния в канал с вытеснением
// старых кадров: рабочий поток никогда не блокируется на медленном клиенте.
type streamObserver struct {
	events chan streamEvent
}

func newStreamObserver() *streamObserver {
	return &streamObserver{events: make(chan streamEvent, 16)}
}

func (o *streamObserver) push(ev streamEvent) {
	for {
		select {
		case o.events <- ev:
			return
		default:
			// Канал полон: вытесняем самый старый кадр.
			select {
			case <-o.events:
			default:
			}
		}
	}
}

func (o *streamObserver) OnStateChanged(snapshot models.StatusSnapshot) {
	o.push(streamEvent{Type: "state", Snapshot: &snapshot})
}

func (o *streamObserver) OnAlert(severity models.Severity, text string) {
	o.push(streamEvent{Type: "alert", Severity: severity, Text: text})
}

// StateStream открывает websocket и транслирует изменения состояния
// и сообщения журнала до отключения клиента.
// @Summary Поток состояния
// @Tags Status
// @Router /ws [get]
func (h *Handler) StateStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	observer := newStreamObserver()
	token := h.service.Subscribe(observer)
	defer h.service.Unsubscribe(token)

	h.logger.Info("Stream subscriber connected", "remote_addr", conn.RemoteAddr().String())

	// Первым кадром отдаем текущее состояние.
	snapshot := h.service.Snapshot()
	if err := conn.WriteJSON(streamEvent{Type: "state", Snapshot: &snapshot}); err != nil {
		return
	}

	closed := make(chan struct{})
	go func() {
		// Читатель нужен только для детекции закрытия клиентом.
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-observer.events:
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Info("Stream subscriber disconnected", "error", err)
				return
			}
		case <-closed:
			h.logger.Info("Stream subscriber closed connection")
			return
		}
	}
}
