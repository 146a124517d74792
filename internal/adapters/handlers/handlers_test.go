package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iwtcode/dmcAdapter/internal/config"
	"github.com/iwtcode/dmcAdapter/internal/domain/models"
	"github.com/iwtcode/dmcAdapter/internal/interfaces"
	"github.com/iwtcode/dmcAdapter/internal/middleware/logging"
	apperrors "github.com/iwtcode/dmcAdapter/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService подменяет бизнес-логику в тестах HTTP-слоя.
type stubService struct {
	connected bool
	polling   bool
	arrays    map[string][]float64
	points    []string
}

func newStubService() *stubService {
	return &stubService{arrays: make(map[string][]float64)}
}

func (s *stubService) Connect(address string) error {
	if address == "unreachable:23" {
		return &apperrors.ConnectionError{Address: address}
	}
	s.connected = true
	return nil
}

func (s *stubService) Disconnect() error {
	s.connected = false
	return nil
}

func (s *stubService) IsConnected() bool { return s.connected }

func (s *stubService) Cmd(text string) (string, error) {
	if !s.connected {
		return "", apperrors.ErrNotConnected
	}
	if text == "TC1" {
		return "", &apperrors.DeviceCommandError{Code: 1, Message: "Unrecognized Command"}
	}
	return "42.0000", nil
}

func (s *stubService) Jog(axis byte, speed float64) error {
	if !s.connected {
		return apperrors.ErrNotConnected
	}
	return nil
}

func (s *stubService) StopJog(axis byte) error {
	if !s.connected {
		return apperrors.ErrNotConnected
	}
	return nil
}

func (s *stubService) TeachPoint(name string) (models.PointRecord, error) {
	if !s.connected {
		return models.PointRecord{}, apperrors.ErrNotConnected
	}
	s.points = append(s.points, name)
	return models.PointRecord{Name: name, Positions: map[string]float64{"A": 1}}, nil
}

func (s *stubService) ListAddresses() []string { return s.points }

func (s *stubService) EStop() error {
	s.connected = false
	return nil
}

func (s *stubService) ReadArray(name string, length int) ([]float64, error) {
	if !s.connected {
		return nil, apperrors.ErrNotConnected
	}
	arr := s.arrays[name]
	if length > len(arr) {
		return nil, &apperrors.ArrayTransferError{
			Name: name, Transferred: len(arr), Total: length,
			Err: apperrors.ErrNotConnected,
		}
	}
	return arr[:length], nil
}

func (s *stubService) WriteArray(name string, data []float64) error {
	if !s.connected {
		return apperrors.ErrNotConnected
	}
	s.arrays[name] = data
	return nil
}

func (s *stubService) StartPolling(interval time.Duration) error {
	s.polling = true
	return nil
}

func (s *stubService) StopPolling() error {
	s.polling = false
	return nil
}

func (s *stubService) IsPollingActive() bool { return s.polling }

func (s *stubService) Snapshot() models.StatusSnapshot {
	return models.StatusSnapshot{Connected: s.connected, Address: "192.168.0.50:23"}
}

func (s *stubService) Messages() []models.AlertMessage { return nil }

func (s *stubService) Subscribe(obs interfaces.Observer) string { return "token" }

func (s *stubService) Unsubscribe(token string) {}

func (s *stubService) Shutdown(drain bool) {}

func newTestRouter(service interfaces.DmcService) http.Handler {
	logger := logging.NewLogger("off", "TEST")
	cfg := &config.AppConfig{GinMode: "test"}
	return ProvideRouter(NewHandler(service, logger), cfg)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestConnectEndpoint(t *testing.T) {
	service := newStubService()
	router := newTestRouter(service)

	w := doJSON(t, router, http.MethodPost, "/api/v1/connect",
		models.ConnectionRequest{Address: "192.168.0.50:23"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, service.connected)

	w = doJSON(t, router, http.MethodPost, "/api/v1/connect",
		models.ConnectionRequest{Address: "unreachable:23"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/connect", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommandEndpointMapsDeviceError(t *testing.T) {
	service := newStubService()
	service.connected = true
	router := newTestRouter(service)

	w := doJSON(t, router, http.MethodPost, "/api/v1/command",
		models.CommandRequest{Text: "TC1"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Error.Code)
	assert.Equal(t, "Unrecognized Command", resp.Error.Message)
}

func TestCommandEndpointRejectsWhenDisconnected(t *testing.T) {
	service := newStubService()
	router := newTestRouter(service)

	w := doJSON(t, router, http.MethodPost, "/api/v1/command",
		models.CommandRequest{Text: "MG 1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestJogEndpoints(t *testing.T) {
	service := newStubService()
	service.connected = true
	router := newTestRouter(service)

	w := doJSON(t, router, http.MethodPost, "/api/v1/motion/jog",
		models.JogRequest{Axis: "A", Speed: 5000})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/motion/stop",
		models.StopJogRequest{Axis: "A"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Ось обязана быть одним символом.
	w = doJSON(t, router, http.MethodPost, "/api/v1/motion/jog",
		models.JogRequest{Axis: "AB", Speed: 5000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArrayEndpoints(t *testing.T) {
	service := newStubService()
	service.connected = true
	router := newTestRouter(service)

	w := doJSON(t, router, http.MethodPost, "/api/v1/arrays/EDGEB",
		models.ArrayWriteRequest{Values: []float64{1, 2, 3}})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/arrays/EDGEB?length=3", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Values []float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []float64{1, 2, 3}, resp.Values)

	// Перенос прерван: ответ содержит частичный прогресс.
	w = doJSON(t, router, http.MethodGet, "/api/v1/arrays/EDGEB?length=10", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)

	var failed struct {
		Error struct {
			Transferred int `json:"transferred"`
			Total       int `json:"total"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failed))
	assert.Equal(t, 3, failed.Error.Transferred)
	assert.Equal(t, 10, failed.Error.Total)
}

func TestStatusAndTeachEndpoints(t *testing.T) {
	service := newStubService()
	service.connected = true
	router := newTestRouter(service)

	w := doJSON(t, router, http.MethodGet, "/api/v1/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/teach",
		models.TeachRequest{Name: "rest"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/teach/addresses", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Addresses []string `json:"addresses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"rest"}, resp.Addresses)
}
