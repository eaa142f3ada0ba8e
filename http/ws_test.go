package http

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"cancerscope/inference"
	"cancerscope/ml"
)

func dialStream(t *testing.T, predictor Predictor) *websocket.Conn {
	t.Helper()
	api := NewAPI(predictor, nil, zap.NewNop(), APIConfig{Language: language.English, DefaultValue: ml.DefaultFeatureValue})
	server := httptest.NewServer(NewServer(DefaultServerConfig(), api, zap.NewNop()).Handler())
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws/predict"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocketPredictStream(t *testing.T) {
	conn := dialStream(t, loadOrchestrator(t))

	require.NoError(t, conn.WriteJSON(StreamRequest{
		ID:             "a",
		PredictRequest: PredictRequest{Model: "random_forest", Features: zeros()},
	}))
	require.NoError(t, conn.WriteJSON(StreamRequest{
		ID:             "b",
		PredictRequest: PredictRequest{Model: "svm", Features: make([]float64, 12)},
	}))

	var first StreamResponse
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, 200, first.Status)
	require.NotNil(t, first.Result)
	assert.Equal(t, inference.LabelBenign, first.Result.Label)
	assert.InDelta(t, 280.0/3.0, first.Result.ConfidencePercent, 1e-6)

	var second StreamResponse
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "b", second.ID)
	assert.Equal(t, 400, second.Status)
	assert.Nil(t, second.Result)
	assert.Contains(t, second.Error, "expected 30 features, got 12")
}

func TestWebSocketInvalidMessage(t *testing.T) {
	fake := &fakePredictor{}
	conn := dialStream(t, fake)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	var resp StreamResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, 400, resp.Status)
	assert.Contains(t, resp.Error, "invalid message")
	assert.Zero(t, fake.calls)
}
