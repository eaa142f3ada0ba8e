package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cancerscope/inference"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMessage = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StreamRequest WebSocket预测请求, ID 原样返回以便客户端匹配
type StreamRequest struct {
	ID string `json:"id"`
	PredictRequest
}

// StreamResponse WebSocket预测响应
type StreamResponse struct {
	ID     string            `json:"id"`
	Result *inference.Result `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
	Status int               `json:"status"`
}

// wsClient 单个WebSocket连接
type wsClient struct {
	api      *API
	conn     *websocket.Conn
	send     chan StreamResponse
	done     chan struct{}
	clientID string
	logger   *zap.Logger
}

// handleWebSocket 处理WebSocket连接, 每条消息独立预测
func (api *API) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		api.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		api:      api,
		conn:     conn,
		send:     make(chan StreamResponse, 16),
		done:     make(chan struct{}),
		clientID: uuid.NewString(),
	}
	client.logger = api.logger.With(zap.String("client_id", client.clientID))
	client.logger.Info("websocket client connected")

	go client.writePump()
	client.readPump(r)
}

// readPump WebSocket读取泵
func (c *wsClient) readPump(r *http.Request) {
	defer func() {
		close(c.send)
		c.logger.Info("websocket client disconnected")
	}()

	c.conn.SetReadLimit(wsMaxMessage)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var req StreamRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			if !c.reply(StreamResponse{Error: "invalid message: " + err.Error(), Status: http.StatusBadRequest}) {
				return
			}
			continue
		}

		response := StreamResponse{ID: req.ID}
		result, status, err := c.api.predict(r.Context(), req.PredictRequest)
		response.Status = status
		if err != nil {
			response.Error = err.Error()
		} else {
			response.Result = &result
		}
		if !c.reply(response) {
			return
		}
	}
}

// reply 排队发送响应, 写入泵已退出时返回false
func (c *wsClient) reply(response StreamResponse) bool {
	select {
	case c.send <- response:
		return true
	case <-c.done:
		return false
	}
}

// writePump WebSocket写入泵
func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Warn("websocket write error", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
