package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"relgraph/config"
	"relgraph/pkg/jwt"
	"relgraph/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// Handler 建立连接后推送该用户收到的关系事件
// 令牌通过 ?token= 或 Sec-WebSocket-Protocol 传递
func (m *Manager) Handler(jwtSvc *jwt.JWTService, wsCfg config.WebSocketConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
		}
		if token == "" {
			response.Unauthorized(c, "缺少token")
			return
		}
		userID, err := jwtSvc.UserIDFromToken(token)
		if err != nil {
			response.Unauthorized(c, "token无效或已过期")
			return
		}

		// 回显子协议，避免客户端提示 "Server sent no subprotocol"
		respHeader := http.Header{}
		if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
			respHeader.Set("Sec-WebSocket-Protocol", protocol)
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
		if err != nil {
			return
		}
		defer conn.Close()

		client := NewClient(userID, conn)
		m.AddClient(client)
		defer m.RemoveClient(client)

		go writePump(client, wsCfg.PingInterval)
		m.readPump(client, wsCfg.ReadTimeout)
	}
}

// writePump 转发事件并定时发送ping
func writePump(client *Client, pingInterval time.Duration) {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = client.Conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(time.Second))
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

// readPump 只处理心跳；超时未收到任何读事件则断开
func (m *Manager) readPump(client *Client, readTimeout time.Duration) {
	if readTimeout <= 0 {
		readTimeout = 90 * time.Second
	}
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		var msg struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(payload, &msg) == nil && msg.Type == "heartbeat" {
			m.heartbeat(client.UserID)
		}
	}
}
