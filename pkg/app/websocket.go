package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/food-share-service/global"
	"github.com/haierkeys/food-share-service/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

type LogType string

const (
	WebSocketServerPingInterval         = 25
	WebSocketServerPingWait             = 40
	LogInfo                     LogType = "info"
	LogError                    LogType = "error"
	LogWarn                     LogType = "warn"
)

func log(t LogType, msg string, fields ...zap.Field) {
	if global.Logger == nil {
		return
	}
	switch t {
	case LogError:
		global.Logger.Error(msg, fields...)
	case LogWarn:
		global.Logger.Warn(msg, fields...)
	case LogInfo:
		global.Logger.Info(msg, fields...)
	}
}

// WebSocketMessage 客户端消息，格式 "Type|Data"
type WebSocketMessage struct {
	Type string `json:"type"`
	Data []byte `json:"data"`
}

type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
}

// WebsocketClient 单个 WebSocket 连接及其认证状态
type WebsocketClient struct {
	conn *gws.Conn
	done chan struct{}
	Ctx  *gin.Context
	UID  int64
}

// PingLoop 定期发送 Ping 消息
func (c *WebsocketClient) PingLoop(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			log(LogInfo, "WebsocketServer Client Close Ping")
			return
		case <-ticker.C:
			if c.conn == nil {
				return
			}
			if err := c.conn.WritePing(nil); err != nil {
				log(LogError, "WebsocketServer Client Ping err", zap.Error(err))
				return
			}
		}
	}
}

// ToResponse 将结果转换为 JSON 格式并发送给客户端
func (c *WebsocketClient) ToResponse(codeObj *code.Code, action ...string) {
	var actionType string
	if len(action) > 0 {
		actionType = action[0]
	}

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    codeObj.Data(),
	}
	if codeObj.HaveDetails() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}

	payload, _ := json.Marshal(content)
	if actionType != "" {
		payload = []byte(fmt.Sprintf("%s|%s", actionType, string(payload)))
	}
	c.conn.WriteMessage(gws.OpcodeText, payload)
	codeObj.Reset()
}

// TokenParser 认证消息里的令牌解析函数
type TokenParser func(token string) (uid int64, err error)

type ConnStorage = map[*gws.Conn]*WebsocketClient

// WebsocketServer 推送服务端
// 客户端连接后须先发送 "Authorization|<token>" 完成认证，之后才会收到事件
type WebsocketServer struct {
	handlers    map[string]func(*WebsocketClient, *WebSocketMessage)
	tokenParser TokenParser
	clients     ConnStorage
	userClients map[int64]ConnStorage
	mu          sync.Mutex
	up          *gws.Upgrader
	config      *WebsocketServerConfig
}

func NewWebsocketServer(c WebsocketServerConfig, parser TokenParser) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	wss := WebsocketServer{
		handlers:    make(map[string]func(*WebsocketClient, *WebSocketMessage)),
		tokenParser: parser,
		clients:     make(ConnStorage),
		userClients: make(map[int64]ConnStorage),
		config:      &c,
	}
	return &wss
}

func (w *WebsocketServer) Upgrade() {
	w.up = gws.NewUpgrader(w, &w.config.GWSOption)
}

func (w *WebsocketServer) Run() gin.HandlerFunc {
	return func(c *gin.Context) {
		w.Upgrade()
		socket, err := w.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			log(LogError, "WebsocketServer Start err", zap.Error(err))
			return
		}
		client := &WebsocketClient{conn: socket, done: make(chan struct{}), Ctx: c}
		w.AddClient(client)
		log(LogInfo, "WebsocketServer Start", zap.String("type", "ReadLoop"))
		go socket.ReadLoop()
	}
}

func (w *WebsocketServer) Use(action string, handler func(*WebsocketClient, *WebSocketMessage)) {
	w.handlers[action] = handler
}

// Authorization 处理认证消息，认证失败延迟关闭连接
func (w *WebsocketServer) Authorization(c *WebsocketClient, msg *WebSocketMessage) {
	uid, err := w.tokenParser(string(msg.Data))
	if err != nil || uid <= 0 {
		log(LogError, "WebsocketServer Authorization FAILD", zap.Error(err))
		c.ToResponse(code.ErrorInvalidUserAuthToken.Clone(), "Authorization")
		time.Sleep(2 * time.Second)
		c.conn.WriteClose(1000, []byte("AuthorizationFaild"))
		return
	}

	c.UID = uid
	w.AddUserClient(c)
	c.ToResponse(code.Success.Clone(), "Authorization")
	log(LogInfo, "WebsocketServer User Enters", zap.Int64("uid", uid))
	go c.PingLoop(w.config.PingInterval)
}

// BroadcastAll 向所有已认证客户端广播消息
func (w *WebsocketServer) BroadcastAll(payload []byte) {
	b := gws.NewBroadcaster(gws.OpcodeText, payload)
	defer b.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range w.clients {
		if c.conn == nil || c.UID <= 0 {
			continue
		}
		_ = b.Broadcast(c.conn)
	}
}

// BroadcastToUser 向指定用户的所有连接广播消息
func (w *WebsocketServer) BroadcastToUser(uid int64, payload []byte) {
	b := gws.NewBroadcaster(gws.OpcodeText, payload)
	defer b.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range w.userClients[uid] {
		if c.conn == nil {
			continue
		}
		_ = b.Broadcast(c.conn)
	}
}

func (w *WebsocketServer) GetClient(conn *gws.Conn) *WebsocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clients[conn]
}

func (w *WebsocketServer) AddClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
}

func (w *WebsocketServer) RemoveClient(conn *gws.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.clients, conn)
}

func (w *WebsocketServer) AddUserClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.userClients[c.UID] == nil {
		w.userClients[c.UID] = make(ConnStorage)
	}
	w.userClients[c.UID][c.conn] = c
}

func (w *WebsocketServer) RemoveUserClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.userClients[c.UID], c.conn)
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	log(LogInfo, "WebsocketServer Client Connect", zap.Int("Count", len(w.clients)))
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {
	c := w.GetClient(conn)
	w.RemoveClient(conn)

	if c != nil && c.UID > 0 {
		close(c.done)
		log(LogInfo, "WebsocketServer User Leave", zap.Int64("uid", c.UID))
		w.RemoveUserClient(c)
	}

	log(LogInfo, "WebsocketServer Client Leave", zap.Int("Count", len(w.clients)))
}

func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
	_ = socket.WritePong(nil)
}

func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	if message.Opcode != gws.OpcodeText {
		return
	}
	if message.Data.String() == "close" {
		conn.WriteClose(1000, []byte("ClientClose"))
		return
	}

	c := w.GetClient(conn)
	if c == nil {
		return
	}

	messageStr := message.Data.String()
	index := strings.Index(messageStr, "|")

	var msg WebSocketMessage
	if index != -1 {
		msg.Type = messageStr[:index]
		msg.Data = []byte(messageStr[index+1:])
	} else {
		log(LogError, "WebsocketServer OnMessage", zap.String("type", "Illegal message type"))
		return
	}

	if msg.Type == "Authorization" {
		w.Authorization(c, &msg)
		return
	}

	if c.UID <= 0 {
		c.ToResponse(code.ErrorNotUserAuthToken.Clone())
		return
	}

	handler, exists := w.handlers[msg.Type]
	if exists {
		log(LogInfo, "WebsocketServer OnMessage", zap.String("Type", msg.Type))
		handler(c, &msg)
	} else {
		log(LogError, "WebsocketServer OnMessage", zap.String("msg", "Unknown message type"))
	}
}
