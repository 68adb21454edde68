package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"

	"github.com/fmpberger88/EnigmaTalk/dto"
	"github.com/fmpberger88/EnigmaTalk/dto/req"
	"github.com/fmpberger88/EnigmaTalk/entity"
	"github.com/fmpberger88/EnigmaTalk/exception"
	"github.com/fmpberger88/EnigmaTalk/usecase"
)

// Conn is the slice of *websocket.Conn the hub needs; tests substitute fakes.
type Conn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}

// WebSocketHandler is the realtime hub: it tracks which connection belongs to
// which authenticated user and which connections subscribe to each chat room,
// and fans newly created messages out to the room. All registry state is
// process-wide, populated on connect and pruned on disconnect.
type WebSocketHandler struct {
	*logrus.Logger
	usecase.ChatUsecase
	Auth usecase.AuthUsecase

	sync.Mutex
	Rooms      map[string]map[Conn]bool // chatId -> subscribed connections
	Identities map[Conn]*entity.User
	Broadcast  chan dto.BroadcastMessage
}

func NewWebSocketHandler(chatUsecase usecase.ChatUsecase, authUsecase usecase.AuthUsecase, logger *logrus.Logger) *WebSocketHandler {
	handler := &WebSocketHandler{
		Logger:      logger,
		ChatUsecase: chatUsecase,
		Auth:        authUsecase,
		Rooms:       make(map[string]map[Conn]bool),
		Identities:  make(map[Conn]*entity.User),
		Broadcast:   make(chan dto.BroadcastMessage),
	}
	go handler.runBroadcast()
	return handler
}

func (handler *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	// handshake shares the HTTP auth mechanism: token resolves the identity
	user, err := handler.Auth.CurrentUser(context.Background(), c.Query("token"))
	if err != nil {
		handler.Logger.WithError(err).Warn("Rejected unauthenticated websocket connection")
		_ = c.WriteJSON(wsError(exception.ErrUnauthenticated))
		_ = c.Close()
		return
	}

	handler.registerIdentity(c, user)
	defer func() {
		handler.Disconnect(c)
		_ = c.Close()
	}()

	handler.Logger.Infof("Websocket connected for user %s", user.Username)

	for {
		var event req.WsEvent
		if err := c.ReadJSON(&event); err != nil {
			handler.Logger.Warnf("Read error: %v", err)
			break
		}
		handler.HandleEvent(context.Background(), c, event)
	}
}

// HandleEvent dispatches one client frame. A failing event is reported to the
// sending connection only and never breaks the read loop.
func (handler *WebSocketHandler) HandleEvent(ctx context.Context, conn Conn, event req.WsEvent) {
	switch event.Type {
	case "join":
		handler.JoinRoom(conn, event.ChatID)
	case "message":
		handler.OnMessageSend(ctx, conn, event.ChatID, event.Content)
	default:
		handler.sendError(conn, exception.InvalidRequestf("unknown event type %q", event.Type))
	}
}

// JoinRoom subscribes a connection to a chat room. Membership is not checked
// at join time; it is enforced when a message is sent.
func (handler *WebSocketHandler) JoinRoom(conn Conn, chatID string) {
	handler.Mutex.Lock()
	defer handler.Mutex.Unlock()

	if handler.Rooms[chatID] == nil {
		handler.Rooms[chatID] = make(map[Conn]bool)
	}
	handler.Rooms[chatID][conn] = true
	handler.Logger.Infof("Client joined chat room: %s (Total: %d)", chatID, len(handler.Rooms[chatID]))
}

// OnMessageSend persists the message through the chat usecase and, only after
// the store committed it, fans the plaintext out to the room including the
// sender's own connection.
func (handler *WebSocketHandler) OnMessageSend(ctx context.Context, conn Conn, chatID, content string) {
	handler.Mutex.Lock()
	user := handler.Identities[conn]
	handler.Mutex.Unlock()

	if user == nil {
		handler.sendError(conn, exception.ErrUnauthenticated)
		return
	}

	messageResponse, err := handler.ChatUsecase.SendMessage(ctx, chatID, user.ID, content)
	if err != nil {
		handler.Logger.WithError(err).Warnf("Failed to send message from user %s", user.ID)
		handler.sendError(conn, err)
		return
	}

	handler.Publish(dto.BroadcastMessage{
		Type:           "message",
		MessageID:      messageResponse.MessageId,
		ChatID:         messageResponse.ChatId,
		SenderID:       messageResponse.SenderId,
		SenderUsername: messageResponse.SenderUsername,
		Content:        messageResponse.Content,
		CreatedAt:      messageResponse.CreatedAt,
	})
}

// Publish queues a committed message for fan-out to its chat room.
func (handler *WebSocketHandler) Publish(msg dto.BroadcastMessage) {
	handler.Broadcast <- msg
}

// Disconnect removes the connection from every room and the identity map.
// Peers are not notified and pending deletions are unaffected.
func (handler *WebSocketHandler) Disconnect(conn Conn) {
	handler.Mutex.Lock()
	defer handler.Mutex.Unlock()

	delete(handler.Identities, conn)
	for chatID, conns := range handler.Rooms {
		if conns[conn] {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(handler.Rooms, chatID)
			}
		}
	}
}

func (handler *WebSocketHandler) registerIdentity(conn Conn, user *entity.User) {
	handler.Mutex.Lock()
	defer handler.Mutex.Unlock()
	handler.Identities[conn] = user
}

func (handler *WebSocketHandler) runBroadcast() {
	for msg := range handler.Broadcast {
		handler.Mutex.Lock()
		conns := handler.Rooms[msg.ChatID]
		for conn := range conns {
			if err := conn.WriteJSON(msg); err != nil {
				handler.Logger.Warnf("Error broadcasting message: %v", err)
				_ = conn.Close()
				delete(conns, conn)
				delete(handler.Identities, conn)
			}
		}
		handler.Mutex.Unlock()
	}
}

func (handler *WebSocketHandler) sendError(conn Conn, err error) {
	if writeErr := conn.WriteJSON(wsError(err)); writeErr != nil {
		handler.Logger.Warnf("Failed to deliver error to client: %v", writeErr)
	}
}

func wsError(err error) dto.WsError {
	var appErr *exception.AppError
	if errors.As(err, &appErr) {
		return dto.WsError{Type: "error", Code: appErr.Code, Detail: appErr.Message}
	}
	return dto.WsError{Type: "error", Code: "internal_error", Detail: "something went wrong"}
}
