package req

// WsEvent is the client-to-server frame on the persistent connection.
// Type is "join" or "message".
type WsEvent struct {
	Type    string `json:"type"`
	ChatID  string `json:"chatId"`
	Content string `json:"content,omitempty"`
}
