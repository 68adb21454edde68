package dto

// BroadcastMessage is the server-to-client "message" event fanned out to
// every connection subscribed to the chat room. Content is plaintext; the
// ciphertext never leaves the store.
type BroadcastMessage struct {
	Type           string `json:"type"`
	MessageID      string `json:"messageId"`
	ChatID         string `json:"chatId"`
	SenderID       string `json:"senderId"`
	SenderUsername string `json:"senderUsername"`
	Content        string `json:"content"`
	CreatedAt      string `json:"createdAt"`
}

// WsError is the server-to-client "error" event, delivered only to the
// connection whose request failed.
type WsError struct {
	Type   string `json:"type"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}
