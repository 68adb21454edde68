package res

type MessageResponse struct {
	MessageId      string `json:"messageId"`
	ChatId         string `json:"chatId"`
	Content        string `json:"content"`
	SenderId       string `json:"senderId"`
	SenderUsername string `json:"senderUsername"`
	CreatedAt      string `json:"createdAt"`
}
