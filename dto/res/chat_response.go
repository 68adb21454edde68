package res

type ChatMember struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ChatResponse struct {
	ChatId      string       `json:"chatId"`
	Members     []ChatMember `json:"members"`
	LastMessage string       `json:"lastMessage,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}
