package req

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}
