package req

type CreateChatRequest struct {
	Usernames []string `json:"usernames" validate:"required,min=1,dive,required,min=3"`
}
