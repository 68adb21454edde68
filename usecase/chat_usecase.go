package usecase

import (
	"context"

	"github.com/fmpberger88/EnigmaTalk/dto/res"
)

type ChatUsecase interface {
	// CreateOrGetChat resolves usernames, adds the requester and returns the
	// existing chat for that exact member set or atomically creates one.
	CreateOrGetChat(ctx context.Context, requesterID string, usernames []string) (res.ChatResponse, error)
	ListChats(ctx context.Context, userID string) ([]res.ChatResponse, error)
	SendMessage(ctx context.Context, chatID, senderID, plaintext string) (res.MessageResponse, error)
	ListMessages(ctx context.Context, chatID, requesterID string) ([]res.MessageResponse, error)
	IsMember(ctx context.Context, chatID, userID string) (bool, error)
}
