package repository

import (
	"context"

	"github.com/fmpberger88/EnigmaTalk/entity"
)

// Store is the durable persistence capability injected into the usecases.
// Finders return (nil, nil) when the entity is absent; callers translate that
// into their own not-found errors. All operations are atomic at the
// single-entity level.
type Store interface {
	CreateUser(ctx context.Context, user *entity.User) error
	FindUserByID(ctx context.Context, id string) (*entity.User, error)
	FindUserByUsername(ctx context.Context, username string) (*entity.User, error)
	FindUsersByUsernames(ctx context.Context, usernames []string) ([]entity.User, error)
	ListUsers(ctx context.Context) ([]entity.User, error)

	// CreateChatWithMembers creates the chat and its participant rows in one
	// transaction.
	CreateChatWithMembers(ctx context.Context, userIDs []string) (*entity.Chat, error)
	FindChatByID(ctx context.Context, id string) (*entity.Chat, error)
	// FindChatByExactMembers matches the member set exactly, never a subset
	// or superset.
	FindChatByExactMembers(ctx context.Context, userIDs []string) (*entity.Chat, error)
	// ListChatsForUser returns chats ordered by recent activity, participants
	// and latest message preloaded.
	ListChatsForUser(ctx context.Context, userID string) ([]entity.Chat, error)
	IsUserInChat(ctx context.Context, chatID, userID string) (bool, error)
	TouchChat(ctx context.Context, chatID string) error

	CreateMessage(ctx context.Context, chatID, senderID, ciphertext string) (*entity.Messages, error)
	// ListMessages orders by created_at ascending, insertion seq breaking ties.
	ListMessages(ctx context.Context, chatID string) ([]entity.Messages, error)
	FindMessage(ctx context.Context, id string) (*entity.Messages, error)
	// DeleteMessage is an idempotent no-op when the message is already gone.
	DeleteMessage(ctx context.Context, id string) error
}
