package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fmpberger88/EnigmaTalk/entity"
	"github.com/fmpberger88/EnigmaTalk/exception"
)

type GormStore struct {
	db       *gorm.DB
	users    Repository[entity.User]
	messages Repository[entity.Messages]
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// storeErr maps context expiry onto the retryable unavailable error so
// callers can distinguish a slow store from a broken request.
func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return exception.ErrUnavailable
	}
	return err
}

func (store *GormStore) CreateUser(ctx context.Context, user *entity.User) error {
	return storeErr(store.users.Save(ctx, store.db, user))
}

func (store *GormStore) FindUserByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := store.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}

func (store *GormStore) FindUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := store.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}

func (store *GormStore) FindUsersByUsernames(ctx context.Context, usernames []string) ([]entity.User, error) {
	var users []entity.User
	err := store.db.WithContext(ctx).Where("username IN ?", usernames).Find(&users).Error
	return users, storeErr(err)
}

func (store *GormStore) ListUsers(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := store.db.WithContext(ctx).Order("username ASC").Find(&users).Error
	return users, storeErr(err)
}

func (store *GormStore) CreateChatWithMembers(ctx context.Context, userIDs []string) (*entity.Chat, error) {
	chat := &entity.Chat{}
	err := store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		participants := make([]entity.ChatParticipant, 0, len(userIDs))
		for _, userID := range userIDs {
			participants = append(participants, entity.ChatParticipant{ChatID: chat.ID, UserID: userID})
		}
		if err := tx.Create(&participants).Error; err != nil {
			return err
		}
		chat.Participants = participants
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return chat, nil
}

func (store *GormStore) FindChatByID(ctx context.Context, id string) (*entity.Chat, error) {
	var chat entity.Chat
	err := store.db.WithContext(ctx).
		Preload("Participants").
		Where("id = ?", id).
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &chat, nil
}

func (store *GormStore) FindChatByExactMembers(ctx context.Context, userIDs []string) (*entity.Chat, error) {
	// Chats containing every requested member, restricted to those whose
	// total participant count equals the set size so supersets never match.
	containing := store.db.Model(&entity.ChatParticipant{}).
		Select("chat_id").
		Where("user_id IN ?", userIDs).
		Group("chat_id").
		Having("COUNT(DISTINCT user_id) = ?", len(userIDs))

	var chat entity.Chat
	err := store.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?)", containing).
		Where("(SELECT COUNT(*) FROM t_chat_participant p WHERE p.chat_id = t_chat.id) = ?", len(userIDs)).
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &chat, nil
}

func (store *GormStore) ListChatsForUser(ctx context.Context, userID string) ([]entity.Chat, error) {
	var chats []entity.Chat
	err := store.db.WithContext(ctx).
		Model(&entity.Chat{}).
		Joins("JOIN t_chat_participant cp ON cp.chat_id = t_chat.id").
		Where("cp.user_id = ?", userID).
		Order("t_chat.updated_at DESC").
		// newest first so the first preloaded row is the chat summary line
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, seq DESC")
		}).
		Preload("Participants.User").
		Find(&chats).Error
	return chats, storeErr(err)
}

func (store *GormStore) IsUserInChat(ctx context.Context, chatID, userID string) (bool, error) {
	var count int64
	err := store.db.WithContext(ctx).
		Model(&entity.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	if err != nil {
		return false, storeErr(err)
	}
	return count > 0, nil
}

func (store *GormStore) TouchChat(ctx context.Context, chatID string) error {
	err := store.db.WithContext(ctx).
		Model(&entity.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", time.Now()).Error
	return storeErr(err)
}

func (store *GormStore) CreateMessage(ctx context.Context, chatID, senderID, ciphertext string) (*entity.Messages, error) {
	message := &entity.Messages{
		Content:  ciphertext,
		ChatId:   chatID,
		SenderId: senderID,
	}
	if err := store.messages.Save(ctx, store.db, message); err != nil {
		return nil, storeErr(err)
	}
	return message, nil
}

func (store *GormStore) ListMessages(ctx context.Context, chatID string) ([]entity.Messages, error) {
	var messages []entity.Messages
	err := store.db.WithContext(ctx).
		Preload("Sender").
		Where("chat_id = ?", chatID).
		Order("created_at ASC, seq ASC").
		Find(&messages).Error
	return messages, storeErr(err)
}

func (store *GormStore) FindMessage(ctx context.Context, id string) (*entity.Messages, error) {
	var message entity.Messages
	err := store.db.WithContext(ctx).Where("id = ?", id).First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &message, nil
}

func (store *GormStore) DeleteMessage(ctx context.Context, id string) error {
	// Hard delete; deleting an absent row is a no-op.
	err := store.db.WithContext(ctx).Delete(&entity.Messages{}, "id = ?", id).Error
	return storeErr(err)
}
