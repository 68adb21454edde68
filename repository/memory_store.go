package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fmpberger88/EnigmaTalk/entity"
)

// MemoryStore is a mutex-guarded in-memory Store used by tests and local
// development. It mirrors the ordering and idempotency guarantees of the
// GORM-backed store.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*entity.User
	chats    map[string]*entity.Chat
	members  map[string][]string // chatID -> userIDs
	messages map[string]*entity.Messages
	seq      int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*entity.User),
		chats:    make(map[string]*entity.Chat),
		members:  make(map[string][]string),
		messages: make(map[string]*entity.Messages),
	}
}

func (store *MemoryStore) CreateUser(ctx context.Context, user *entity.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	clone := *user
	store.users[user.ID] = &clone
	return nil
}

func (store *MemoryStore) FindUserByID(ctx context.Context, id string) (*entity.User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	user, ok := store.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (store *MemoryStore) FindUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	for _, user := range store.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (store *MemoryStore) FindUsersByUsernames(ctx context.Context, usernames []string) ([]entity.User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	wanted := make(map[string]bool, len(usernames))
	for _, username := range usernames {
		wanted[username] = true
	}

	var users []entity.User
	for _, user := range store.users {
		if wanted[user.Username] {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (store *MemoryStore) ListUsers(ctx context.Context) ([]entity.User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var users []entity.User
	for _, user := range store.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (store *MemoryStore) CreateChatWithMembers(ctx context.Context, userIDs []string) (*entity.Chat, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := time.Now()
	chat := &entity.Chat{}
	chat.ID = uuid.New().String()
	chat.CreatedAt, chat.UpdatedAt = now, now

	memberIDs := append([]string(nil), userIDs...)
	store.chats[chat.ID] = chat
	store.members[chat.ID] = memberIDs

	return store.chatWithParticipants(chat.ID), nil
}

func (store *MemoryStore) FindChatByID(ctx context.Context, id string) (*entity.Chat, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	if _, ok := store.chats[id]; !ok {
		return nil, nil
	}
	return store.chatWithParticipants(id), nil
}

func (store *MemoryStore) FindChatByExactMembers(ctx context.Context, userIDs []string) (*entity.Chat, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	wanted := sortedSet(userIDs)
	for chatID, memberIDs := range store.members {
		if equalSets(wanted, sortedSet(memberIDs)) {
			return store.chatWithParticipants(chatID), nil
		}
	}
	return nil, nil
}

func (store *MemoryStore) ListChatsForUser(ctx context.Context, userID string) ([]entity.Chat, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var chats []entity.Chat
	for chatID, memberIDs := range store.members {
		for _, memberID := range memberIDs {
			if memberID == userID {
				chat := store.chatWithParticipants(chatID)
				if last := store.lastMessage(chatID); last != nil {
					chat.Messages = []entity.Messages{*last}
				}
				chats = append(chats, *chat)
				break
			}
		}
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].UpdatedAt.After(chats[j].UpdatedAt) })
	return chats, nil
}

func (store *MemoryStore) IsUserInChat(ctx context.Context, chatID, userID string) (bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	for _, memberID := range store.members[chatID] {
		if memberID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (store *MemoryStore) TouchChat(ctx context.Context, chatID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if chat, ok := store.chats[chatID]; ok {
		chat.UpdatedAt = time.Now()
	}
	return nil
}

func (store *MemoryStore) CreateMessage(ctx context.Context, chatID, senderID, ciphertext string) (*entity.Messages, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.seq++
	now := time.Now()
	message := &entity.Messages{
		Seq:      store.seq,
		Content:  ciphertext,
		ChatId:   chatID,
		SenderId: senderID,
	}
	message.ID = uuid.New().String()
	message.CreatedAt, message.UpdatedAt = now, now
	store.messages[message.ID] = message

	clone := *message
	return &clone, nil
}

func (store *MemoryStore) ListMessages(ctx context.Context, chatID string) ([]entity.Messages, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var messages []entity.Messages
	for _, message := range store.messages {
		if message.ChatId != chatID {
			continue
		}
		clone := *message
		if sender, ok := store.users[message.SenderId]; ok {
			clone.Sender = *sender
		}
		messages = append(messages, clone)
	}
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].Seq < messages[j].Seq
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func (store *MemoryStore) FindMessage(ctx context.Context, id string) (*entity.Messages, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	message, ok := store.messages[id]
	if !ok {
		return nil, nil
	}
	clone := *message
	return &clone, nil
}

func (store *MemoryStore) DeleteMessage(ctx context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.messages, id)
	return nil
}

// chatWithParticipants builds a detached copy; callers must hold the lock.
func (store *MemoryStore) chatWithParticipants(chatID string) *entity.Chat {
	src := store.chats[chatID]
	chat := &entity.Chat{BaseEntity: src.BaseEntity}
	for _, memberID := range store.members[chatID] {
		participant := entity.ChatParticipant{ChatID: chatID, UserID: memberID}
		if user, ok := store.users[memberID]; ok {
			participant.User = *user
		}
		chat.Participants = append(chat.Participants, participant)
	}
	return chat
}

func (store *MemoryStore) lastMessage(chatID string) *entity.Messages {
	var last *entity.Messages
	for _, message := range store.messages {
		if message.ChatId != chatID {
			continue
		}
		if last == nil || message.Seq > last.Seq {
			last = message
		}
	}
	if last == nil {
		return nil
	}
	clone := *last
	return &clone
}

func sortedSet(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
