package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fmpberger88/EnigmaTalk/dto/res"
	"github.com/fmpberger88/EnigmaTalk/entity"
	"github.com/fmpberger88/EnigmaTalk/exception"
	"github.com/fmpberger88/EnigmaTalk/repository"
	"github.com/fmpberger88/EnigmaTalk/security"
)

const timeLayout = "2006-01-02 15:04:05"

type ChatUsecaseImpl struct {
	repository.Store
	Codec *security.Codec
	*logrus.Logger

	// locks serializes CreateOrGetChat per canonical member-set key so
	// concurrent creates for the same set observe a single winner.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewChatUsecase(store repository.Store, codec *security.Codec, logger *logrus.Logger) *ChatUsecaseImpl {
	return &ChatUsecaseImpl{
		Store:  store,
		Codec:  codec,
		Logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (uc *ChatUsecaseImpl) CreateOrGetChat(ctx context.Context, requesterID string, usernames []string) (res.ChatResponse, error) {
	users, err := uc.Store.FindUsersByUsernames(ctx, usernames)
	if err != nil {
		return res.ChatResponse{}, err
	}

	resolved := make(map[string]string, len(users)) // username -> id
	for _, user := range users {
		resolved[user.Username] = user.ID
	}
	var missing []string
	for _, username := range usernames {
		if _, ok := resolved[username]; !ok {
			missing = append(missing, username)
		}
	}
	if len(missing) > 0 {
		return res.ChatResponse{}, exception.NotFoundf("user not found: %s", strings.Join(missing, ", "))
	}

	// full intended member set = resolved ids + requester
	memberSet := map[string]bool{requesterID: true}
	for _, id := range resolved {
		memberSet[id] = true
	}
	if len(memberSet) < 2 {
		return res.ChatResponse{}, exception.InvalidRequestf("a chat requires at least two distinct members")
	}
	memberIDs := make([]string, 0, len(memberSet))
	for id := range memberSet {
		memberIDs = append(memberIDs, id)
	}
	sort.Strings(memberIDs)

	lock := uc.memberSetLock(strings.Join(memberIDs, ","))
	lock.Lock()
	defer lock.Unlock()

	chat, err := uc.Store.FindChatByExactMembers(ctx, memberIDs)
	if err != nil {
		return res.ChatResponse{}, err
	}
	if chat == nil {
		chat, err = uc.Store.CreateChatWithMembers(ctx, memberIDs)
		if err != nil {
			return res.ChatResponse{}, err
		}
		uc.Logger.Infof("Created chat %s with %d members", chat.ID, len(memberIDs))
	}

	return uc.toChatResponse(ctx, chat)
}

func (uc *ChatUsecaseImpl) ListChats(ctx context.Context, userID string) ([]res.ChatResponse, error) {
	chats, err := uc.Store.ListChatsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	chatResponses := make([]res.ChatResponse, 0, len(chats))
	for i := range chats {
		response, err := uc.toChatResponse(ctx, &chats[i])
		if err != nil {
			return nil, err
		}
		chatResponses = append(chatResponses, response)
	}
	return chatResponses, nil
}

func (uc *ChatUsecaseImpl) SendMessage(ctx context.Context, chatID, senderID, plaintext string) (res.MessageResponse, error) {
	chat, err := uc.Store.FindChatByID(ctx, chatID)
	if err != nil {
		return res.MessageResponse{}, err
	}
	if chat == nil {
		return res.MessageResponse{}, exception.NotFoundf("chat not found")
	}
	if !isParticipant(chat, senderID) {
		return res.MessageResponse{}, exception.ErrForbidden
	}

	sender, err := uc.Store.FindUserByID(ctx, senderID)
	if err != nil {
		return res.MessageResponse{}, err
	}
	if sender == nil {
		return res.MessageResponse{}, exception.NotFoundf("sender not found")
	}

	ciphertext, err := uc.Codec.Encrypt(plaintext)
	if err != nil {
		return res.MessageResponse{}, err
	}

	message, err := uc.Store.CreateMessage(ctx, chatID, senderID, ciphertext)
	if err != nil {
		return res.MessageResponse{}, err
	}
	if err := uc.Store.TouchChat(ctx, chatID); err != nil {
		uc.Logger.WithError(err).Warnf("Failed to touch chat %s", chatID)
	}

	// return the original plaintext, never a decrypt round-trip
	return res.MessageResponse{
		MessageId:      message.ID,
		ChatId:         chatID,
		Content:        plaintext,
		SenderId:       senderID,
		SenderUsername: sender.Username,
		CreatedAt:      message.CreatedAt.Format(timeLayout),
	}, nil
}

func (uc *ChatUsecaseImpl) ListMessages(ctx context.Context, chatID, requesterID string) ([]res.MessageResponse, error) {
	chat, err := uc.Store.FindChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, exception.NotFoundf("chat not found")
	}
	if !isParticipant(chat, requesterID) {
		return nil, exception.ErrForbidden
	}

	messages, err := uc.Store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}

	// A single corrupt entry fails the whole call: the transcript is
	// all-or-nothing.
	responses := make([]res.MessageResponse, 0, len(messages))
	for _, message := range messages {
		plaintext, err := uc.Codec.Decrypt(message.Content)
		if err != nil {
			uc.Logger.WithError(err).Errorf("Failed to decrypt message %s", message.ID)
			return nil, err
		}
		responses = append(responses, res.MessageResponse{
			MessageId:      message.ID,
			ChatId:         message.ChatId,
			Content:        plaintext,
			SenderId:       message.SenderId,
			SenderUsername: message.Sender.Username,
			CreatedAt:      message.CreatedAt.Format(timeLayout),
		})
	}
	return responses, nil
}

func (uc *ChatUsecaseImpl) IsMember(ctx context.Context, chatID, userID string) (bool, error) {
	return uc.Store.IsUserInChat(ctx, chatID, userID)
}

func (uc *ChatUsecaseImpl) memberSetLock(key string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	lock, ok := uc.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		uc.locks[key] = lock
	}
	return lock
}

func (uc *ChatUsecaseImpl) toChatResponse(ctx context.Context, chat *entity.Chat) (res.ChatResponse, error) {
	members := make([]res.ChatMember, 0, len(chat.Participants))
	for _, participant := range chat.Participants {
		member := res.ChatMember{ID: participant.UserID, Username: participant.User.Username}
		if member.Username == "" {
			user, err := uc.Store.FindUserByID(ctx, participant.UserID)
			if err != nil {
				return res.ChatResponse{}, err
			}
			if user != nil {
				member.Username = user.Username
			}
		}
		members = append(members, member)
	}

	// preloaded newest first, so the head row is the summary line
	var lastMessage string
	if len(chat.Messages) > 0 {
		plaintext, err := uc.Codec.Decrypt(chat.Messages[0].Content)
		if err != nil {
			return res.ChatResponse{}, err
		}
		lastMessage = plaintext
	}

	return res.ChatResponse{
		ChatId:      chat.ID,
		Members:     members,
		LastMessage: lastMessage,
		CreatedAt:   chat.CreatedAt.Format(timeLayout),
		UpdatedAt:   chat.UpdatedAt.Format(timeLayout),
	}, nil
}

func isParticipant(chat *entity.Chat, userID string) bool {
	for _, participant := range chat.Participants {
		if participant.UserID == userID {
			return true
		}
	}
	return false
}
