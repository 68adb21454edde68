package usecase

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmpberger88/EnigmaTalk/entity"
	"github.com/fmpberger88/EnigmaTalk/exception"
	"github.com/fmpberger88/EnigmaTalk/repository"
	"github.com/fmpberger88/EnigmaTalk/security"
)

const testEncryptionKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newChatFixture(t *testing.T) (*repository.MemoryStore, *ChatUsecaseImpl) {
	t.Helper()
	store := repository.NewMemoryStore()
	codec, err := security.NewCodec(testEncryptionKey)
	require.NoError(t, err)
	return store, NewChatUsecase(store, codec, quietLogger())
}

func registerUser(t *testing.T, store *repository.MemoryStore, username string) *entity.User {
	t.Helper()
	user := &entity.User{Username: username, Password: "hashed"}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestCreateOrGetChat_Idempotent(t *testing.T) {
	ctx := context.Background()
	store, uc := newChatFixture(t)

	alice := registerUser(t, store, "alice")
	registerUser(t, store, "bob")

	first, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"bob"})
	require.NoError(t, err)
	second, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"bob"})
	require.NoError(t, err)

	assert.Equal(t, first.ChatId, second.ChatId)
	assert.Len(t, first.Members, 2)
}

func TestCreateOrGetChat_ConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	store, uc := newChatFixture(t)

	alice := registerUser(t, store, "alice")
	registerUser(t, store, "bob")

	const callers = 16
	chatIDs := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			response, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"bob"})
			if err != nil {
				errs[i] = err
				return
			}
			chatIDs[i] = response.ChatId
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
	}
	for i := 1; i < callers; i++ {
		assert.Equal(t, chatIDs[0], chatIDs[i], "all callers must observe the same chat")
	}

	chats, err := store.ListChatsForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, chats, 1, "exactly one chat must exist for the member set")
}

func TestCreateOrGetChat_UnknownUsernames(t *testing.T) {
	ctx := context.Background()
	store, uc := newChatFixture(t)

	alice := registerUser(t, store, "alice")
	registerUser(t, store, "bob")

	_, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"bob", "ghost", "phantom"})
	require.ErrorIs(t, err, exception.ErrNotFound)
	assert.Contains(t, err.Error(), "ghost")
	assert.Contains(t, err.Error(), "phantom")
}

func TestCreateOrGetChat_RequiresTwoMembers(t *testing.T) {
	ctx := context.Background()
	store, uc := newChatFixture(t)

	alice := registerUser(t, store, "alice")

	_, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"alice"})
	assert.ErrorIs(t, err, exception.ErrInvalidRequest)
}

func TestSendMessage_PersistsCiphertextReturnsPlaintext(t *testing.T) {
	ctx := context.Background()
	store, uc := newChatFixture(t)

	alice := registerUser(t, store, "alice")
	registerUser(t, store, "bob")
	chat, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"bob"})
	require.NoError(t, err)

	response, err := uc.SendMessage(ctx, chat.ChatId, alice.ID, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", response.Content)
	assert.Equal(t, "alice", response.SenderUsername)

	stored, err := store.FindMessage(ctx, response.MessageId)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "hi", stored.Content, "content must be sealed at rest")
	assert.Len(t, strings.Split(stored.Content, ":"), 3)
}

func TestSendMessage_ChatNotFound(t *testing.T) {
	ctx := context.Background()
	store, uc := newChatFixture(t)

	alice := registerUser(t, store, "alice")

	_, err := uc.SendMessage(ctx, "no-such-chat", alice.ID, "hi")
	assert.ErrorIs(t, err, exception.ErrNotFound)
}

func TestSendMessage_NonMemberForbidden(t *testing.T) {
	ctx := context.Background()
	store, uc := newChatFixture(t)

	alice := registerUser(t, store, "alice")
	registerUser(t, store, "bob")
	carol := registerUser(t, store, "carol")
	chat, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"bob"})
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, chat.ChatId, carol.ID, "let me in")
	require.ErrorIs(t, err, exception.ErrForbidden)

	messages, err := store.ListMessages(ctx, chat.ChatId)
	require.NoError(t, err)
	assert.Empty(t, messages, "no row may be persisted on a forbidden send")
}

func TestListMessages_OrderAndDecryption(t *testing.T) {
	ctx := context.Background()
	store, uc := newChatFixture(t)

	alice := registerUser(t, store, "alice")
	bob := registerUser(t, store, "bob")
	chat, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"bob"})
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, chat.ChatId, alice.ID, "first")
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, chat.ChatId, bob.ID, "second")
	require.NoError(t, err)

	for _, requester := range []*entity.User{alice, bob} {
		messages, err := uc.ListMessages(ctx, chat.ChatId, requester.ID)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "first", messages[0].Content)
		assert.Equal(t, "alice", messages[0].SenderUsername)
		assert.Equal(t, "second", messages[1].Content)
		assert.Equal(t, "bob", messages[1].SenderUsername)
	}
}

func TestListMessages_NonMemberForbidden(t *testing.T) {
	ctx := context.Background()
	store, uc := newChatFixture(t)

	alice := registerUser(t, store, "alice")
	registerUser(t, store, "bob")
	carol := registerUser(t, store, "carol")
	chat, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"bob"})
	require.NoError(t, err)

	_, err = uc.ListMessages(ctx, chat.ChatId, carol.ID)
	assert.ErrorIs(t, err, exception.ErrForbidden)
}

func TestListMessages_CorruptEntryFailsWholeCall(t *testing.T) {
	ctx := context.Background()
	store, uc := newChatFixture(t)

	alice := registerUser(t, store, "alice")
	registerUser(t, store, "bob")
	chat, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"bob"})
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, chat.ChatId, alice.ID, "fine")
	require.NoError(t, err)

	// a row written outside the codec: transcript must be all-or-nothing
	_, err = store.CreateMessage(ctx, chat.ChatId, alice.ID, "not a sealed blob")
	require.NoError(t, err)

	_, err = uc.ListMessages(ctx, chat.ChatId, alice.ID)
	assert.ErrorIs(t, err, exception.ErrFormat)
}

func TestListMessages_TamperedEntryFailsWholeCall(t *testing.T) {
	ctx := context.Background()
	store, uc := newChatFixture(t)

	alice := registerUser(t, store, "alice")
	registerUser(t, store, "bob")
	chat, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"bob"})
	require.NoError(t, err)

	// sealed under a different key, so the tag cannot authenticate
	otherCodec, err := security.NewCodec(strings.Repeat("ab", 32))
	require.NoError(t, err)
	foreign, err := otherCodec.Encrypt("planted")
	require.NoError(t, err)
	_, err = store.CreateMessage(ctx, chat.ChatId, alice.ID, foreign)
	require.NoError(t, err)

	_, err = uc.ListMessages(ctx, chat.ChatId, alice.ID)
	assert.ErrorIs(t, err, exception.ErrIntegrity)
}

func TestListChats_SummariesAndRecency(t *testing.T) {
	ctx := context.Background()
	store, uc := newChatFixture(t)

	alice := registerUser(t, store, "alice")
	registerUser(t, store, "bob")
	registerUser(t, store, "carol")

	withBob, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"bob"})
	require.NoError(t, err)
	withCarol, err := uc.CreateOrGetChat(ctx, alice.ID, []string{"carol"})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = uc.SendMessage(ctx, withBob.ChatId, alice.ID, "hello bob")
	require.NoError(t, err)

	chats, err := uc.ListChats(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)

	assert.Equal(t, withBob.ChatId, chats[0].ChatId, "most recently active chat first")
	assert.Equal(t, "hello bob", chats[0].LastMessage, "last message must be decrypted")
	assert.Equal(t, withCarol.ChatId, chats[1].ChatId)
	assert.Empty(t, chats[1].LastMessage)

	usernames := []string{chats[0].Members[0].Username, chats[0].Members[1].Username}
	assert.ElementsMatch(t, []string{"alice", "bob"}, usernames)
}
