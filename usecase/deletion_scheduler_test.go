package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmpberger88/EnigmaTalk/entity"
	"github.com/fmpberger88/EnigmaTalk/enum"
	"github.com/fmpberger88/EnigmaTalk/exception"
	"github.com/fmpberger88/EnigmaTalk/repository"
)

func newSchedulerFixture(t *testing.T, delay time.Duration) (*repository.MemoryStore, *DeletionScheduler, *entity.Messages, *entity.User, *entity.User) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()

	alice := registerUser(t, store, "alice")
	bob := registerUser(t, store, "bob")
	chat, err := store.CreateChatWithMembers(ctx, []string{alice.ID, bob.ID})
	require.NoError(t, err)
	message, err := store.CreateMessage(ctx, chat.ID, alice.ID, "sealed")
	require.NoError(t, err)

	return store, NewDeletionScheduler(store, quietLogger(), delay), message, alice, bob
}

func TestScheduleDeletion_DeletesAfterDelay(t *testing.T) {
	ctx := context.Background()
	store, scheduler, message, _, bob := newSchedulerFixture(t, 20*time.Millisecond)

	require.NoError(t, scheduler.ScheduleDeletion(ctx, message.ID, bob.ID))
	assert.Equal(t, enum.MessageStatePendingDeletion, scheduler.State(message.ID))

	// not yet deleted before the timer fires
	found, err := store.FindMessage(ctx, message.ID)
	require.NoError(t, err)
	assert.NotNil(t, found)

	require.Eventually(t, func() bool {
		found, err := store.FindMessage(ctx, message.ID)
		return err == nil && found == nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, enum.MessageStateDeleted, scheduler.State(message.ID))
}

func TestScheduleDeletion_NonMemberForbidden(t *testing.T) {
	ctx := context.Background()
	store, scheduler, message, _, _ := newSchedulerFixture(t, 20*time.Millisecond)

	carol := registerUser(t, store, "carol")
	err := scheduler.ScheduleDeletion(ctx, message.ID, carol.ID)
	require.ErrorIs(t, err, exception.ErrForbidden)

	// message untouched
	time.Sleep(50 * time.Millisecond)
	found, err := store.FindMessage(ctx, message.ID)
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestScheduleDeletion_UnknownMessage(t *testing.T) {
	ctx := context.Background()
	_, scheduler, _, alice, _ := newSchedulerFixture(t, 20*time.Millisecond)

	err := scheduler.ScheduleDeletion(ctx, "no-such-message", alice.ID)
	assert.ErrorIs(t, err, exception.ErrNotFound)
}

func TestScheduleDeletion_DoubleScheduleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, scheduler, message, alice, bob := newSchedulerFixture(t, 20*time.Millisecond)

	// both readers acknowledge; two timers fire, delete stays idempotent
	require.NoError(t, scheduler.ScheduleDeletion(ctx, message.ID, alice.ID))
	require.NoError(t, scheduler.ScheduleDeletion(ctx, message.ID, bob.ID))

	require.Eventually(t, func() bool {
		found, err := store.FindMessage(ctx, message.ID)
		return err == nil && found == nil
	}, time.Second, 5*time.Millisecond)

	// allow the second timer to fire as well; nothing may blow up
	time.Sleep(50 * time.Millisecond)
	found, err := store.FindMessage(ctx, message.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestDefaultDelayApplied(t *testing.T) {
	scheduler := NewDeletionScheduler(repository.NewMemoryStore(), quietLogger(), 0)
	assert.Equal(t, DefaultMessageTTL, scheduler.Delay)
}
