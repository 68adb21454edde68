package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fmpberger88/EnigmaTalk/enum"
	"github.com/fmpberger88/EnigmaTalk/exception"
	"github.com/fmpberger88/EnigmaTalk/repository"
)

// DefaultMessageTTL is the disappearing-message delay between a read
// acknowledgment and the hard delete.
const DefaultMessageTTL = 30 * time.Second

// DeletionScheduler arms one-shot timers that hard-delete messages after a
// read acknowledgment. Timers are in-memory and fire-and-forget: there is no
// cancellation, a disconnect does not cancel a pending deletion, and timers
// are lost on restart.
type DeletionScheduler struct {
	repository.Store
	*logrus.Logger
	Delay time.Duration

	mu     sync.Mutex
	states map[string]enum.MessageState
}

func NewDeletionScheduler(store repository.Store, logger *logrus.Logger, delay time.Duration) *DeletionScheduler {
	if delay <= 0 {
		delay = DefaultMessageTTL
	}
	return &DeletionScheduler{
		Store:  store,
		Logger: logger,
		Delay:  delay,
		states: make(map[string]enum.MessageState),
	}
}

// ScheduleDeletion verifies the requester belongs to the message's chat and
// arms the deletion timer. Scheduling an already-pending message re-arms a
// second timer; the delete is idempotent so last-deletion-wins stays correct.
func (scheduler *DeletionScheduler) ScheduleDeletion(ctx context.Context, messageID, requesterID string) error {
	message, err := scheduler.Store.FindMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if message == nil {
		return exception.NotFoundf("message not found")
	}

	isMember, err := scheduler.Store.IsUserInChat(ctx, message.ChatId, requesterID)
	if err != nil {
		return err
	}
	if !isMember {
		return exception.ErrForbidden
	}

	scheduler.setState(messageID, enum.MessageStatePendingDeletion)
	time.AfterFunc(scheduler.Delay, func() {
		// The originating request is long gone; delete on a fresh context.
		if err := scheduler.Store.DeleteMessage(context.Background(), messageID); err != nil {
			scheduler.Logger.WithError(err).Errorf("Failed to delete message %s, dropping", messageID)
			return
		}
		scheduler.setState(messageID, enum.MessageStateDeleted)
		scheduler.Logger.Infof("Message %s deleted after %s", messageID, scheduler.Delay)
	})
	return nil
}

// State reports the lifecycle position of a message as seen by the scheduler.
func (scheduler *DeletionScheduler) State(messageID string) enum.MessageState {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if state, ok := scheduler.states[messageID]; ok {
		return state
	}
	return enum.MessageStateActive
}

func (scheduler *DeletionScheduler) setState(messageID string, state enum.MessageState) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.states[messageID] = state
}
