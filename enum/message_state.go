package enum

type MessageState string

const (
	MessageStateActive          MessageState = "active"
	MessageStatePendingDeletion MessageState = "pending_deletion"
	MessageStateDeleted         MessageState = "deleted"
)
