package update

import "time"

// Kinds
const (
	KindSkipRequest  = "skip_request"
	KindSlotReleased = "slot_released"
	KindCampaign     = "campaign"
)

// Update is an entry of the feed the notification collaborator polls.
type Update struct {
	ID          int64     `json:"id" db:"id"`
	Kind        string    `json:"kind" db:"kind"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

type NewUpdate struct {
	Kind        string
	Title       string
	Description string
}
