package port

import (
	"context"
	"time"
)

type ChangeOp string

const (
	ChangeOpAdd    ChangeOp = "add"
	ChangeOpToggle ChangeOp = "toggle"
	ChangeOpRemove ChangeOp = "remove"
)

// Change describes one committed mutation of the todo set. Subscribers do
// not receive record data; they re-query and push a fresh snapshot, so every
// delivery reflects a consistent read.
type Change struct {
	Op   ChangeOp  `json:"op"`
	UUID string    `json:"uuid"`
	At   time.Time `json:"at"`
}

type ChangePublisher interface {
	Publish(ctx context.Context, change Change)
}

// ChangeFeed fans committed changes out to live subscriptions. Subscribe
// returns a channel that closes when cancel is called or the feed shuts down.
type ChangeFeed interface {
	ChangePublisher
	Subscribe(ctx context.Context) (<-chan Change, func())
}
