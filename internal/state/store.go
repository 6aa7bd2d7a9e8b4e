package state

import "context"

// SeenStore tracks video identifiers that have already been commented on.
// Implementations must persist MarkSeen durably before returning; a returned
// error means the id is NOT recorded and the action may be repeated later.
type SeenStore interface {
	HasSeen(ctx context.Context, id string) (bool, error)
	MarkSeen(ctx context.Context, id string) error
	Close() error
}
