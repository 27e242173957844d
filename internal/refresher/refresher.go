package refresher

import "context"

// Client keeps observed queries fresh and evicts unused cache entries in the background.
type Client interface {
	// Schedule starts the jobs; they stop when ctx is done.
	Schedule(ctx context.Context) error
}
