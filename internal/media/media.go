package media

import (
	"context"
	"regexp"
)

// uploadedID matches ids issued by the file store. Anything else in a media
// list is a local path or URI still waiting for upload.
var uploadedID = regexp.MustCompile(`^[A-Za-z0-9]{20,}$`)

func IsUploadedID(s string) bool {
	return uploadedID.MatchString(s)
}

type Client interface {
	// Resolve returns items with every local reference replaced by the id of
	// its upload. Positions are kept. Uploads run one at a time; if one fails
	// the earlier uploads stay in the store.
	Resolve(ctx context.Context, items []string) ([]string, error)

	Upload(ctx context.Context, uri string) (string, error)

	// Remove deletes ids best-effort and returns how many deletions failed.
	Remove(ctx context.Context, ids []string) int

	URL(ctx context.Context, id string) (string, error)
}
