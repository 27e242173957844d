package feedimpl

import (
	"context"

	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/internal/feed"
	"github.com/orgball2608/tint-feed/internal/querycache"
	"github.com/orgball2608/tint-feed/pkg/errors"
)

// ToggleFollow follows or unfollows targetUserID. The two user rows are
// written one after the other; a failure between them is reconciled by the
// refetch that follows every mutation.
func (f *FeedImpl) ToggleFollow(ctx context.Context, currentUserID, targetUserID string) error {
	if currentUserID == "" || targetUserID == "" {
		return invalid("User id is required")
	}
	if currentUserID == targetUserID {
		return invalid("You cannot follow yourself")
	}

	optimistic := func(old any) any {
		u, ok := old.(*domain.User)
		if !ok || u == nil {
			return old
		}
		next := u.Clone()
		next.Following = next.Following.Toggle(targetUserID)
		return &next
	}

	_, err := f.cache.Mutate(ctx, feed.UserKey(currentUserID), func(ctx context.Context) (any, error) {
		current, err := f.loadUser(ctx, currentUserID)
		if err != nil {
			return nil, err
		}
		target, err := f.loadUser(ctx, targetUserID)
		if err != nil {
			return nil, err
		}

		if current.IsFollowing(targetUserID) {
			current.Following = current.Following.Remove(targetUserID)
			target.Followers = target.Followers.Remove(currentUserID)
		} else {
			current.Following = current.Following.Add(targetUserID)
			target.Followers = target.Followers.Add(currentUserID)
		}

		if _, err := f.rows.UpdateRow(ctx, f.users, currentUserID, backend.Fields{"following": current.Following}); err != nil {
			return nil, err
		}
		if _, err := f.rows.UpdateRow(ctx, f.users, targetUserID, backend.Fields{"followers": target.Followers}); err != nil {
			return nil, errors.Wrap(err, "update followers")
		}
		return &current, nil
	}, optimistic, querycache.WithInvalidate(feed.PostsKey(), feed.UserKey(targetUserID)))
	if err != nil {
		f.log.Error("Toggle follow failed", "user_id", currentUserID, "target_id", targetUserID, "error", err)
		return err
	}

	return nil
}

func (f *FeedImpl) loadUser(ctx context.Context, userID string) (domain.User, error) {
	row, err := f.rows.GetRow(ctx, f.users, userID)
	if err != nil {
		return domain.User{}, err
	}
	return decodeUser(row)
}
