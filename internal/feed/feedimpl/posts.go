package feedimpl

import (
	"context"
	"strings"

	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/internal/feed"
	"github.com/orgball2608/tint-feed/internal/querycache"
)

func (f *FeedImpl) CreatePost(ctx context.Context, in feed.CreatePostInput) (domain.Post, error) {
	in.Caption = strings.TrimSpace(in.Caption)
	if len(in.Media) == 0 {
		in.Media = nil
	}
	if err := f.validateStruct(in); err != nil {
		return domain.Post{}, err
	}

	id := backend.NewID()

	res, err := f.cache.Mutate(ctx, feed.PostsKey(), func(ctx context.Context) (any, error) {
		mediaIDs, err := f.media.Resolve(ctx, in.Media)
		if err != nil {
			return nil, err
		}

		row, err := f.rows.CreateRow(ctx, f.posts, id, backend.Fields{
			"user_id": in.UserID,
			"caption": in.Caption,
			"media":   mediaIDs,
			"likes":   domain.LikeSet{},
		})
		if err != nil {
			return nil, err
		}
		return decodePost(row)
	}, nil)
	if err != nil {
		f.log.Error("Create post failed", "user_id", in.UserID, "error", err)
		return domain.Post{}, err
	}

	post := res.(domain.Post)
	f.log.Info("Post created", "post_id", post.ID, "media", len(post.Media))
	return post, nil
}

// EditPost applies edits optimistically to the cached feed and writes them in one update.
func (f *FeedImpl) EditPost(ctx context.Context, postID string, edits ...feed.PostEdit) (domain.Post, error) {
	if postID == "" {
		return domain.Post{}, invalid("Post id is required")
	}
	if len(edits) == 0 {
		return domain.Post{}, invalid("Nothing to update")
	}
	for _, edit := range edits {
		if err := f.validateEdit(edit); err != nil {
			return domain.Post{}, err
		}
	}

	// Like direction is decided from the local copy, before the optimistic patch.
	base, cached := f.cachedPost(postID)
	if cached {
		if err := checkNotEmpty(applyEdits(base, edits)); err != nil {
			return domain.Post{}, err
		}
	}

	optimistic := func(old any) any {
		posts, ok := old.([]domain.Post)
		if !ok {
			return old
		}
		return replacePost(posts, postID, func(p domain.Post) domain.Post {
			return applyEdits(p, edits)
		})
	}

	res, err := f.cache.Mutate(ctx, feed.PostsKey(), func(ctx context.Context) (any, error) {
		if !cached {
			row, err := f.rows.GetRow(ctx, f.posts, postID)
			if err != nil {
				return nil, err
			}
			if base, err = decodePost(row); err != nil {
				return nil, err
			}
			if err := checkNotEmpty(applyEdits(base, edits)); err != nil {
				return nil, err
			}
		}

		fields, err := f.editFields(ctx, base, edits)
		if err != nil {
			return nil, err
		}

		row, err := f.rows.UpdateRow(ctx, f.posts, postID, fields)
		if err != nil {
			return nil, err
		}
		return decodePost(row)
	}, optimistic)
	if err != nil {
		f.log.Error("Edit post failed", "post_id", postID, "error", err)
		return domain.Post{}, err
	}

	return res.(domain.Post), nil
}

func (f *FeedImpl) validateEdit(edit feed.PostEdit) error {
	switch e := edit.(type) {
	case feed.EditCaption, feed.EditMedia, feed.ToggleLike:
		return f.validateStruct(e)
	case nil:
		return invalid("Nothing to update")
	default:
		return invalid("Unsupported post edit")
	}
}

// editFields builds the row patch. Local media is uploaded here, inside the
// remote step, so the optimistic patch never waits on the network.
func (f *FeedImpl) editFields(ctx context.Context, base domain.Post, edits []feed.PostEdit) (backend.Fields, error) {
	fields := backend.Fields{}
	likes := base.Likes

	for _, edit := range edits {
		switch e := edit.(type) {
		case feed.EditCaption:
			fields["caption"] = strings.TrimSpace(e.Caption)
		case feed.EditMedia:
			ids, err := f.media.Resolve(ctx, e.Media)
			if err != nil {
				return nil, err
			}
			fields["media"] = ids
		case feed.ToggleLike:
			likes = likes.Toggle(e.UserID)
			fields["likes"] = likes
		}
	}
	return fields, nil
}

func applyEdits(p domain.Post, edits []feed.PostEdit) domain.Post {
	out := p.Clone()
	for _, edit := range edits {
		switch e := edit.(type) {
		case feed.EditCaption:
			out.Caption = strings.TrimSpace(e.Caption)
		case feed.EditMedia:
			out.Media = append([]string(nil), e.Media...)
		case feed.ToggleLike:
			out.Likes = out.Likes.Toggle(e.UserID)
		}
	}
	return out
}

func checkNotEmpty(p domain.Post) error {
	if p.Caption == "" && len(p.Media) == 0 {
		return invalid("Please add a caption or media")
	}
	return nil
}

// DeletePost removes the post from the feed at once. Its media files are
// deleted best-effort before the row; a failed file delete is only logged.
func (f *FeedImpl) DeletePost(ctx context.Context, postID string) error {
	if postID == "" {
		return invalid("Post id is required")
	}

	base, cached := f.cachedPost(postID)

	optimistic := func(old any) any {
		posts, ok := old.([]domain.Post)
		if !ok {
			return old
		}
		out := make([]domain.Post, 0, len(posts))
		for _, p := range posts {
			if p.ID != postID {
				out = append(out, p)
			}
		}
		return out
	}

	_, err := f.cache.Mutate(ctx, feed.PostsKey(), func(ctx context.Context) (any, error) {
		if !cached {
			row, err := f.rows.GetRow(ctx, f.posts, postID)
			if err != nil {
				return nil, err
			}
			if base, err = decodePost(row); err != nil {
				return nil, err
			}
		}

		if failed := f.media.Remove(ctx, base.Media); failed > 0 {
			f.log.Warn("Some media files were not deleted", "post_id", postID, "failed", failed)
		}

		return nil, f.rows.DeleteRow(ctx, f.posts, postID)
	}, optimistic, querycache.WithInvalidate(feed.CommentsKey(postID)))
	if err != nil {
		f.log.Error("Delete post failed", "post_id", postID, "error", err)
		return err
	}

	f.log.Info("Post deleted", "post_id", postID)
	return nil
}

func (f *FeedImpl) cachedPost(postID string) (domain.Post, bool) {
	data, ok := f.cache.GetData(feed.PostsKey())
	if !ok {
		return domain.Post{}, false
	}
	posts, _ := data.([]domain.Post)
	for _, p := range posts {
		if p.ID == postID {
			return p.Clone(), true
		}
	}
	return domain.Post{}, false
}

func replacePost(posts []domain.Post, postID string, fn func(domain.Post) domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	for i, p := range posts {
		if p.ID == postID {
			out[i] = fn(p)
		} else {
			out[i] = p
		}
	}
	return out
}
