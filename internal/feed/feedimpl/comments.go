package feedimpl

import (
	"context"
	"strings"

	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/internal/feed"
)

// CreateComment shows the comment under its client-generated id right away;
// the refetch afterwards replaces it with the stored row.
func (f *FeedImpl) CreateComment(ctx context.Context, in feed.CreateCommentInput) (domain.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := f.validateStruct(in); err != nil {
		return domain.Comment{}, err
	}

	comment := domain.Comment{
		ID:        backend.NewID(),
		PostID:    in.PostID,
		UserID:    in.UserID,
		Content:   in.Content,
		ParentID:  in.ParentID,
		Likes:     domain.LikeSet{},
		CreatedAt: f.now().UTC(),
	}

	optimistic := func(old any) any {
		comments, _ := old.([]domain.Comment)
		out := make([]domain.Comment, 0, len(comments)+1)
		out = append(out, comment)
		return append(out, comments...)
	}

	res, err := f.cache.Mutate(ctx, feed.CommentsKey(in.PostID), func(ctx context.Context) (any, error) {
		fields := backend.Fields{
			"post_id": comment.PostID,
			"user_id": comment.UserID,
			"content": comment.Content,
			"likes":   comment.Likes,
		}
		if comment.ParentID != "" {
			fields["parent_id"] = comment.ParentID
		}

		row, err := f.rows.CreateRow(ctx, f.comments, comment.ID, fields)
		if err != nil {
			return nil, err
		}
		return decodeComment(row)
	}, optimistic)
	if err != nil {
		f.log.Error("Create comment failed", "post_id", in.PostID, "error", err)
		return domain.Comment{}, err
	}

	return res.(domain.Comment), nil
}

func (f *FeedImpl) ToggleCommentLike(ctx context.Context, postID, commentID, userID string) (domain.Comment, error) {
	if postID == "" || commentID == "" || userID == "" {
		return domain.Comment{}, invalid("Comment and user are required")
	}

	base, cached := f.cachedComment(postID, commentID)

	optimistic := func(old any) any {
		comments, ok := old.([]domain.Comment)
		if !ok {
			return old
		}
		out := make([]domain.Comment, len(comments))
		for i, c := range comments {
			if c.ID == commentID {
				c = c.Clone()
				c.Likes = c.Likes.Toggle(userID)
			}
			out[i] = c
		}
		return out
	}

	res, err := f.cache.Mutate(ctx, feed.CommentsKey(postID), func(ctx context.Context) (any, error) {
		if !cached {
			row, err := f.rows.GetRow(ctx, f.comments, commentID)
			if err != nil {
				return nil, err
			}
			if base, err = decodeComment(row); err != nil {
				return nil, err
			}
		}

		row, err := f.rows.UpdateRow(ctx, f.comments, commentID, backend.Fields{
			"likes": base.Likes.Toggle(userID),
		})
		if err != nil {
			return nil, err
		}
		return decodeComment(row)
	}, optimistic)
	if err != nil {
		f.log.Error("Toggle comment like failed", "comment_id", commentID, "error", err)
		return domain.Comment{}, err
	}

	return res.(domain.Comment), nil
}

func (f *FeedImpl) DeleteComment(ctx context.Context, postID, commentID string) error {
	if postID == "" || commentID == "" {
		return invalid("Comment id is required")
	}

	optimistic := func(old any) any {
		comments, ok := old.([]domain.Comment)
		if !ok {
			return old
		}
		out := make([]domain.Comment, 0, len(comments))
		for _, c := range comments {
			if c.ID != commentID {
				out = append(out, c)
			}
		}
		return out
	}

	_, err := f.cache.Mutate(ctx, feed.CommentsKey(postID), func(ctx context.Context) (any, error) {
		return nil, f.rows.DeleteRow(ctx, f.comments, commentID)
	}, optimistic)
	if err != nil {
		f.log.Error("Delete comment failed", "comment_id", commentID, "error", err)
		return err
	}
	return nil
}

func (f *FeedImpl) cachedComment(postID, commentID string) (domain.Comment, bool) {
	data, ok := f.cache.GetData(feed.CommentsKey(postID))
	if !ok {
		return domain.Comment{}, false
	}
	comments, _ := data.([]domain.Comment)
	for _, c := range comments {
		if c.ID == commentID {
			return c.Clone(), true
		}
	}
	return domain.Comment{}, false
}
