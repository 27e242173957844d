package feed

import (
	"context"

	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/internal/querycache"
)

// View is a typed snapshot of a cached query.
type View[T any] struct {
	Data       T
	HasData    bool
	IsLoading  bool
	IsFetching bool
	Err        error
}

func ViewOf[T any](s querycache.Snapshot) View[T] {
	var data T
	if v, ok := s.Data.(T); ok {
		data = v
	}
	return View[T]{
		Data:       data,
		HasData:    s.HasData,
		IsLoading:  s.IsLoading,
		IsFetching: s.IsFetching,
		Err:        s.Err,
	}
}

func PostsKey() querycache.Key {
	return querycache.NewKey("posts")
}

func CommentsKey(postID string) querycache.Key {
	return querycache.NewKey("comments", postID)
}

func UserKey(userID string) querycache.Key {
	return querycache.NewKey("user", userID)
}

type CreatePostInput struct {
	UserID  string   `validate:"required"`
	Caption string   `validate:"required_without=Media,max=1500"`
	Media   []string `validate:"dive,required"`
}

type CreateCommentInput struct {
	PostID   string `validate:"required"`
	UserID   string `validate:"required"`
	Content  string `validate:"required,max=1000"`
	ParentID string
}

// PostEdit is one change applied by EditPost.
type PostEdit interface {
	postEdit()
}

type EditCaption struct {
	Caption string `validate:"max=1500"`
}

// EditMedia replaces the media list. Items may be uploaded ids or local
// references, which are uploaded before the row is written.
type EditMedia struct {
	Media []string `validate:"dive,required"`
}

// ToggleLike likes the post for UserID, or unlikes it when the cached post
// already holds the like.
type ToggleLike struct {
	UserID string `validate:"required"`
}

func (EditCaption) postEdit() {}
func (EditMedia) postEdit()   {}
func (ToggleLike) postEdit()  {}

type Client interface {
	Posts() View[[]domain.Post]
	Comments(postID string) View[[]domain.Comment]
	User(userID string) View[*domain.User]
	// Cards renders the cached feed for viewerID. Authors still loading have an empty name.
	Cards(viewerID string) View[[]Card]

	// PrefetchPosts loads the feed and waits for the result.
	PrefetchPosts(ctx context.Context) error

	CreatePost(ctx context.Context, in CreatePostInput) (domain.Post, error)
	EditPost(ctx context.Context, postID string, edits ...PostEdit) (domain.Post, error)
	DeletePost(ctx context.Context, postID string) error

	CreateComment(ctx context.Context, in CreateCommentInput) (domain.Comment, error)
	ToggleCommentLike(ctx context.Context, postID, commentID, userID string) (domain.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error

	ToggleFollow(ctx context.Context, currentUserID, targetUserID string) error
}
