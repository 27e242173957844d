package feedimpl

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/internal/feed"
	"github.com/orgball2608/tint-feed/internal/media"
	"github.com/orgball2608/tint-feed/internal/querycache"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"go.uber.org/fx"
)

var _ feed.Client = (*FeedImpl)(nil)

type Opts struct {
	fx.In

	Cache  *querycache.Cache
	Rows   backend.Rows
	Media  media.Client
	Config *config.Config
	Logger logger.Logger
}

type FeedImpl struct {
	cache    *querycache.Cache
	rows     backend.Rows
	media    media.Client
	validate *validator.Validate
	log      logger.Logger
	now      func() time.Time

	users    string
	posts    string
	comments string
}

func New(opts Opts) *FeedImpl {
	return &FeedImpl{
		cache:    opts.Cache,
		rows:     opts.Rows,
		media:    opts.Media,
		validate: validator.New(),
		log:      opts.Logger.WithComponent("Feed"),
		now:      time.Now,
		users:    opts.Config.Collections.Users,
		posts:    opts.Config.Collections.Posts,
		comments: opts.Config.Collections.Comments,
	}
}

func (f *FeedImpl) Posts() feed.View[[]domain.Post] {
	return feed.ViewOf[[]domain.Post](f.cache.Query(feed.PostsKey(), f.fetchPosts))
}

func (f *FeedImpl) Comments(postID string) feed.View[[]domain.Comment] {
	return feed.ViewOf[[]domain.Comment](f.cache.Query(feed.CommentsKey(postID), f.fetchComments(postID)))
}

func (f *FeedImpl) User(userID string) feed.View[*domain.User] {
	return feed.ViewOf[*domain.User](f.cache.Query(feed.UserKey(userID), f.fetchUser(userID)))
}

func (f *FeedImpl) PrefetchPosts(ctx context.Context) error {
	_, err := f.cache.Fetch(ctx, feed.PostsKey(), f.fetchPosts)
	return err
}

func (f *FeedImpl) fetchPosts(ctx context.Context) (any, error) {
	rows, err := f.rows.ListRows(ctx, f.posts)
	if err != nil {
		return nil, err
	}
	return decodePosts(rows)
}

func (f *FeedImpl) fetchComments(postID string) querycache.FetchFunc {
	return func(ctx context.Context) (any, error) {
		rows, err := f.rows.ListRows(ctx, f.comments, backend.Eq("post_id", postID))
		if err != nil {
			return nil, err
		}
		return decodeComments(rows)
	}
}

func (f *FeedImpl) fetchUser(userID string) querycache.FetchFunc {
	return func(ctx context.Context) (any, error) {
		row, err := f.rows.GetRow(ctx, f.users, userID)
		if err != nil {
			return nil, err
		}
		user, err := decodeUser(row)
		if err != nil {
			return nil, err
		}
		return &user, nil
	}
}

func (f *FeedImpl) validateStruct(v any) error {
	if err := f.validate.Struct(v); err != nil {
		return errors.WrapWithCode(errors.ErrInvalidInput, "validation", validationMessage(err))
	}
	return nil
}

func invalid(message string) error {
	return errors.WrapWithCode(errors.ErrInvalidInput, "validation", message)
}
