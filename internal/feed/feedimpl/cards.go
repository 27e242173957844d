package feedimpl

import (
	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/internal/feed"
)

func (f *FeedImpl) Cards(viewerID string) feed.View[[]feed.Card] {
	posts := f.Posts()
	now := f.now()

	authors := make(map[string]*domain.User)
	cards := make([]feed.Card, 0, len(posts.Data))
	for _, p := range posts.Data {
		author, ok := authors[p.UserID]
		if !ok {
			author = f.User(p.UserID).Data
			authors[p.UserID] = author
		}
		cards = append(cards, feed.NewCard(p, author, viewerID, now))
	}

	return feed.View[[]feed.Card]{
		Data:       cards,
		HasData:    posts.HasData,
		IsLoading:  posts.IsLoading,
		IsFetching: posts.IsFetching,
		Err:        posts.Err,
	}
}
