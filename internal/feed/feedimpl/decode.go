package feedimpl

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/pkg/errors"
)

func decodePost(row backend.Row) (domain.Post, error) {
	var p domain.Post
	if err := row.Decode(&p); err != nil {
		return domain.Post{}, errors.WrapWithCode(errors.ErrBadRequest, "decode_post", err.Error())
	}
	p.Likes = p.Likes.Normalize()
	if p.Media == nil {
		p.Media = []string{}
	}
	return p, nil
}

func decodePosts(rows []backend.Row) ([]domain.Post, error) {
	out := make([]domain.Post, 0, len(rows))
	for _, row := range rows {
		p, err := decodePost(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func decodeComment(row backend.Row) (domain.Comment, error) {
	var c domain.Comment
	if err := row.Decode(&c); err != nil {
		return domain.Comment{}, errors.WrapWithCode(errors.ErrBadRequest, "decode_comment", err.Error())
	}
	c.Likes = c.Likes.Normalize()
	return c, nil
}

func decodeComments(rows []backend.Row) ([]domain.Comment, error) {
	out := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		c, err := decodeComment(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeUser(row backend.Row) (domain.User, error) {
	var u domain.User
	if err := row.Decode(&u); err != nil {
		return domain.User{}, errors.WrapWithCode(errors.ErrBadRequest, "decode_user", err.Error())
	}
	u.Following = u.Following.Normalize()
	u.Followers = u.Followers.Normalize()
	return u, nil
}

// validationMessage turns validator output into the inline text shown to the user.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_without":
			if fe.Field() == "Caption" {
				msgs = append(msgs, "Please add a caption or media")
				continue
			}
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s long", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
