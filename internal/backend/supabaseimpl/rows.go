package supabaseimpl

import (
	"context"
	"fmt"

	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

const returnRepresentation = "representation"

var newestFirst = &postgrest.OrderOpts{Ascending: false}

func (c *Client) ListRows(ctx context.Context, collection string, filters ...backend.Filter) ([]backend.Row, error) {
	var rows []backend.Row

	err := c.withClient(ctx, func(sb *supabase.Client) error {
		q := sb.From(collection).Select("*", "", false)
		for _, f := range filters {
			q = q.Filter(f.Column, string(f.Op), f.Value)
		}
		_, err := q.Order("created_at", newestFirst).ExecuteTo(&rows)
		return err
	})
	if err != nil {
		c.log.Error("List rows failed", "collection", collection, "error", err)
		return nil, mapError(err, fmt.Sprintf("list %s", collection))
	}

	return rows, nil
}

func (c *Client) GetRow(ctx context.Context, collection, id string) (backend.Row, error) {
	var rows []backend.Row

	err := c.withClient(ctx, func(sb *supabase.Client) error {
		_, err := sb.From(collection).Select("*", "", false).Eq("id", id).ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("get %s/%s", collection, id))
	}

	return first(rows, collection, id)
}

func (c *Client) CreateRow(ctx context.Context, collection, id string, fields backend.Fields) (backend.Row, error) {
	if id == "" {
		id = backend.NewID()
	}

	payload := make(backend.Fields, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["id"] = id

	var rows []backend.Row
	err := c.withClient(ctx, func(sb *supabase.Client) error {
		_, err := sb.From(collection).Insert(payload, false, "", returnRepresentation, "").ExecuteTo(&rows)
		return err
	})
	if err != nil {
		c.log.Error("Create row failed", "collection", collection, "id", id, "error", err)
		return nil, mapError(err, fmt.Sprintf("create %s/%s", collection, id))
	}

	return first(rows, collection, id)
}

func (c *Client) UpdateRow(ctx context.Context, collection, id string, fields backend.Fields) (backend.Row, error) {
	var rows []backend.Row

	err := c.withClient(ctx, func(sb *supabase.Client) error {
		_, err := sb.From(collection).Update(fields, returnRepresentation, "").Eq("id", id).ExecuteTo(&rows)
		return err
	})
	if err != nil {
		c.log.Error("Update row failed", "collection", collection, "id", id, "error", err)
		return nil, mapError(err, fmt.Sprintf("update %s/%s", collection, id))
	}

	return first(rows, collection, id)
}

func (c *Client) DeleteRow(ctx context.Context, collection, id string) error {
	var rows []backend.Row

	err := c.withClient(ctx, func(sb *supabase.Client) error {
		_, err := sb.From(collection).Delete(returnRepresentation, "").Eq("id", id).ExecuteTo(&rows)
		return err
	})
	if err != nil {
		c.log.Error("Delete row failed", "collection", collection, "id", id, "error", err)
		return mapError(err, fmt.Sprintf("delete %s/%s", collection, id))
	}

	_, err = first(rows, collection, id)
	return err
}

// first returns the single row of a filtered-by-id result. PostgREST answers an
// update or delete of a missing id with an empty array rather than an error.
func first(rows []backend.Row, collection, id string) (backend.Row, error) {
	if len(rows) == 0 {
		return nil, errors.WrapWithCode(errors.ErrNotFound, "row_not_found", fmt.Sprintf("%s/%s", collection, id))
	}
	return rows[0], nil
}
