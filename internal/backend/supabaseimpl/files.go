package supabaseimpl

import (
	"bytes"
	"context"
	"fmt"

	"github.com/orgball2608/tint-feed/internal/backend"
	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

const cacheControl = "3600"

func (c *Client) UploadFile(ctx context.Context, bucket string, data []byte, contentType string) (string, error) {
	id := backend.NewID()
	upsert := false
	cache := cacheControl

	opts := storage_go.FileOptions{
		CacheControl: &cache,
		Upsert:       &upsert,
	}
	if contentType != "" {
		opts.ContentType = &contentType
	}

	err := c.withClient(ctx, func(sb *supabase.Client) error {
		_, err := sb.Storage.UploadFile(bucket, id, bytes.NewReader(data), opts)
		return err
	})
	if err != nil {
		c.log.Error("Upload failed", "bucket", bucket, "size", len(data), "error", err)
		return "", mapError(err, fmt.Sprintf("upload to %s", bucket))
	}

	c.log.Debug("File uploaded", "bucket", bucket, "file_id", id, "content_type", contentType)
	return id, nil
}

func (c *Client) DeleteFile(ctx context.Context, bucket, fileID string) error {
	err := c.withClient(ctx, func(sb *supabase.Client) error {
		_, err := sb.Storage.RemoveFile(bucket, []string{fileID})
		return err
	})
	if err != nil {
		return mapError(err, fmt.Sprintf("delete %s/%s", bucket, fileID))
	}
	return nil
}

func (c *Client) GetFileURL(ctx context.Context, bucket, fileID string) (string, error) {
	var url string
	err := c.withClient(ctx, func(sb *supabase.Client) error {
		url = sb.Storage.GetPublicUrl(bucket, fileID).SignedURL
		return nil
	})
	return url, err
}
