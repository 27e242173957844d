package mediaimpl

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/media"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"go.uber.org/fx"
)

// Opener reads the bytes behind a local media reference.
type Opener func(uri string) ([]byte, error)

var _ media.Client = (*MediaImpl)(nil)

type Opts struct {
	fx.In

	Files  backend.Files
	Config *config.Config
	Logger logger.Logger
}

type MediaImpl struct {
	files  backend.Files
	bucket string
	open   Opener
	log    logger.Logger
}

func New(opts Opts) *MediaImpl {
	return &MediaImpl{
		files:  opts.Files,
		bucket: opts.Config.Storage.MediaBucket,
		open:   ReadLocalFile,
		log:    opts.Logger.WithComponent("Media"),
	}
}

// WithOpener swaps how local references are read.
func (m *MediaImpl) WithOpener(open Opener) *MediaImpl {
	m.open = open
	return m
}

// ReadLocalFile reads a plain path or a file:// URI from disk.
func ReadLocalFile(uri string) ([]byte, error) {
	path := uri
	if strings.HasPrefix(uri, "file://") {
		u, err := url.Parse(uri)
		if err != nil {
			return nil, errors.WrapWithCode(errors.ErrInvalidInput, "bad_uri", "invalid media uri "+uri)
		}
		path = u.Path
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(errors.ErrInvalidInput, "media_missing", "media file not found: "+path)
		}
		return nil, errors.Wrap(err, "read media "+path)
	}
	return data, nil
}

func (m *MediaImpl) Resolve(ctx context.Context, items []string) ([]string, error) {
	out := make([]string, len(items))
	uploaded := make([]string, 0)

	for i, item := range items {
		if media.IsUploadedID(item) {
			out[i] = item
			continue
		}

		id, err := m.Upload(ctx, item)
		if err != nil {
			if len(uploaded) > 0 {
				m.log.Warn("Media upload aborted, earlier uploads left orphaned", "orphaned", uploaded, "error", err)
			}
			return nil, err
		}
		uploaded = append(uploaded, id)
		out[i] = id
	}

	return out, nil
}

func (m *MediaImpl) Upload(ctx context.Context, uri string) (string, error) {
	data, err := m.open(uri)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.WrapWithCode(errors.ErrInvalidInput, "media_empty", "media file is empty: "+uri)
	}

	contentType := mimetype.Detect(data).String()

	id, err := m.files.UploadFile(ctx, m.bucket, data, contentType)
	if err != nil {
		return "", errors.Wrap(err, "upload media")
	}

	m.log.Debug("Media uploaded", "uri", uri, "file_id", id, "content_type", contentType)
	return id, nil
}

func (m *MediaImpl) Remove(ctx context.Context, ids []string) int {
	failed := 0
	for _, id := range ids {
		if err := m.files.DeleteFile(ctx, m.bucket, id); err != nil {
			failed++
			m.log.Warn("Failed to delete media file", "file_id", id, "error", err)
		}
	}
	return failed
}

func (m *MediaImpl) URL(ctx context.Context, id string) (string, error) {
	return m.files.GetFileURL(ctx, m.bucket, id)
}
