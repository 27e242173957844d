package s3impl

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"go.uber.org/fx"
)

const urlTTL = 24 * time.Hour

var _ backend.Files = (*Storage)(nil)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// Storage keeps media in an S3-compatible bucket.
type Storage struct {
	client *minio.Client
	log    logger.Logger
}

func New(opts Opts) (*Storage, error) {
	cfg := opts.Config.Storage.S3

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create s3 client")
	}

	return &Storage{
		client: cl,
		log:    opts.Logger.WithComponent("S3"),
	}, nil
}

func (s *Storage) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return mapError(err, "check bucket "+bucket)
	}
	if exists {
		return nil
	}

	s.log.Info("Creating bucket", "bucket", bucket)
	return mapError(s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}), "create bucket "+bucket)
}

func (s *Storage) UploadFile(ctx context.Context, bucket string, data []byte, contentType string) (string, error) {
	id := backend.NewID()

	_, err := s.client.PutObject(ctx, bucket, id, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.log.Error("Upload failed", "bucket", bucket, "size", len(data), "error", err)
		return "", mapError(err, fmt.Sprintf("upload to %s", bucket))
	}

	return id, nil
}

func (s *Storage) DeleteFile(ctx context.Context, bucket, fileID string) error {
	err := s.client.RemoveObject(ctx, bucket, fileID, minio.RemoveObjectOptions{})
	return mapError(err, fmt.Sprintf("delete %s/%s", bucket, fileID))
}

func (s *Storage) GetFileURL(ctx context.Context, bucket, fileID string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, fileID, urlTTL, nil)
	if err != nil {
		return "", mapError(err, fmt.Sprintf("presign %s/%s", bucket, fileID))
	}
	return u.String(), nil
}

func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.IsNetwork(err) {
		return errors.WrapWithCode(errors.ErrNetwork, "network", op+": "+err.Error())
	}

	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket":
		return errors.WrapWithCode(errors.ErrNotFound, resp.Code, op)
	case resp.Code == "AccessDenied" || resp.StatusCode == 401 || resp.StatusCode == 403:
		return errors.WrapWithCode(errors.ErrUnauthorized, resp.Code, op)
	case resp.StatusCode == 429 || resp.Code == "SlowDown":
		return errors.WrapWithCode(errors.ErrRateLimited, resp.Code, op)
	case resp.StatusCode >= 500:
		return errors.WrapWithCode(errors.ErrServiceUnavailable, resp.Code, op)
	}
	return errors.Wrap(err, op)
}
