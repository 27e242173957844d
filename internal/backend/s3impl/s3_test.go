package s3impl

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"missing key", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}, errors.ErrNotFound},
		{"denied", minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}, errors.ErrUnauthorized},
		{"slow down", minio.ErrorResponse{Code: "SlowDown", StatusCode: 503}, errors.ErrRateLimited},
		{"server", minio.ErrorResponse{Code: "InternalError", StatusCode: 500}, errors.ErrServiceUnavailable},
		{"timeout", context.DeadlineExceeded, errors.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err, "op"), tt.target)
		})
	}

	assert.NoError(t, mapError(nil, "op"))
	assert.EqualError(t, mapError(stderrors.New("boom"), "op"), "op: boom")
}
