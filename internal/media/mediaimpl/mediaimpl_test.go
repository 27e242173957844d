package mediaimpl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	mock_backend "github.com/orgball2608/tint-feed/internal/backend/mocks"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	existingA = "abc123def456ghi789jklmno"
	existingB = "def456ghi789jkl012mnopqr"
	uploaded  = "new000upload111id222xyz"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newMedia(t *testing.T) (*MediaImpl, *mock_backend.MockFiles) {
	t.Helper()
	ctrl := gomock.NewController(t)
	files := mock_backend.NewMockFiles(ctrl)

	cfg := &config.Config{}
	cfg.Storage.MediaBucket = "media"

	m := New(Opts{Files: files, Config: cfg, Logger: logger.NewNop()})
	m.WithOpener(func(uri string) ([]byte, error) {
		return pngHeader, nil
	})
	return m, files
}

func TestResolve_UploadsOnlyLocalItems(t *testing.T) {
	m, files := newMedia(t)

	files.EXPECT().
		UploadFile(gomock.Any(), "media", pngHeader, "image/png").
		Return(uploaded, nil).
		Times(1)

	out, err := m.Resolve(context.Background(), []string{existingA, "file:///tmp/img.jpg", existingB})
	require.NoError(t, err)
	assert.Equal(t, []string{existingA, uploaded, existingB}, out)
}

func TestResolve_NothingToUpload(t *testing.T) {
	m, _ := newMedia(t)

	out, err := m.Resolve(context.Background(), []string{existingA, existingB})
	require.NoError(t, err)
	assert.Equal(t, []string{existingA, existingB}, out)
}

func TestResolve_FailedUploadAborts(t *testing.T) {
	m, files := newMedia(t)

	gomock.InOrder(
		files.EXPECT().UploadFile(gomock.Any(), "media", gomock.Any(), gomock.Any()).Return(uploaded, nil),
		files.EXPECT().UploadFile(gomock.Any(), "media", gomock.Any(), gomock.Any()).Return("", errors.ErrNetwork),
	)

	out, err := m.Resolve(context.Background(), []string{"file:///a.png", "file:///b.png", "file:///c.png"})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, errors.ErrNetwork)
}

func TestRemove_BestEffort(t *testing.T) {
	m, files := newMedia(t)

	files.EXPECT().DeleteFile(gomock.Any(), "media", existingA).Return(errors.ErrServiceUnavailable)
	files.EXPECT().DeleteFile(gomock.Any(), "media", existingB).Return(nil)

	assert.Equal(t, 1, m.Remove(context.Background(), []string{existingA, existingB}))
}

func TestURL(t *testing.T) {
	m, files := newMedia(t)
	files.EXPECT().GetFileURL(gomock.Any(), "media", existingA).Return("https://cdn/media/"+existingA, nil)

	url, err := m.URL(context.Background(), existingA)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/media/"+existingA, url)
}

func TestReadLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	data, err := ReadLocalFile("file://" + path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	data, err = ReadLocalFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	_, err = ReadLocalFile(filepath.Join(dir, "missing.png"))
	assert.True(t, errors.IsInvalidInput(err))
}

func TestUpload_EmptyFileRejected(t *testing.T) {
	m, _ := newMedia(t)
	m.WithOpener(func(string) ([]byte, error) { return nil, nil })

	_, err := m.Upload(context.Background(), "file:///empty.png")
	assert.True(t, errors.IsInvalidInput(err))
}
