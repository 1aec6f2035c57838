package gcs

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func TestUploadWritesObject(t *testing.T) {
	buf := &bufferCloser{}
	var gotBucket, gotObject, gotType string

	u := &Uploader{bucket: "wanderlust-images", log: zap.NewNop()}
	u.newW = func(_ context.Context, bucket, object, contentType string) io.WriteCloser {
		gotBucket, gotObject, gotType = bucket, object, contentType
		return buf
	}

	url, err := u.Upload(context.Background(), strings.NewReader("png-bytes"), "image/png", "listings")
	require.NoError(t, err)

	assert.Equal(t, "wanderlust-images", gotBucket)
	assert.True(t, strings.HasPrefix(gotObject, "listings/"))
	assert.True(t, strings.HasSuffix(gotObject, ".png"))
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "png-bytes", buf.String())
	assert.True(t, buf.closed)
	assert.Equal(t, "https://storage.googleapis.com/wanderlust-images/"+gotObject, url)
}

func TestUploadRejectsNonImages(t *testing.T) {
	u := &Uploader{bucket: "b", log: zap.NewNop()}
	u.newW = func(context.Context, string, string, string) io.WriteCloser { return &bufferCloser{} }

	_, err := u.Upload(context.Background(), strings.NewReader("x"), "application/pdf", "listings")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestDisabledUploader(t *testing.T) {
	u, err := NewUploader(context.Background(), "", "", zap.NewNop())
	require.NoError(t, err)

	assert.False(t, u.Enabled())
	_, err = u.Upload(context.Background(), strings.NewReader("x"), "image/png", "listings")
	assert.Error(t, err)
	u.Close()
}
