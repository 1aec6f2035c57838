package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ErrUnsupportedImage is returned for uploads that are not png, jpeg, gif or webp.
var ErrUnsupportedImage = errors.New("unsupported image type")

// objectWriter opens a writer for a bucket object. Swapped in tests.
type objectWriter func(ctx context.Context, bucket, object, contentType string) io.WriteCloser

// Uploader stores listing images in a Google Cloud Storage bucket.
type Uploader struct {
	client *storage.Client
	bucket string
	newW   objectWriter
	log    *zap.Logger
}

// NewUploader connects to GCS and checks the bucket is reachable. An empty
// bucket name yields a disabled uploader.
func NewUploader(ctx context.Context, bucket, credentialsFile string, log *zap.Logger) (*Uploader, error) {
	if bucket == "" {
		log.Info("GCS_BUCKET not set, image uploads disabled")
		return &Uploader{log: log}, nil
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to Google Cloud Storage: %w", err)
	}

	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("access bucket %s: %w", bucket, err)
	}
	log.Info("Google Cloud Storage ready", zap.String("bucket", bucket))

	u := &Uploader{client: client, bucket: bucket, log: log}
	u.newW = func(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
		w := u.client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}
	return u, nil
}

func (u *Uploader) Enabled() bool {
	return u != nil && u.newW != nil
}

// Upload copies an image into folder/ and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, contentType, folder string) (string, error) {
	if !u.Enabled() {
		return "", fmt.Errorf("image uploads are disabled")
	}

	ext, ok := imageExtension(contentType)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnsupportedImage, contentType)
	}

	object := fmt.Sprintf("%s/%s_%d.%s", folder, uuid.NewString(), time.Now().UnixNano(), ext)
	w := u.newW(ctx, u.bucket, object, contentType)

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("copy image to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finish GCS upload: %w", err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, object)
	u.log.Info("image uploaded", zap.String("url", url))
	return url, nil
}

func (u *Uploader) Close() {
	if u != nil && u.client != nil {
		u.client.Close()
	}
}

func imageExtension(contentType string) (string, bool) {
	switch strings.ToLower(contentType) {
	case "image/png":
		return "png", true
	case "image/jpeg", "image/jpg":
		return "jpeg", true
	case "image/gif":
		return "gif", true
	case "image/webp":
		return "webp", true
	default:
		return "", false
	}
}
