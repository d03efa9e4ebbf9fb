package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*gcs.Client, error) {
	if credsPath == "" {
		return gcs.NewClient(ctx)
	}
	return gcs.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// AvatarStore uploads avatar images to a GCS bucket.
type AvatarStore struct {
	client *gcs.Client
	bucket string
	newID  func() string
}

func NewAvatarStore(client *gcs.Client, bucket string) *AvatarStore {
	return &AvatarStore{client: client, bucket: bucket, newID: uuid.NewString}
}

// Upload writes r under avatars/<userID>/ and returns the public URL of the object.
func (s *AvatarStore) Upload(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error) {
	objectPath := AvatarPath(userID, s.newID(), filename)

	wc := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // small files, single request
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return PublicURL(s.bucket, objectPath), nil
}

// AvatarPath builds the object key for an upload, keeping only the file extension
// from the client-supplied name.
func AvatarPath(userID, id, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	return path.Join("avatars", userID, id+ext)
}

// PublicURL assumes the bucket grants public read.
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
