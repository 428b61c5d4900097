package helpers

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// UploadObject uploads bytes from r into bucket/objectPath with the provided contentType
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) (string, error) {
	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return PublicURL(bucket, objectPath), nil
}

// PublicURL builds a public URL for an object (assuming public read access or signed URLs)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

// ProductImageStore uploads product images into a single bucket.
type ProductImageStore struct {
	Client *storage.Client
	Bucket string
}

func NewProductImageStore(client *storage.Client, bucket string) *ProductImageStore {
	return &ProductImageStore{Client: client, Bucket: bucket}
}

// Upload stores r under products/<productID>/<uuid><ext> and returns the public URL.
func (s *ProductImageStore) Upload(ctx context.Context, productID, filename, contentType string, r io.Reader) (string, error) {
	if s == nil || s.Client == nil || s.Bucket == "" {
		return "", fmt.Errorf("gcs not configured")
	}
	return UploadObject(ctx, s.Client, s.Bucket, ProductImagePath(productID, filename), contentType, r)
}

// ProductImagePath returns a collision free object path for an uploaded product image.
func ProductImagePath(productID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join("products", productID, uuid.NewString()+ext)
}
