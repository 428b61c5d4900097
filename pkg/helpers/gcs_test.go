package helpers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductImagePath(t *testing.T) {
	p := ProductImagePath("p-1", "Front.JPG")
	assert.True(t, strings.HasPrefix(p, "products/p-1/"), p)
	assert.True(t, strings.HasSuffix(p, ".jpg"), p)
	assert.NotEqual(t, p, ProductImagePath("p-1", "Front.JPG"))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/bucket/products/a.png", PublicURL("bucket", "products/a.png"))
}

func TestProductImageStoreNotConfigured(t *testing.T) {
	var s *ProductImageStore
	_, err := s.Upload(context.Background(), "p-1", "a.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}
