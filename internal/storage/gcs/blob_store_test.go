// Package gcs_test contains unit tests for the GCS blob store.
package gcs_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	gstorage "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/JakeFAU/jarchive-crawler/internal/storage/gcs"
)

// newTestBlobStore creates a BlobStore pointed at a test server.
func newTestBlobStore(t *testing.T, handler http.Handler) (*gcs.BlobStore, func()) {
	t.Helper()

	server := httptest.NewServer(handler)

	// Create a client that connects to the test server with auth disabled.
	client, err := gstorage.NewClient(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)

	store, err := gcs.New(client, gcs.Config{Bucket: "test-bucket"})
	require.NoError(t, err)

	return store, server.Close
}

func TestNewValidation(t *testing.T) {
	t.Run("NilClient", func(t *testing.T) {
		_, err := gcs.New(nil, gcs.Config{Bucket: "b"})
		assert.Error(t, err)
	})
	t.Run("MissingBucket", func(t *testing.T) {
		client := &gstorage.Client{}
		_, err := gcs.New(client, gcs.Config{})
		assert.Error(t, err)
	})
}

func TestBlobStorePut(t *testing.T) {
	key := "data/seasons.json"
	payload := []byte(`[{"season":"31"}]`)
	bucketName := "test-bucket"

	// This handler simulates the GCS JSON API for multipart uploads.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, fmt.Sprintf("/upload/storage/v1/b/%s/o", bucketName))
		assert.Equal(t, key, r.URL.Query().Get("name"))
		assert.Equal(t, "multipart", r.URL.Query().Get("uploadType"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), string(payload))
		// The multipart metadata part carries the content type.
		assert.Contains(t, string(body), "application/json")

		fmt.Fprintln(w, `{ "name": "`+key+`" }`)
	})

	store, cleanup := newTestBlobStore(t, handler)
	defer cleanup()

	err := store.Put(context.Background(), key, payload)
	assert.NoError(t, err)
}

func TestBlobStorePutError(t *testing.T) {
	// This handler simulates a server error.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	store, cleanup := newTestBlobStore(t, handler)
	defer cleanup()

	err := store.Put(context.Background(), "index.html", []byte("<html></html>"))
	assert.Error(t, err)
}

func TestBlobStorePutEmptyKey(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	store, cleanup := newTestBlobStore(t, handler)
	defer cleanup()

	err := store.Put(context.Background(), "  ", []byte("data"))
	assert.Error(t, err)
}
