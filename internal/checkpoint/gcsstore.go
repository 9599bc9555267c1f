package checkpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"k8s.io/klog/v2"
)

// GCSStore keeps checkpoints as objects in a Google Cloud Storage bucket.
//
// Objects are named Prefix + key + FileExtension. Credentials come from the
// environment (Application Default Credentials).
type GCSStore struct {
	Bucket string
	Prefix string
}

var _ Store = (*GCSStore)(nil)

// ObjectName returns the object that holds key.
func (s *GCSStore) ObjectName(key string) string {
	return path.Join(s.Prefix, key+FileExtension)
}

func (s *GCSStore) url(key string) string {
	return "gs://" + s.Bucket + "/" + s.ObjectName(key)
}

// Put uploads data, replacing any existing object.
func (s *GCSStore) Put(ctx context.Context, key string, data []byte) error {
	log := klog.FromContext(ctx)

	if err := validateKey(key); err != nil {
		return err
	}
	gcsURL := s.url(key)

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating GCS storage client: %w", err)
	}
	defer client.Close()

	log.Info("uploading checkpoint to GCS", "destination", gcsURL, "bytes", len(data))

	startedAt := time.Now()
	w := client.Bucket(s.Bucket).Object(s.ObjectName(key)).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("uploading to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing GCS writer: %w", err)
	}

	log.Info("uploaded checkpoint to GCS", "url", gcsURL, "duration", time.Since(startedAt))
	return nil
}

// Get downloads the object that holds key.
func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	log := klog.FromContext(ctx)

	if err := validateKey(key); err != nil {
		return nil, err
	}
	gcsURL := s.url(key)

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS storage client: %w", err)
	}
	defer client.Close()

	log.Info("downloading checkpoint from GCS", "source", gcsURL)

	startedAt := time.Now()
	r, err := client.Bucket(s.Bucket).Object(s.ObjectName(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("opening object from GCS %q: %w: %w", gcsURL, os.ErrNotExist, err)
		}
		return nil, fmt.Errorf("opening object from GCS %q: %w", gcsURL, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("downloading from GCS: %w", err)
	}

	log.Info("downloaded checkpoint from GCS", "source", gcsURL, "bytes", len(data), "duration", time.Since(startedAt))
	return data, nil
}
