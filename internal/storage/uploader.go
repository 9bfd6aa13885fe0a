package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/petloc/petloc/pkg/metrics"
)

// Blob is the object-store surface the uploader needs. *MinIOStorage
// satisfies it; tests swap in a fake.
type Blob interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// File is a single blob to upload.
type File struct {
	Name        string
	Content     io.Reader
	Size        int64
	ContentType string
}

// Uploader tracks the state of an in-flight upload batch. Progress is
// coarse: it only advances when a whole file finishes, never mid-transfer.
type Uploader struct {
	blob Blob

	mu        sync.Mutex
	uploading bool
	progress  float64
	err       error

	// now is swapped in tests for deterministic object keys.
	now func() time.Time
}

// NewUploader returns an Uploader writing through the given blob store.
func NewUploader(blob Blob) *Uploader {
	return &Uploader{blob: blob, now: time.Now}
}

// Uploading reports whether an upload is currently in flight.
func (u *Uploader) Uploading() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.uploading
}

// Progress returns the completion percentage of the current (or last) batch.
func (u *Uploader) Progress() float64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.progress
}

// Err returns the error of the last batch, if any.
func (u *Uploader) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

// UploadFile uploads a single file to the exact path given and returns its
// download URL. Progress jumps straight to 100 on completion.
func (u *Uploader) UploadFile(ctx context.Context, f File, path string) (string, error) {
	u.begin()
	url, err := u.blob.Upload(ctx, path, f.Content, f.Size, f.ContentType)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		u.finish(err)
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	metrics.UploadsTotal.WithLabelValues("success").Inc()
	u.setProgress(100)
	u.finish(nil)
	return url, nil
}

// DeleteFile removes the blob at path.
func (u *Uploader) DeleteFile(ctx context.Context, path string) error {
	if err := u.blob.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// UploadMultipleFiles uploads the files one at a time, in order, under
// basePath. Each object key is prefixed with a millisecond timestamp so
// repeated uploads of the same filename do not collide. The returned URLs
// are in the same order as the input; the first failure aborts the batch.
func (u *Uploader) UploadMultipleFiles(ctx context.Context, files []File, basePath string) ([]string, error) {
	u.begin()
	urls := make([]string, 0, len(files))
	for i, f := range files {
		key := fmt.Sprintf("%s/%d_%s", basePath, u.now().UnixMilli(), f.Name)
		url, err := u.blob.Upload(ctx, key, f.Content, f.Size, f.ContentType)
		if err != nil {
			metrics.UploadsTotal.WithLabelValues("error").Inc()
			u.finish(err)
			return nil, fmt.Errorf("upload %s: %w", key, err)
		}
		metrics.UploadsTotal.WithLabelValues("success").Inc()
		urls = append(urls, url)
		u.setProgress(float64(i+1) / float64(len(files)) * 100)
	}
	u.finish(nil)
	return urls, nil
}

func (u *Uploader) begin() {
	u.mu.Lock()
	u.uploading = true
	u.progress = 0
	u.err = nil
	u.mu.Unlock()
}

func (u *Uploader) setProgress(p float64) {
	u.mu.Lock()
	u.progress = p
	u.mu.Unlock()
}

func (u *Uploader) finish(err error) {
	u.mu.Lock()
	u.uploading = false
	u.err = err
	u.mu.Unlock()
}
