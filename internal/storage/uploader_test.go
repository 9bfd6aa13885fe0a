package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlob struct {
	keys     []string
	failOn   string
	progress []float64
	owner    *Uploader
}

func (f *fakeBlob) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if f.failOn != "" && strings.Contains(key, f.failOn) {
		return "", errors.New("backend unavailable")
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	if f.owner != nil {
		f.progress = append(f.progress, f.owner.Progress())
	}
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

func (f *fakeBlob) Delete(_ context.Context, key string) error {
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			return nil
		}
	}
	return errors.New("no such object")
}

func file(name, content string) File {
	return File{Name: name, Content: strings.NewReader(content), Size: int64(len(content)), ContentType: "image/jpeg"}
}

func TestUploadFile(t *testing.T) {
	blob := &fakeBlob{}
	up := NewUploader(blob)

	url, err := up.UploadFile(context.Background(), file("dog.jpg", "jpegdata"), "pets/abc/dog.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/pets/abc/dog.jpg", url)
	assert.Equal(t, []string{"pets/abc/dog.jpg"}, blob.keys)
	assert.False(t, up.Uploading())
	assert.Equal(t, float64(100), up.Progress())
	assert.NoError(t, up.Err())
}

func TestUploadMultipleFilesSequentialOrder(t *testing.T) {
	blob := &fakeBlob{}
	up := NewUploader(blob)
	up.now = func() time.Time { return time.UnixMilli(1700000000000) }

	urls, err := up.UploadMultipleFiles(context.Background(),
		[]File{file("a.jpg", "aa"), file("b.jpg", "bb")}, "produtos/p1")
	require.NoError(t, err)

	want := []string{
		fmt.Sprintf("https://cdn.test/produtos/p1/%d_a.jpg", int64(1700000000000)),
		fmt.Sprintf("https://cdn.test/produtos/p1/%d_b.jpg", int64(1700000000000)),
	}
	assert.Equal(t, want, urls)
	assert.Equal(t, float64(100), up.Progress())
	assert.False(t, up.Uploading())
}

func TestUploadMultipleFilesProgressPerFile(t *testing.T) {
	blob := &fakeBlob{}
	up := NewUploader(blob)
	blob.owner = up

	_, err := up.UploadMultipleFiles(context.Background(),
		[]File{file("a.jpg", "a"), file("b.jpg", "b"), file("c.jpg", "c"), file("d.jpg", "d")}, "posts/x")
	require.NoError(t, err)

	// progress observed at the START of each upload: only completed files count
	assert.Equal(t, []float64{0, 25, 50, 75}, blob.progress)
	assert.Equal(t, float64(100), up.Progress())
}

func TestUploadMultipleFilesAbortsOnFailure(t *testing.T) {
	blob := &fakeBlob{failOn: "b.jpg"}
	up := NewUploader(blob)

	urls, err := up.UploadMultipleFiles(context.Background(),
		[]File{file("a.jpg", "a"), file("b.jpg", "b"), file("c.jpg", "c")}, "posts/x")
	require.Error(t, err)
	assert.Nil(t, urls)
	assert.Len(t, blob.keys, 1) // only the first file made it
	assert.False(t, up.Uploading())
	assert.Error(t, up.Err())
}

func TestDeleteFile(t *testing.T) {
	blob := &fakeBlob{}
	up := NewUploader(blob)

	_, err := up.UploadFile(context.Background(), file("x.jpg", "x"), "pets/x.jpg")
	require.NoError(t, err)
	require.NoError(t, up.DeleteFile(context.Background(), "pets/x.jpg"))
	assert.Empty(t, blob.keys)

	assert.Error(t, up.DeleteFile(context.Background(), "pets/x.jpg"))
}
