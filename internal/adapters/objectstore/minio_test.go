package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAPI struct {
	buckets map[string]bool
	objects map[string][]byte
	putErr  error
}

func newMemoryAPI() *memoryAPI {
	return &memoryAPI{buckets: map[string]bool{}, objects: map[string][]byte{}}
}

func (m *memoryAPI) BucketExists(_ context.Context, bucket string) (bool, error) {
	return m.buckets[bucket], nil
}

func (m *memoryAPI) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	m.buckets[bucket] = true
	return nil
}

func (m *memoryAPI) PutObject(_ context.Context, bucket, object string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.putErr != nil {
		return minio.UploadInfo{}, m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.objects[bucket+"/"+object] = data
	return minio.UploadInfo{Bucket: bucket, Key: object}, nil
}

func (m *memoryAPI) RemoveObject(_ context.Context, bucket, object string, _ minio.RemoveObjectOptions) error {
	delete(m.objects, bucket+"/"+object)
	return nil
}

func TestStoreCreatesMissingBucket(t *testing.T) {
	api := newMemoryAPI()
	_, err := newWithAPI(context.Background(), api, "materials", "http://minio:9000")
	require.NoError(t, err)
	assert.True(t, api.buckets["materials"])
}

func TestStoreUploadReturnsPublicURL(t *testing.T) {
	api := newMemoryAPI()
	store, err := newWithAPI(context.Background(), api, "materials", "https://files.pulsecamp.test/")
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), "courses/7/syllabus.pdf", "application/pdf",
		bytes.NewReader([]byte("%PDF-1.4")), 8)
	require.NoError(t, err)
	assert.Equal(t, "https://files.pulsecamp.test/materials/courses/7/syllabus.pdf", url)
	assert.Equal(t, []byte("%PDF-1.4"), api.objects["materials/courses/7/syllabus.pdf"])
}

func TestStoreUploadError(t *testing.T) {
	api := newMemoryAPI()
	api.putErr = errors.New("disk full")
	store, err := newWithAPI(context.Background(), api, "materials", "http://minio:9000")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "a.txt", "text/plain", bytes.NewReader(nil), 0)
	assert.ErrorContains(t, err, "disk full")
}

func TestStoreRemove(t *testing.T) {
	api := newMemoryAPI()
	store, err := newWithAPI(context.Background(), api, "materials", "http://minio:9000")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "a.txt", "text/plain", bytes.NewReader([]byte("x")), 1)
	require.NoError(t, err)
	require.NoError(t, store.Remove(context.Background(), "a.txt"))
	assert.Empty(t, api.objects)
}

func TestPublicURLEscapesSpaces(t *testing.T) {
	api := newMemoryAPI()
	store, err := newWithAPI(context.Background(), api, "materials", "http://minio:9000")
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/materials/notes/week%201.md", store.PublicURL("notes/week 1.md"))
}
