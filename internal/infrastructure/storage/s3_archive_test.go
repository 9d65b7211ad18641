package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	infraconfig "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeObjects struct {
	mu        sync.Mutex
	putErr    error
	headErr   error
	created   []string
	puts      map[string][]byte
	putCalled int
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalled++
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)
	if f.puts == nil {
		f.puts = make(map[string][]byte)
	}
	f.puts[*in.Bucket+"/"+*in.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeObjects) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = append(f.created, *in.Bucket)
	return &s3.CreateBucketOutput{}, nil
}

func testStorageConfig() *infraconfig.StorageConfig {
	return &infraconfig.StorageConfig{
		Bucket:             "growerpay-files",
		Region:             "ca-central-1",
		Prefix:             "/growerpay/",
		BreakerMaxFailures: 2,
		BreakerOpenTimeout: time.Minute,
		UploadTimeout:      time.Second,
	}
}

func TestS3Archive_Archive(t *testing.T) {
	objects := &fakeObjects{}
	archive := newS3Archive(objects, testStorageConfig(), WithLogger(zaptest.NewLogger(t)))

	ref, err := archive.Archive(context.Background(), "/bank-files/2026/10/01/eft-0001.txt", []byte("101 NACHA"))
	require.NoError(t, err)
	assert.Equal(t, "s3://growerpay-files/growerpay/bank-files/2026/10/01/eft-0001.txt", ref)
	assert.Equal(t, []byte("101 NACHA"), objects.puts["growerpay-files/growerpay/bank-files/2026/10/01/eft-0001.txt"])

	_, err = archive.Archive(context.Background(), "", []byte("x"))
	assert.Error(t, err)
}

func TestS3Archive_BreakerOpensAfterFailures(t *testing.T) {
	objects := &fakeObjects{putErr: errors.New("503 slow down")}
	archive := newS3Archive(objects, testStorageConfig())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := archive.Archive(ctx, "f.txt", []byte("x"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrArchiveUnavailable)
	}
	assert.Equal(t, "open", archive.State())

	_, err := archive.Archive(ctx, "f.txt", []byte("x"))
	assert.ErrorIs(t, err, ErrArchiveUnavailable)
	assert.Equal(t, 2, objects.putCalled, "an open breaker does not call storage")
}

func TestS3Archive_CancelledCallerDoesNotTrip(t *testing.T) {
	objects := &fakeObjects{putErr: context.Canceled}
	archive := newS3Archive(objects, testStorageConfig())

	for i := 0; i < 3; i++ {
		_, err := archive.Archive(context.Background(), "f.txt", []byte("x"))
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", archive.State())
}

func TestS3Archive_EnsureBucket(t *testing.T) {
	t.Run("existing bucket", func(t *testing.T) {
		objects := &fakeObjects{}
		require.NoError(t, newS3Archive(objects, testStorageConfig()).EnsureBucket(context.Background()))
		assert.Empty(t, objects.created)
	})

	t.Run("missing bucket is created", func(t *testing.T) {
		objects := &fakeObjects{headErr: &types.NotFound{}}
		require.NoError(t, newS3Archive(objects, testStorageConfig()).EnsureBucket(context.Background()))
		assert.Equal(t, []string{"growerpay-files"}, objects.created)
	})

	t.Run("other errors surface", func(t *testing.T) {
		objects := &fakeObjects{headErr: errors.New("access denied")}
		assert.Error(t, newS3Archive(objects, testStorageConfig()).EnsureBucket(context.Background()))
	})
}

func TestNewS3Archive_Validation(t *testing.T) {
	ctx := context.Background()
	_, err := NewS3Archive(ctx, nil)
	assert.Error(t, err)

	_, err = NewS3Archive(ctx, &infraconfig.StorageConfig{})
	assert.ErrorContains(t, err, "bucket is required")

	_, err = NewS3Archive(ctx, &infraconfig.StorageConfig{Bucket: "b", AccessKeyID: "only-key"})
	assert.ErrorContains(t, err, "set together")
}

func TestNewS3Archive_UploadsOverHTTP(t *testing.T) {
	var (
		gotPath string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			gotPath = r.URL.Path
			gotBody, _ = io.ReadAll(r.Body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testStorageConfig()
	cfg.Endpoint = srv.URL
	cfg.UsePathStyle = true
	cfg.AccessKeyID = "test"
	cfg.SecretAccessKey = "test"

	archive, err := NewS3Archive(context.Background(), cfg)
	require.NoError(t, err)

	ref, err := archive.Archive(context.Background(), "eft.txt", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "s3://growerpay-files/growerpay/eft.txt", ref)
	assert.Equal(t, "/growerpay-files/growerpay/eft.txt", gotPath)
	assert.Contains(t, string(gotBody), "payload")
}
