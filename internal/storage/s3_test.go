package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 speaks the handful of S3 REST calls S3Storage makes.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte
	types   map[string]string
	denyPut bool
	calls   []string
	// multipart uploads in flight, keyed by upload id then part number
	uploads   map[string]map[int][]byte
	partSizes []int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		buckets: map[string]bool{},
		objects: map[string][]byte{},
		types:   map[string]string{},
		uploads: map[string]map[int][]byte{},
	}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	query := r.URL.Query()
	_, initiate := query["uploads"]
	uploadID := query.Get("uploadId")

	switch {
	case r.Method == http.MethodPost && initiate:
		uploadID = fmt.Sprintf("upload-%d", len(f.uploads)+1)
		f.uploads[uploadID] = map[int][]byte{}
		f.types[bucket+"/"+key] = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><InitiateMultipartUploadResult><Bucket>%s</Bucket><Key>%s</Key><UploadId>%s</UploadId></InitiateMultipartUploadResult>`, bucket, key, uploadID)
	case r.Method == http.MethodPut && uploadID != "":
		parts, ok := f.uploads[uploadID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		n, _ := strconv.Atoi(query.Get("partNumber"))
		body, _ := io.ReadAll(r.Body)
		parts[n] = body
		f.partSizes = append(f.partSizes, len(body))
		w.Header().Set("ETag", fmt.Sprintf(`"part-%d"`, n))
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPost && uploadID != "":
		parts, ok := f.uploads[uploadID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		numbers := make([]int, 0, len(parts))
		for n := range parts {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)
		var object []byte
		for _, n := range numbers {
			object = append(object, parts[n]...)
		}
		f.objects[bucket+"/"+key] = object
		delete(f.uploads, uploadID)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><CompleteMultipartUploadResult><Bucket>%s</Bucket><Key>%s</Key><ETag>"complete"</ETag></CompleteMultipartUploadResult>`, bucket, key)
	case r.Method == http.MethodDelete && uploadID != "":
		delete(f.uploads, uploadID)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodHead && key == "":
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && key == "":
		f.buckets[bucket] = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		if f.denyPut {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.objects[bucket+"/"+key] = body
		f.types[bucket+"/"+key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodHead:
		if _, ok := f.objects[bucket+"/"+key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && key == "":
		var sb strings.Builder
		sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
		sb.WriteString("<Name>" + bucket + "</Name><IsTruncated>false</IsTruncated>")
		for k := range f.objects {
			if strings.HasPrefix(k, bucket+"/") {
				sb.WriteString("<Contents><Key>" + strings.TrimPrefix(k, bucket+"/") + "</Key></Contents>")
			}
		}
		sb.WriteString("</ListBucketResult>")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, sb.String())
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestS3(t *testing.T) (*S3Storage, *fakeS3) {
	t.Helper()
	fake := newFakeS3()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewS3Storage(Config{
		Endpoint:  srv.URL,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)
	return store, fake
}

func TestS3Storage_EnsureBucketCreatesOnce(t *testing.T) {
	store, fake := newTestS3(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureBucket(ctx, "video-files"))
	require.NoError(t, store.EnsureBucket(ctx, "video-files"))

	assert.True(t, fake.buckets["video-files"])
	assert.Equal(t, []string{
		"HEAD /video-files",
		"PUT /video-files",
		"HEAD /video-files",
	}, fake.calls)
}

func TestS3Storage_PutObject(t *testing.T) {
	store, fake := newTestS3(t)
	ctx := context.Background()
	require.NoError(t, store.EnsureBucket(ctx, "video-covers"))

	data := []byte("cover image bytes")
	err := store.PutObject(ctx, "video-covers", "123.png", bytes.NewReader(data), int64(len(data)), PartSizeFor(int64(len(data))), "image/png")
	require.NoError(t, err)

	assert.Equal(t, data, fake.objects["video-covers/123.png"])
	assert.Equal(t, "image/png", fake.types["video-covers/123.png"])

	ok, err := store.Exists(ctx, "video-covers", "123.png")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "video-covers", "nope.png")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := store.ListKeys(ctx, "video-covers")
	require.NoError(t, err)
	assert.Equal(t, []string{"123.png"}, keys)
}

func TestS3Storage_PutObjectBackendFailure(t *testing.T) {
	store, fake := newTestS3(t)
	fake.denyPut = true

	data := []byte("x")
	err := store.PutObject(context.Background(), "video-files", "a.mp4", bytes.NewReader(data), 1, 5*MiB, "video/mp4")
	require.Error(t, err)

	var storeErr *Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "a.mp4", storeErr.Key)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestS3Storage_PutObjectUsesPartSize(t *testing.T) {
	const mb = 1 << 20
	data := bytes.Repeat([]byte{0xAB}, 21*mb)

	tests := []struct {
		name     string
		partSize int64
		parts    []int
	}{
		{"5 MiB parts", 5 * MiB, []int{1 * mb, 5 * mb, 5 * mb, 5 * mb, 5 * mb}},
		{"10 MiB parts", 10 * MiB, []int{1 * mb, 10 * mb, 10 * mb}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, fake := newTestS3(t)
			ctx := context.Background()
			require.NoError(t, store.EnsureBucket(ctx, "video-files"))

			err := store.PutObject(ctx, "video-files", "big.mp4", bytes.NewReader(data), int64(len(data)), tt.partSize, "video/mp4")
			require.NoError(t, err)

			// parts are sent concurrently
			got := append([]int(nil), fake.partSizes...)
			sort.Ints(got)
			assert.Equal(t, tt.parts, got)
			assert.Empty(t, fake.uploads)
			assert.True(t, bytes.Equal(data, fake.objects["video-files/big.mp4"]))
			assert.Equal(t, "video/mp4", fake.types["video-files/big.mp4"])
		})
	}
}
