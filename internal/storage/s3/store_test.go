package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/smartcampus/smartcampus/internal/storage"
)

func TestPutPrefixesKeyButReturnsCallerKey(t *testing.T) {
	fake := &fakeBucket{objects: map[string][]byte{}}
	store, err := newStore("archive", "/transcripts/prod/", fake)
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}

	info, err := store.Put(context.Background(), "/date=2026-10-18/session-a.parquet", bytes.NewBufferString("abc"), 3, storage.PutOptions{ContentType: "application/vnd.apache.parquet"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok := fake.objects["transcripts/prod/date=2026-10-18/session-a.parquet"]; !ok {
		t.Fatalf("objects = %#v", fake.objects)
	}
	if info.Key != "/date=2026-10-18/session-a.parquet" || info.ETag != "etag-1" {
		t.Fatalf("info = %#v", info)
	}
	if fake.lastContentType != "application/vnd.apache.parquet" {
		t.Fatalf("content type = %q", fake.lastContentType)
	}
}

func TestObjectKeyRejectsTraversal(t *testing.T) {
	store, err := newStore("archive", "", &fakeBucket{objects: map[string][]byte{}})
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}
	for _, key := range []string{"", "  ", "../secrets", "a/../../b"} {
		if _, err := store.objectKey(key); err == nil {
			t.Fatalf("objectKey(%q) expected error", key)
		}
	}
	if got, err := store.objectKey("a/./b"); err != nil || got != "a/b" {
		t.Fatalf("objectKey() = %q, %v", got, err)
	}
}

func TestGetRoundTripAndMissing(t *testing.T) {
	fake := &fakeBucket{objects: map[string][]byte{"p/k.parquet": []byte("payload")}}
	store, err := newStore("archive", "p", fake)
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}

	reader, err := store.Get(context.Background(), "k.parquet")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	body, _ := io.ReadAll(reader)
	_ = reader.Close()
	if string(body) != "payload" {
		t.Fatalf("body = %q", body)
	}

	if _, err := store.Get(context.Background(), "missing.parquet"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Get(missing) error = %v", err)
	}
	if _, err := store.Stat(context.Background(), "missing.parquet"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Stat(missing) error = %v", err)
	}
}

func TestEnsureBucketCreatesWhenMissing(t *testing.T) {
	fake := &fakeBucket{objects: map[string][]byte{}}
	store, err := newStore("archive", "", fake)
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}
	if err := store.Ping(context.Background()); err == nil {
		t.Fatal("Ping() expected error for missing bucket")
	}
	if err := store.ensureBucket(context.Background(), "us-east-1"); err != nil {
		t.Fatalf("ensureBucket() error = %v", err)
	}
	if fake.madeRegion != "us-east-1" {
		t.Fatalf("MakeBucket region = %q", fake.madeRegion)
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		raw    string
		useSSL bool
		host   string
		secure bool
		fail   bool
	}{
		{raw: "https://s3.campus.example", host: "s3.campus.example", secure: true},
		{raw: "http://localhost:9000", useSSL: true, host: "localhost:9000", secure: true},
		{raw: "localhost:9000", host: "localhost:9000"},
		{raw: "ftp://files", fail: true},
		{raw: "", fail: true},
	}
	for _, tc := range tests {
		host, secure, err := splitEndpoint(tc.raw, tc.useSSL)
		if tc.fail {
			if err == nil {
				t.Fatalf("splitEndpoint(%q) expected error", tc.raw)
			}
			continue
		}
		if err != nil || host != tc.host || secure != tc.secure {
			t.Fatalf("splitEndpoint(%q) = %q, %v, %v", tc.raw, host, secure, err)
		}
	}
}

type fakeBucket struct {
	objects         map[string][]byte
	exists          bool
	madeRegion      string
	lastContentType string
}

func (f *fakeBucket) PutObject(_ context.Context, _, key string, reader io.Reader, _ int64, contentType string) (storage.ObjectInfo, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	f.objects[key] = body
	f.lastContentType = contentType
	return storage.ObjectInfo{Key: key, Size: int64(len(body)), ETag: "etag-1"}, nil
}

func (f *fakeBucket) GetObject(_ context.Context, _, key string) (io.ReadCloser, error) {
	body, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(strings.NewReader(string(body))), nil
}

func (f *fakeBucket) StatObject(_ context.Context, _, key string) (storage.ObjectInfo, error) {
	body, ok := f.objects[key]
	if !ok {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return storage.ObjectInfo{Key: key, Size: int64(len(body))}, nil
}

func (f *fakeBucket) BucketExists(context.Context, string) (bool, error) {
	return f.exists, nil
}

func (f *fakeBucket) MakeBucket(_ context.Context, _, region string) error {
	f.exists = true
	f.madeRegion = region
	return nil
}
