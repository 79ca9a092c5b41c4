package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/friendsincode/vidar_tv/internal/config"
)

func TestFilesystemRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := NewFilesystemStore(t.TempDir(), zerolog.Nop())

	if err := fs.Put(ctx, "catalogs/weekend.json", []byte(`{"name":"weekend"}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	data, err := fs.Get(ctx, "catalogs/weekend.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != `{"name":"weekend"}` {
		t.Fatalf("Get() = %q", data)
	}
}

func TestFilesystemGetMissing(t *testing.T) {
	fs := NewFilesystemStore(t.TempDir(), zerolog.Nop())

	_, err := fs.Get(context.Background(), "catalogs/absent.json")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestFilesystemList(t *testing.T) {
	ctx := context.Background()
	fs := NewFilesystemStore(t.TempDir(), zerolog.Nop())

	for _, key := range []string{"catalogs/b.json", "catalogs/a.json", "shows/shows.json"} {
		if err := fs.Put(ctx, key, []byte("{}")); err != nil {
			t.Fatalf("Put(%s) error = %v", key, err)
		}
	}

	keys, err := fs.List(ctx, "catalogs/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"catalogs/a.json", "catalogs/b.json"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("List() = %v, want %v", keys, want)
	}
}

func TestFilesystemListEmptyRoot(t *testing.T) {
	fs := NewFilesystemStore(t.TempDir()+"/never-written", zerolog.Nop())

	keys, err := fs.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("List() = %v, want empty", keys)
	}
}

func TestFilesystemDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	fs := NewFilesystemStore(t.TempDir(), zerolog.Nop())

	if err := fs.Put(ctx, "catalogs/x.json", []byte("{}")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := fs.Delete(ctx, "catalogs/x.json"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := fs.Delete(ctx, "catalogs/x.json"); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if _, err := fs.Get(ctx, "catalogs/x.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	fs := NewFilesystemStore(t.TempDir(), zerolog.Nop())

	if err := fs.Put(context.Background(), "../escape.json", []byte("{}")); err == nil {
		t.Fatal("Put() with traversal key should fail")
	}
	if err := fs.Put(context.Background(), "", []byte("{}")); err == nil {
		t.Fatal("Put() with empty key should fail")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("filesystem by default", func(t *testing.T) {
		cfg := &config.Config{
			Backend: config.StorageFilesystem,
			DataDir: t.TempDir(),
		}
		s, err := New(context.Background(), cfg, logger)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if _, ok := s.(*FilesystemStore); !ok {
			t.Errorf("New() store type = %T, want *FilesystemStore", s)
		}
	})

	t.Run("s3 when configured", func(t *testing.T) {
		cfg := &config.Config{
			Backend:           config.StorageS3,
			S3AccessKeyID:     "key",
			S3SecretAccessKey: "secret",
			S3Region:          "us-east-1",
			S3Bucket:          "catalogs",
		}
		s, err := New(context.Background(), cfg, logger)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if _, ok := s.(*S3Store); !ok {
			t.Errorf("New() store type = %T, want *S3Store", s)
		}
	})
}
