package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"modcurves/internal/blob/core"
	"os"
	"path/filepath"
	"testing"
)

func TestFilesystemStoreLifecycle(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	info, err := s.Put(ctx, "bundles/x.yaml", bytes.NewBufferString("curves: []\n"), core.PutOptions{ContentType: "application/yaml"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 11 || info.ETag == "" || info.ContentType != "application/yaml" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "bundles/x.yaml", bytes.NewBufferString("again"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	head, err := s.Head(ctx, "bundles/x.yaml")
	if err != nil || head.ETag != info.ETag {
		t.Fatalf("head = %+v %v", head, err)
	}
	_, rc, err := s.Get(ctx, "bundles/x.yaml")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "curves: []\n" {
		t.Fatalf("body = %q", body)
	}
	if _, err := s.Put(ctx, "top.json", bytes.NewBufferString("{}"), core.PutOptions{}); err != nil {
		t.Fatalf("put top: %v", err)
	}
	list, err := s.List(ctx, "bundles/")
	if err != nil || len(list) != 1 || list[0].Key != "bundles/x.yaml" {
		t.Fatalf("list = %+v %v", list, err)
	}
	all, err := s.List(ctx, "")
	if err != nil || len(all) != 2 || all[0].Key != "bundles/x.yaml" || all[1].Key != "top.json" {
		t.Fatalf("list all = %+v %v", all, err)
	}
}

func TestFilesystemStoreNotFoundAndBadKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if _, _, err := s.Get(ctx, "missing.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get missing: %v", err)
	}
	if _, err := s.Head(ctx, "missing.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head missing: %v", err)
	}
	for _, key := range []string{"", "../escape", "/abs", "a/../b", "x.meta"} {
		if _, err := sanitizeKey(key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestFilesystemListCorruptMeta(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	data := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(data, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	if err := os.WriteFile(data+metaSuffix, []byte("{"), 0o644); err != nil {
		t.Fatalf("write meta: %v", err)
	}
	if _, err := s.List(context.Background(), ""); err == nil {
		t.Fatalf("expected list error on corrupt meta")
	}
}

func TestWriteJSONMarshalError(t *testing.T) {
	old := jsonMarshal
	jsonMarshal = func(any) ([]byte, error) { return nil, errors.New("marshal") }
	defer func() { jsonMarshal = old }()
	if err := writeJSON(filepath.Join(t.TempDir(), "x.meta"), struct{}{}); err == nil {
		t.Fatalf("expected marshal error")
	}
}
