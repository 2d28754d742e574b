package s3

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/ugoscholars/scholardb/internal/archive/core"
)

func TestMockStore_PutGetHeadList(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	if s.Driver() != core.DriverS3 {
		t.Fatalf("unexpected driver %s", s.Driver())
	}

	payload := []byte("PK\x03\x04workbook\r\nbytes")
	info, err := s.Put(ctx, "Scholars_backup_20250101_000000.xlsx", bytes.NewReader(payload), core.PutOptions{
		ContentType: core.ContentTypeXLSX,
		Metadata:    map[string]string{"run": "abc"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(payload)) || info.ContentType != core.ContentTypeXLSX {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Metadata["run"] != "abc" {
		t.Fatalf("metadata lost: %+v", info.Metadata)
	}
	if _, err := s.Put(ctx, "Scholars_backup_20250101_000000.xlsx", bytes.NewReader(nil), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate failure")
	}

	_, rc, err := s.Get(ctx, "Scholars_backup_20250101_000000.xlsx")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: %q", got)
	}

	list, err := s.List(ctx, "Scholars_")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "Scholars_backup_20250101_000000.xlsx" {
		t.Fatalf("unexpected list %+v", list)
	}
	if _, err := s.Head(ctx, "missing.xlsx"); err == nil {
		t.Fatalf("expected head error for missing key")
	}
}

func TestMockStore_Prefix(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	s.prefix = "backups"

	if _, err := s.Put(ctx, "a.xlsx", bytes.NewReader([]byte("a")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	list, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "a.xlsx" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}

func TestNewWithEndpoint(t *testing.T) {
	s, err := New(context.Background(), Config{
		Bucket:          "scholars",
		Endpoint:        "http://localhost:9000",
		PathStyle:       true,
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Bucket() != "scholars" {
		t.Fatalf("unexpected bucket %s", s.Bucket())
	}
}

func TestDecodeChunked(t *testing.T) {
	raw := []byte("5;chunk-signature=abc\r\nhello\r\n6\r\n world\r\n0\r\nx-amz-checksum-crc32:AAAA\r\n\r\n")
	got, err := decodeChunked(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("unexpected %q", got)
	}
}
