// Package core defines the snapshot archive contract shared by every backend.
package core

import (
	"context"
	"io"
	"time"
)

// Driver identifies a concrete archive backend.
type Driver string

const (
	// DriverFilesystem stores snapshots under a local directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 stores snapshots in an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps snapshots in process memory (tests).
	DriverMemory Driver = "memory"
)

// ContentTypeXLSX is the MIME type of archived workbook snapshots.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Info describes an archived object.
type Info struct {
	Key          string            `json:"key" yaml:"key"`
	Size         int64             `json:"size_bytes" yaml:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty" yaml:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified" yaml:"last_modified"`
}

// Store is a write-once object store for backup snapshots. Put fails when
// the key already exists.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}
