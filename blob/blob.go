package blob

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/awantoch/cvdfunctions/constants"
	"github.com/awantoch/cvdfunctions/utils"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by a ModelSource when the named file does not exist.
var ErrNotFound = errors.New("model file not found")

// Object describes one stored model file.
type Object struct {
	Name    string
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
}

// ModelSource is the interface for the places model weights are staged from.
type ModelSource interface {
	// Stat reports the object's metadata, or ErrNotFound.
	Stat(ctx context.Context, name string) (Object, error)
	// Open returns a reader for the object's bytes along with its metadata.
	Open(ctx context.Context, name string) (io.ReadCloser, Object, error)
	// Location is the human-readable address of name, for notices.
	Location(name string) string
}

// See filesystem.go and s3.go for driver implementations.

// SourceConfig is a minimal struct for model source configuration.
type SourceConfig struct {
	Driver    string
	Directory string
	Bucket    string
	Prefix    string
	Region    string
}

// ParseSource turns a staging source setting into a SourceConfig. Values of
// the form s3://bucket/prefix select the S3 driver; anything else is a directory.
func ParseSource(source, region string) SourceConfig {
	const scheme = "s3://"
	if !strings.HasPrefix(source, scheme) {
		return SourceConfig{Driver: constants.SourceDriverFilesystem, Directory: source}
	}
	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(source, scheme), "/")
	return SourceConfig{
		Driver: constants.SourceDriverS3,
		Bucket: bucket,
		Prefix: strings.Trim(prefix, "/"),
		Region: region,
	}
}

// NewModelSource returns a ModelSource based on config, or a filesystem source
// over the default backend directory if config is nil or empty.
func NewModelSource(ctx context.Context, cfg *SourceConfig) (ModelSource, error) {
	if cfg == nil || cfg.Driver == "" || cfg.Driver == constants.SourceDriverFilesystem {
		dir := constants.DefaultModelSourceDir
		if cfg != nil && cfg.Directory != "" {
			dir = cfg.Directory
		}
		return NewFilesystemSource(dir), nil
	}
	if cfg.Driver == constants.SourceDriverS3 {
		if cfg.Bucket == "" {
			return nil, utils.Errorf("s3 source requires a bucket")
		}
		return NewS3Source(ctx, cfg.Bucket, cfg.Prefix, cfg.Region)
	}
	return nil, utils.Errorf("unsupported model source driver: %s", cfg.Driver)
}
