package blob

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/awantoch/cvdfunctions/utils"
	"github.com/pkg/errors"
)

// s3API is the subset of the S3 client used for staging.
type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads model files from an S3 bucket, for models uploaded
// separately from the repository.
type S3Source struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Source creates an S3Source using the default AWS credential chain.
// An empty region defers to the environment.
func NewS3Source(ctx context.Context, bucket, prefix, region string) (*S3Source, error) {
	if bucket == "" {
		return nil, utils.Errorf("bucket must be non-empty")
	}
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return newS3SourceWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func newS3SourceWithClient(client s3API, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Source) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *S3Source) Location(name string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key(name))
}

func (s *S3Source) Stat(ctx context.Context, name string) (Object, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return Object{}, s.wrap(err, name)
	}
	return Object{
		Name:    name,
		Size:    aws.ToInt64(out.ContentLength),
		Mode:    0o644,
		ModTime: aws.ToTime(out.LastModified),
	}, nil
}

func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, Object{}, s.wrap(err, name)
	}
	return out.Body, Object{
		Name:    name,
		Size:    aws.ToInt64(out.ContentLength),
		Mode:    0o644,
		ModTime: aws.ToTime(out.LastModified),
	}, nil
}

func (s *S3Source) wrap(err error, name string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return errors.Wrap(ErrNotFound, s.Location(name))
		}
	}
	return errors.Wrapf(err, "s3 %s", s.Location(name))
}
