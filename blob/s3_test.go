package blob

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	mtime   time.Time
	err     error
	keys    []string
}

func (f *fakeS3) lookup(key *string) (string, error) {
	f.keys = append(f.keys, aws.ToString(key))
	if f.err != nil {
		return "", f.err
	}
	body, ok := f.objects[aws.ToString(key)]
	if !ok {
		return "", &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}
	}
	return body, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	body, err := f.lookup(in.Key)
	if err != nil {
		return nil, err
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(body))),
		LastModified:  aws.Time(f.mtime),
	}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, err := f.lookup(in.Key)
	if err != nil {
		return nil, err
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
		LastModified:  aws.Time(f.mtime),
	}, nil
}

func TestS3Source_Open(t *testing.T) {
	mtime := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)
	client := &fakeS3{objects: map[string]string{"cvd/vessel.pth": "weights"}, mtime: mtime}
	src := newS3SourceWithClient(client, "models", "cvd")

	rc, obj, err := src.Open(context.Background(), "vessel.pth")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)

	assert.Equal(t, "weights", string(data))
	assert.EqualValues(t, 7, obj.Size)
	assert.True(t, obj.ModTime.Equal(mtime))
	assert.Equal(t, []string{"cvd/vessel.pth"}, client.keys)
	assert.Equal(t, "s3://models/cvd/vessel.pth", src.Location("vessel.pth"))
}

func TestS3Source_StatMissing(t *testing.T) {
	src := newS3SourceWithClient(&fakeS3{}, "models", "")

	_, err := src.Stat(context.Background(), "vessel.pth")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "s3://models/vessel.pth", src.Location("vessel.pth"))
}

func TestS3Source_OtherErrorsAreNotNotFound(t *testing.T) {
	denied := &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
	src := newS3SourceWithClient(&fakeS3{err: denied}, "models", "")

	_, _, err := src.Open(context.Background(), "vessel.pth")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestNewS3Source_RequiresBucket(t *testing.T) {
	_, err := NewS3Source(context.Background(), "", "", "us-east-1")
	assert.Error(t, err)
}
