package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3Storage_Upload(t *testing.T) {
	putter := &fakePutter{}
	store := NewS3StorageWithClient(putter, "reports-bucket", "ap-northeast-2", "")

	url, err := store.Upload(context.Background(), ReportKey("2024-Q1"), []byte("xlsx"), "application/test")
	require.NoError(t, err)

	assert.Equal(t, "https://reports-bucket.s3.ap-northeast-2.amazonaws.com/reports/provisions-2024-Q1.xlsx", url)
	assert.Equal(t, "reports-bucket", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "application/test", aws.ToString(putter.input.ContentType))
	assert.Equal(t, []byte("xlsx"), putter.body)
}

func TestS3Storage_FileURLWithBaseURL(t *testing.T) {
	store := NewS3StorageWithClient(&fakePutter{}, "bucket", "ap-northeast-2", "https://cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/reports/a.xlsx", store.FileURL("reports/a.xlsx"))
}

func TestS3Storage_UploadError(t *testing.T) {
	store := NewS3StorageWithClient(&fakePutter{err: errors.New("denied")}, "bucket", "ap-northeast-2", "")
	_, err := store.Upload(context.Background(), "k", []byte("x"), "text/plain")
	assert.Error(t, err)
}
