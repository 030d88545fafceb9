package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3StorePut(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Store{client: fake, bucket: "media", publicURL: "https://cdn.example.com"}

	url, err := store.Put(context.Background(), "projects/p1/cover.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/projects/p1/cover.png", url)
	assert.Equal(t, "media", *fake.input.Bucket)
	assert.Equal(t, "image/png", *fake.input.ContentType)
	assert.Equal(t, "png", fake.body)
}

func TestS3StorePutError(t *testing.T) {
	store := &S3Store{client: &fakeS3{err: errors.New("denied")}, bucket: "media"}

	_, err := store.Put(context.Background(), "k", strings.NewReader(""), "image/png")
	assert.Error(t, err)
	assert.Equal(t, "https://media.s3.amazonaws.com/k", store.URL("k"))
}
