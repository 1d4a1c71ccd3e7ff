package media

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte{0x89, 'P', 'N', 'G'}
	require.NoError(t, s.Put(ctx, Object{Key: "a.png", ContentType: "image/png", Data: data}))
	data[0] = 0

	got, err := s.Get(ctx, "a.png")
	require.NoError(t, err)
	assert.Equal(t, byte(0x89), got.Data[0])
	assert.Equal(t, "image/png", got.ContentType)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = body
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(body)),
		ContentType: aws.String(f.types[aws.ToString(in.Key)]),
	}, nil
}

func TestS3Store_PrefixesKeys(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	s := NewS3Store(fake, "portal-media", "dermatology")

	require.NoError(t, s.Put(ctx, Object{Key: "sess/dermatology_1.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}))
	assert.Contains(t, fake.objects, "dermatology/sess/dermatology_1.jpg")

	got, err := s.Get(ctx, "sess/dermatology_1.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpg"), got.Data)
	assert.Equal(t, "image/jpeg", got.ContentType)

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
