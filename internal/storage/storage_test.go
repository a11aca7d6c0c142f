package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeyFromSignedURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "signed url",
			url:  "https://bucket.s3.us-east-1.amazonaws.com/chat/images/abc-photo.png?X-Amz-Signature=deadbeef",
			want: "chat/images/abc-photo.png",
		},
		{
			name: "url encoded key",
			url:  "https://bucket.s3.amazonaws.com/chat/files/abc-my%20report.pdf?X-Amz-Expires=604800",
			want: "chat/files/abc-my report.pdf",
		},
		{
			name: "plain key passes through",
			url:  "repairs/images/abc-before.jpg",
			want: "repairs/images/abc-before.jpg",
		},
		{
			name: "empty string",
			url:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeyFromSignedURL(tt.url))
		})
	}
}

func TestMockStorageUploadAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMockStorage()

	key, err := store.Upload(ctx, FolderChatImages, "photo.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, FolderChatImages+"/"))
	assert.True(t, strings.HasSuffix(key, "-photo.png"))
	assert.True(t, store.Has(key))

	url, err := store.SignedURL(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, url, key)
	assert.Equal(t, key, store.ExtractKeyFromSignedURL(url))

	require.NoError(t, store.Delete(ctx, key))
	assert.False(t, store.Has(key))

	// Deleting an empty key is a no-op
	require.NoError(t, store.Delete(ctx, ""))
}
