package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traqcheck/candidateverify/pkg/blob"
)

func TestPutGetDelete(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "resumes/a.txt", "text/plain", []byte("hello")))

	data, contentType, err := s.Get(ctx, "resumes/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Contains(t, contentType, "text/plain")

	require.NoError(t, s.Delete(ctx, "resumes/a.txt"))

	_, _, err = s.Get(ctx, "resumes/a.txt")
	require.ErrorIs(t, err, blob.ErrNotFound)

	require.ErrorIs(t, s.Delete(ctx, "resumes/a.txt"), blob.ErrNotFound)
}

func TestInvalidKeys(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "a/../../secret", `a\b`} {
		err := s.Put(ctx, key, "", []byte("x"))
		assert.Error(t, err, "key %q", key)
	}
}

func TestUnknownExtensionFallsBackToSniffing(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "documents/blob.bin", "", []byte("plain text payload")))

	_, contentType, err := s.Get(ctx, "documents/blob.bin")
	require.NoError(t, err)
	assert.NotEmpty(t, contentType)
}
