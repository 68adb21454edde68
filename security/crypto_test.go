package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmpberger88/EnigmaTalk/exception"
)

const testKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(testKey)
	require.NoError(t, err)
	return codec
}

func TestNewCodec_RejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "not hex", key: "zz68616e"},
		{name: "too short", key: "6368616e6765"},
		{name: "empty", key: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCodec(tt.key)
			assert.ErrorIs(t, err, exception.ErrFormat)
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	tests := []string{
		"hi",
		"",
		"a longer message with spaces and punctuation!?",
		"ünïcödé ✓ 北京",
	}

	for _, plaintext := range tests {
		blob, err := codec.Encrypt(plaintext)
		require.NoError(t, err)

		decrypted, err := codec.Decrypt(blob)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestCodec_BlobShape(t *testing.T) {
	codec := newTestCodec(t)

	blob, err := codec.Encrypt("hello")
	require.NoError(t, err)

	parts := strings.Split(blob, ":")
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 24) // 12-byte nonce
	assert.Len(t, parts[2], 32) // 16-byte tag
}

func TestCodec_FreshNoncePerCall(t *testing.T) {
	codec := newTestCodec(t)

	first, err := codec.Encrypt("same plaintext")
	require.NoError(t, err)
	second, err := codec.Encrypt("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, strings.Split(first, ":")[0], strings.Split(second, ":")[0])
}

func TestCodec_TamperDetection(t *testing.T) {
	codec := newTestCodec(t)

	blob, err := codec.Encrypt("do not touch")
	require.NoError(t, err)

	// flip one hex digit in each section; every mutation must be caught
	for i, r := range blob {
		if r == ':' {
			continue
		}
		replacement := byte('0')
		if blob[i] == '0' {
			replacement = '1'
		}
		mutated := blob[:i] + string(replacement) + blob[i+1:]
		if mutated == blob {
			continue
		}

		_, err := codec.Decrypt(mutated)
		assert.ErrorIs(t, err, exception.ErrIntegrity, "mutation at offset %d went undetected", i)
	}
}

func TestCodec_MalformedBlobs(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name string
		blob string
	}{
		{name: "missing parts", blob: "aabb:ccdd"},
		{name: "too many parts", blob: "aa:bb:cc:dd"},
		{name: "not hex", blob: "zz:bb:cc"},
		{name: "empty", blob: ""},
		{name: "wrong nonce size", blob: "aabb:ccdd:eeff"},
		{name: "legacy two-part format", blob: "aabbccddeeff00112233445566778899:deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decrypt(tt.blob)
			assert.ErrorIs(t, err, exception.ErrFormat)
		})
	}
}

func TestCodec_DecryptIsDeterministic(t *testing.T) {
	codec := newTestCodec(t)

	blob, err := codec.Encrypt("stable")
	require.NoError(t, err)

	first, err := codec.Decrypt(blob)
	require.NoError(t, err)
	second, err := codec.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
