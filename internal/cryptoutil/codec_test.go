package cryptoutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestRoundTripEncrypted(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	require.Len(t, salt, SaltLength)

	key := DeriveKey("correct horse battery staple", salt)
	codec, err := NewCodec(key)
	require.NoError(t, err)
	require.True(t, codec.Enabled())

	in := sample{Name: "alice", Age: 30}
	blob, err := codec.Encode(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, codec.Decode(blob, &out))
	assert.Equal(t, in, out)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	codec, err := NewCodec(DeriveKey("right", salt))
	require.NoError(t, err)

	blob, err := codec.Encode(sample{Name: "bob", Age: 1})
	require.NoError(t, err)

	wrong, err := NewCodec(DeriveKey("wrong", salt))
	require.NoError(t, err)

	var out sample
	err = wrong.Decode(blob, &out)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptTooShortFails(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	codec, err := NewCodec(DeriveKey("p", salt))
	require.NoError(t, err)

	var out sample
	err = codec.Decode([]byte("x"), &out)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestPlaintextPassthrough(t *testing.T) {
	codec, err := NewCodec(nil)
	require.NoError(t, err)
	assert.False(t, codec.Enabled())

	in := sample{Name: "carol", Age: 40}
	blob, err := codec.Encode(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, codec.Decode(blob, &out))
	assert.Equal(t, in, out)
}
