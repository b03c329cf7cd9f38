package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) []byte {
	return bytes.Repeat([]byte{b}, KeySize)
}

func TestEncrypted_RoundTrip(t *testing.T) {
	c, err := NewEncrypted[catalog](JSON[catalog]{}, key(1))
	require.NoError(t, err)

	want := catalog{Version: 7, Entries: map[string]string{"token": "secret"}}
	data, err := c.Marshal(want)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")

	got, err := c.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEncrypted_KeyRotation(t *testing.T) {
	old, err := NewEncrypted[catalog](MsgPack[catalog]{}, key(1))
	require.NoError(t, err)
	data, err := old.Marshal(catalog{Version: 1, Tags: []string{"legacy"}})
	require.NoError(t, err)

	rotated, err := NewEncrypted[catalog](MsgPack[catalog]{}, key(2), key(1))
	require.NoError(t, err)
	got, err := rotated.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy"}, got.Tags)

	stranger, err := NewEncrypted[catalog](MsgPack[catalog]{}, key(3))
	require.NoError(t, err)
	_, err = stranger.Unmarshal(data)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestEncrypted_RejectsBadKeys(t *testing.T) {
	_, err := NewEncrypted[catalog](JSON[catalog]{}, []byte("short"))
	assert.ErrorIs(t, err, ErrKeySize)

	_, err = NewEncrypted[catalog](JSON[catalog]{}, key(1), []byte("short"))
	assert.ErrorIs(t, err, ErrKeySize)
}

func TestEncrypted_TruncatedData(t *testing.T) {
	c, err := NewEncrypted[catalog](JSON[catalog]{}, key(1))
	require.NoError(t, err)
	_, err = c.Unmarshal([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrDecrypt)
}
