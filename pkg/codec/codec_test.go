package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalog struct {
	Version int               `json:"version" yaml:"version" msgpack:"version"`
	Entries map[string]string `json:"entries" yaml:"entries" msgpack:"entries"`
	Tags    []string          `json:"tags" yaml:"tags" msgpack:"tags"`
}

func TestCodecs_RoundTrip(t *testing.T) {
	in := catalog{
		Version: 7,
		Entries: map[string]string{"a": "1", "b": "2"},
		Tags:    []string{"x", "y"},
	}

	for _, name := range []string{"json", "yaml", "msgpack"} {
		t.Run(name, func(t *testing.T) {
			c, err := ByName[catalog](name)
			require.NoError(t, err)

			data, err := c.Marshal(in)
			require.NoError(t, err)

			out, err := c.Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestCodecs_RejectGarbage(t *testing.T) {
	garbage := []byte("\x00\x01{not valid")

	_, err := JSON[catalog]{}.Unmarshal(garbage)
	assert.Error(t, err)

	_, err = YAML[catalog]{}.Unmarshal([]byte("version: [unterminated"))
	assert.Error(t, err)

	_, err = MsgPack[catalog]{}.Unmarshal([]byte{0xc1})
	assert.Error(t, err)
}

func TestByName_Unknown(t *testing.T) {
	_, err := ByName[catalog]("xml")
	assert.Error(t, err)

	c, err := ByName[catalog]("")
	require.NoError(t, err)
	assert.IsType(t, JSON[catalog]{}, c)
}
