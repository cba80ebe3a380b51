package tabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/browser/internal/shared/id"
)

func TestPageCodecRoundTrip(t *testing.T) {
	codec := PageCodec{}
	original := NewPage("https://go.dev", "Go")

	decoded, err := codec.Decode(original.Encode())
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestPageCodecNew(t *testing.T) {
	p := PageCodec{}.New().(*Page)

	assert.Equal(t, BlankURL, p.URL)
	assert.True(t, id.IsValid(p.ID.String()))
}

func TestPageCodecDecode(t *testing.T) {
	codec := PageCodec{}

	p, err := codec.Decode(map[string]interface{}{"title": "untitled"})
	require.NoError(t, err)
	assert.Equal(t, BlankURL, p.(*Page).URL)
	assert.NotEmpty(t, p.(*Page).ID, "missing ids are regenerated")

	_, err = codec.Decode(map[string]interface{}{"url": 42})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = codec.Decode(nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}
