package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/search"
)

func TestCopyIsIndependent(t *testing.T) {
	original := Default().WithSearchEngine(2)
	copied := original.Copy()
	copied.DebuggingEnabled = true

	assert.False(t, original.DebuggingEnabled)
	assert.Equal(t, 2, copied.SearchEngine)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	reg := search.Default()
	s := Settings{SearchEngine: 3, DebuggingEnabled: true}

	decoded, err := Decode(s.Encode(), reg)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.Equal(t, s, *decoded)
}

func TestDecodeNil(t *testing.T) {
	decoded, err := Decode(nil, search.Default())
	assert.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecode(t *testing.T) {
	reg := search.Default()

	tests := []struct {
		name    string
		input   map[string]interface{}
		want    Settings
		wantErr error
	}{
		{
			name:  "json numbers",
			input: map[string]interface{}{"searchEngine": float64(1), "debuggingEnabled": true},
			want:  Settings{SearchEngine: 1, DebuggingEnabled: true},
		},
		{
			name:  "missing debugging flag",
			input: map[string]interface{}{"searchEngine": 4},
			want:  Settings{SearchEngine: 4},
		},
		{
			name:    "engine index too large",
			input:   map[string]interface{}{"searchEngine": 99},
			wantErr: ErrInvalidSearchEngineIndex,
		},
		{
			name:    "negative engine index",
			input:   map[string]interface{}{"searchEngine": -1},
			wantErr: ErrInvalidSearchEngineIndex,
		},
		{
			name:    "fractional index",
			input:   map[string]interface{}{"searchEngine": 1.5},
			wantErr: ErrInvalidSettings,
		},
		{
			name:    "wrong type",
			input:   map[string]interface{}{"searchEngine": "google"},
			wantErr: ErrInvalidSettings,
		},
		{
			name:    "missing engine",
			input:   map[string]interface{}{"debuggingEnabled": true},
			wantErr: ErrInvalidSettings,
		},
		{
			name:    "debugging not a bool",
			input:   map[string]interface{}{"searchEngine": 0, "debuggingEnabled": "yes"},
			wantErr: ErrInvalidSettings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input, reg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestEngine(t *testing.T) {
	reg := search.Default()

	e, err := Default().WithSearchEngine(1).Engine(reg)
	require.NoError(t, err)
	assert.Equal(t, "DuckDuckGo", e.Name)

	_, err = Default().WithSearchEngine(reg.Len()).Engine(reg)
	assert.ErrorIs(t, err, ErrInvalidSearchEngineIndex)
}
