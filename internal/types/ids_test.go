package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	id := NewID()

	assert.False(t, id.IsZero())
	assert.NoError(t, id.Validate())
	assert.NotEqual(t, id, NewID())
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "3b241101-e2bb-4255-8caf-4136c566a962", false},
		{"uppercase uuid", "3B241101-E2BB-4255-8CAF-4136C566A962", false},
		{"empty", "", true},
		{"not a uuid", "hello", true},
		{"truncated", "3b241101-e2bb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, id.Validate())
		})
	}
}

func TestParseID_Canonicalizes(t *testing.T) {
	id, err := ParseID("3B241101-E2BB-4255-8CAF-4136C566A962")
	require.NoError(t, err)
	assert.Equal(t, ID("3b241101-e2bb-4255-8caf-4136c566a962"), id)
}

func TestID_UnmarshalNullIsUnassigned(t *testing.T) {
	var id ID
	require.NoError(t, json.Unmarshal([]byte("null"), &id))
	assert.True(t, id.IsZero())
}

func TestID_JSONRoundTrip(t *testing.T) {
	id := NewID()

	data, err := json.Marshal(id)
	require.NoError(t, err)

	var decoded ID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)
}

func TestID_UnmarshalRejectsInvalid(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`"not-a-uuid"`), &id))
}

func TestID_MarshalZeroAsNull(t *testing.T) {
	data, err := json.Marshal(ID(""))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
