package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_WireShape(t *testing.T) {
	data, err := NewNote("C").Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"note","note":"C"}`, string(data))

	data, err = NewPlayerCount(2).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"playerCount","count":2}`, string(data))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Message
		wantErr error
	}{
		{name: "note", input: `{"type":"note","note":"Csharp"}`, want: NewNote("Csharp")},
		{name: "player count", input: `{"type":"playerCount","count":1}`, want: NewPlayerCount(1)},
		{name: "unknown type kept", input: `{"type":"chord"}`, want: Message{Type: "chord"}},
		{name: "missing type", input: `{"note":"C"}`, wantErr: ErrMissingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, input := range []string{"not json", "", "[1,2]", `{"type":5}`} {
		_, err := Decode([]byte(input))
		assert.Error(t, err, "input %q", input)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewNote("A").Validate())
	assert.ErrorIs(t, Message{Type: TypeNote}.Validate(), ErrMissingNote)
	assert.Error(t, Message{Type: TypePlayerCount}.Validate())
	assert.NoError(t, NewPlayerCount(0).Validate())
	assert.NoError(t, Message{Type: "whatever"}.Validate())
}

func TestPlayerCount(t *testing.T) {
	n, ok := NewPlayerCount(2).PlayerCount()
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = NewNote("C").PlayerCount()
	assert.False(t, ok)
}
