package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLikes(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{nil, 0},
		{42, 42},
		{float64(12.9), 12},
		{"1,204", 1204},
		{"3.2k", 3200},
		{"1.5w", 15000},
		{"2万", 20000},
		{"lots", 0},
		{"", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseLikes(tc.in), "input %v", tc.in)
	}
}

func TestSearchNoteDecodesLooseLikes(t *testing.T) {
	var notes []SearchNote
	raw := `[{"title":"a","content":"x","likes":"1.2k"},{"title":"b","content":"y","likes":null},{"title":"c","content":"z","likes":{"n":1}}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &notes))
	require.Len(t, notes, 3)
	assert.Equal(t, Likes(1200), notes[0].Likes)
	assert.Equal(t, Likes(0), notes[1].Likes)
	assert.Equal(t, Likes(0), notes[2].Likes)
}
