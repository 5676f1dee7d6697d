package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestore_RoundTrip(t *testing.T) {
	orig := parseLines(t, "ls", "", "Git Status", "#1700000000", "make")

	got, err := Restore("/home/u/.bash_history", orig.LoadID(), orig.LoadedAt(), orig.All())
	require.NoError(t, err)

	assert.Equal(t, orig.LoadID(), got.LoadID())
	assert.Equal(t, "/home/u/.bash_history", got.Path())
	assert.True(t, orig.LoadedAt().Equal(got.LoadedAt()))
	assert.Equal(t, orig.All(), got.All())
	assert.Equal(t, orig.Search("git"), got.Search("GIT"))
	assert.Equal(t, 3, got.Stats().Commands)

	rec, ok := got.Get(4)
	require.True(t, ok)
	assert.Equal(t, "make", rec.Command)
	_, ok = got.Get(1)
	assert.False(t, ok)
}

func TestRestore_CopiesInput(t *testing.T) {
	in := []Record{{ID: 0, Command: "ls"}}
	store, err := Restore("", "id", time.Now(), in)
	require.NoError(t, err)

	in[0].Command = "rm -rf /"
	assert.Equal(t, "ls", store.All()[0].Command)
}

func TestRestore_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		loadID  string
		records []Record
	}{
		{"empty load id", "", []Record{{ID: 0, Command: "ls"}}},
		{"out of order", "id", []Record{{ID: 2, Command: "ls"}, {ID: 1, Command: "pwd"}}},
		{"duplicate id", "id", []Record{{ID: 1, Command: "ls"}, {ID: 1, Command: "pwd"}}},
		{"empty command", "id", []Record{{ID: 0, Command: ""}}},
		{"untrimmed command", "id", []Record{{ID: 0, Command: " ls"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore("", tt.loadID, time.Now(), tt.records)
			assert.Error(t, err)
		})
	}
}

func TestRestore_Empty(t *testing.T) {
	store, err := Restore("", "id", time.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Recent(5))
}
