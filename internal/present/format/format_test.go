package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/notedown/pkg/api"
)

func sampleNotes() []api.Note {
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return []api.Note{
		{ID: 1, Version: 1, Title: "first", Tags: []string{"a", "b"}, CreatedAt: at, UpdatedAt: at},
		{ID: 2, Version: 3, Title: "tab\there", CreatedAt: at, UpdatedAt: at.Add(time.Hour)},
	}
}

func TestWritePlainNotes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlainNotes(&buf, sampleNotes(), true))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id"))
	assert.Contains(t, lines[1], "a,b")
	// Tabs inside fields are escaped so columns stay aligned.
	assert.Contains(t, lines[2], `tab\there`)
}

func TestWriteJSONNotesRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONNotes(&buf, sampleNotes(), false))

	var got []api.Note
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestWriteNDJSONNotes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNDJSONNotes(&buf, sampleNotes()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var n api.Note
		require.NoError(t, json.Unmarshal([]byte(line), &n))
	}
}

func TestJSONStreamWriter(t *testing.T) {
	t.Run("empty stream is an empty array", func(t *testing.T) {
		var buf bytes.Buffer
		jw := NewJSONStreamWriter(&buf, false)
		require.NoError(t, jw.Close())
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("batches form one valid array", func(t *testing.T) {
		var buf bytes.Buffer
		jw := NewJSONStreamWriter(&buf, false)
		notes := sampleNotes()
		require.NoError(t, jw.WriteNotes(notes[:1]))
		require.NoError(t, jw.WriteNotes(notes[1:]))
		require.NoError(t, jw.Close())

		var got []api.Note
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Len(t, got, 2)
	})
}

func TestPlainStreamWriterHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	pw := NewPlainStreamWriter(&buf, true)
	notes := sampleNotes()
	require.NoError(t, pw.WriteNotes(notes[:1]))
	require.NoError(t, pw.WriteNotes(notes[1:]))
	require.NoError(t, pw.Close())

	assert.Equal(t, 1, strings.Count(buf.String(), "id"))
}
