package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journalPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "davtidy.journal")
}

func logPair(t *testing.T, w *Writer, src, dst string) {
	t.Helper()
	require.NoError(t, w.Log(Entry{Type: TypeRename, Source: src, Dest: dst}))
	require.NoError(t, w.Log(Entry{Type: TypeRename, Source: src, Dest: dst, Success: true}))
}

func TestWriterReaderRoundTrip(t *testing.T) {
	path := journalPath(t)

	w, err := NewWriter(path)
	require.NoError(t, err)
	logPair(t, w, "/docs/My:Docs", "/docs/My_Docs")
	require.NoError(t, w.Close())

	entries, err := NewReader(path).Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/docs/My:Docs", entries[0].Source)
	assert.Equal(t, "/docs/My_Docs", entries[0].Dest)
	assert.False(t, entries[0].Success)
	assert.True(t, entries[1].Success)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestWriter_AppendsAcrossRuns(t *testing.T) {
	path := journalPath(t)

	w, err := NewWriter(path)
	require.NoError(t, err)
	logPair(t, w, "/a", "/a_")
	require.NoError(t, w.Close())

	w, err = NewWriter(path)
	require.NoError(t, err)
	logPair(t, w, "/b", "/b_")
	require.NoError(t, w.Close())

	entries, err := NewReader(path).Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestConfirmedReverse(t *testing.T) {
	path := journalPath(t)

	w, err := NewWriter(path)
	require.NoError(t, err)
	logPair(t, w, "/My:Docs", "/My_Docs")
	logPair(t, w, "/My_Docs/report?.pdf", "/My_Docs/report_.pdf")
	// Intent without confirmation: the move never completed.
	require.NoError(t, w.Log(Entry{Type: TypeRename, Source: "/My_Docs/CON", Dest: "/My_Docs/CON_"}))
	require.NoError(t, w.Close())

	confirmed, err := NewReader(path).ConfirmedReverse()
	require.NoError(t, err)
	require.Len(t, confirmed, 2)
	assert.Equal(t, "/My_Docs/report?.pdf", confirmed[0].Source, "children first on undo")
	assert.Equal(t, "/My:Docs", confirmed[1].Source)
}

func TestValidate(t *testing.T) {
	t.Run("confirmed pairs pass", func(t *testing.T) {
		path := journalPath(t)
		w, err := NewWriter(path)
		require.NoError(t, err)
		logPair(t, w, "/a", "/a_")
		require.NoError(t, w.Close())

		assert.NoError(t, NewReader(path).Validate())
	})

	t.Run("unconfirmed intent flagged", func(t *testing.T) {
		path := journalPath(t)
		w, err := NewWriter(path)
		require.NoError(t, err)
		require.NoError(t, w.Log(Entry{Type: TypeRename, Source: "/a", Dest: "/a_"}))
		require.NoError(t, w.Close())

		assert.ErrorIs(t, NewReader(path).Validate(), ErrPartialWrite)
	})
}

func TestReader_MissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "nope.journal")).Entries()

	assert.Error(t, err)
}
