package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"davtidy/internal/testutil"
	"davtidy/pkg/journal"
)

func newService(remote *testutil.FakeRemote) *Service {
	return New(Options{
		Client: remote,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// seedScenario builds the reference tree: a folder "My:Docs" containing
// "report?.pdf" and "CON".
func seedScenario(remote *testutil.FakeRemote) {
	remote.MkdirAll("/My:Docs")
	remote.AddFile("/My:Docs/report?.pdf")
	remote.AddFile("/My:Docs/CON")
}

func TestRunSanitize_SafeModePlansWithoutMoves(t *testing.T) {
	remote := testutil.NewFakeRemote()
	seedScenario(remote)

	exec, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{
		Root:     "/",
		SafeMode: true,
	})

	require.NoError(t, err)
	assert.Empty(t, remote.Moves, "safe mode performs zero move calls")
	assert.Equal(t, 3, exec.Result.TotalEntries)
	assert.Equal(t, 3, exec.Result.RenamedCount, "three planned renames")
	assert.Zero(t, exec.Result.ErrorCount)

	planned := map[string]string{}
	for _, d := range exec.Result.Decisions {
		planned[d.OriginalName] = d.FinalName
	}
	assert.Equal(t, map[string]string{
		"My:Docs":     "My_Docs",
		"report?.pdf": "report_.pdf",
		"CON":         "CON_",
	}, planned)

	// Nothing changed remotely.
	assert.True(t, remote.Exists("/My:Docs/CON"))
}

func TestRunSanitize_AppliesRenamesParentFirst(t *testing.T) {
	remote := testutil.NewFakeRemote()
	seedScenario(remote)

	exec, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{Root: "/"})

	require.NoError(t, err)
	require.Len(t, remote.Moves, 3, "exactly three move calls")
	assert.Equal(t, "/My:Docs", remote.Moves[0].From, "folder renamed before its children")
	assert.Equal(t, "/My_Docs", remote.Moves[0].To)
	for _, m := range remote.Moves[1:] {
		assert.Equal(t, "/My_Docs", path.Dir(m.From), "children located under post-rename path")
	}

	assert.Equal(t, 3, exec.Result.RenamedCount)
	assert.True(t, remote.Exists("/My_Docs/report_.pdf"))
	assert.True(t, remote.Exists("/My_Docs/CON_"))
	assert.False(t, remote.Exists("/My:Docs"))
}

func TestRunSanitize_SecondRunFindsNothing(t *testing.T) {
	remote := testutil.NewFakeRemote()
	seedScenario(remote)
	svc := newService(remote)

	_, err := svc.RunSanitize(context.Background(), SanitizeRequest{Root: "/"})
	require.NoError(t, err)
	movesAfterFirst := len(remote.Moves)

	exec, err := svc.RunSanitize(context.Background(), SanitizeRequest{Root: "/"})
	require.NoError(t, err)

	assert.Zero(t, exec.Result.RenamedCount, "fully idempotent end-to-end")
	assert.Equal(t, exec.Result.TotalEntries, exec.Result.CompliantCount)
	assert.Len(t, remote.Moves, movesAfterFirst, "no further move calls")
}

func TestRunSanitize_SiblingCollisionGetsSuffix(t *testing.T) {
	remote := testutil.NewFakeRemote()
	remote.AddFile("/file?.txt")
	remote.AddFile("/file_.txt")

	_, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{Root: "/"})

	require.NoError(t, err)
	assert.True(t, remote.Exists("/file_.txt"))
	assert.True(t, remote.Exists("/file__1.txt"))
}

func TestRunSanitize_TwoInvalidSiblingsNeverCollide(t *testing.T) {
	remote := testutil.NewFakeRemote()
	// Both sanitize to "a_b.txt"; the second must pick a suffix even though
	// "a_b.txt" did not exist when the listing was captured.
	remote.AddFile("/a:b.txt")
	remote.AddFile("/a?b.txt")

	_, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{Root: "/"})

	require.NoError(t, err)
	assert.True(t, remote.Exists("/a_b.txt"))
	assert.True(t, remote.Exists("/a_b_1.txt"))
}

func TestRunSanitize_InvalidSubstituteIsFatal(t *testing.T) {
	remote := testutil.NewFakeRemote()
	seedScenario(remote)

	_, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{
		Root:       "/",
		Substitute: '?',
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "substitute character")
	assert.Empty(t, remote.Moves, "nothing remote happened")
}

func TestRunSanitize_UnreachableRootIsFatal(t *testing.T) {
	remote := testutil.NewFakeRemote()

	_, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{Root: "/missing"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestRunSanitize_FileRootIsFatal(t *testing.T) {
	remote := testutil.NewFakeRemote()
	remote.AddFile("/lone.txt")

	_, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{Root: "/lone.txt"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestRunSanitize_EntryFailureDoesNotAbort(t *testing.T) {
	remote := testutil.NewFakeRemote()
	remote.AddFile("/a?.txt")
	remote.AddFile("/b?.txt")
	remote.MoveErr = func(from, _ string) error {
		if from == "/a?.txt" {
			return errors.New("connection reset")
		}
		return nil
	}

	exec, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{Root: "/"})

	require.NoError(t, err)
	assert.Equal(t, 1, exec.Result.ErrorCount)
	assert.Equal(t, 1, exec.Result.RenamedCount)
	assert.True(t, remote.Exists("/b_.txt"), "later entries still processed")
}

func TestRunSanitize_ListErrorPolicies(t *testing.T) {
	t.Run("default aborts", func(t *testing.T) {
		remote := testutil.NewFakeRemote()
		remote.MkdirAll("/bad")
		remote.ListErrs["/bad"] = errors.New("boom")

		_, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{Root: "/"})

		assert.Error(t, err)
	})

	t.Run("skip policy continues", func(t *testing.T) {
		remote := testutil.NewFakeRemote()
		remote.MkdirAll("/bad")
		remote.ListErrs["/bad"] = errors.New("boom")
		remote.AddFile("/z?.txt")

		exec, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{
			Root:            "/",
			SkipOnListError: true,
		})

		require.NoError(t, err)
		assert.True(t, remote.Exists("/z_.txt"))
		assert.Equal(t, 1, exec.Result.RenamedCount)
	})
}

func TestRunSanitize_ProgressReported(t *testing.T) {
	remote := testutil.NewFakeRemote()
	seedScenario(remote)

	var calls int
	_, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{
		Root:     "/",
		SafeMode: true,
		OnProgress: func(stage string, processed, total int) {
			calls++
			assert.Equal(t, "sanitizing", stage)
			assert.Zero(t, total, "total is unknown for a remote walk")
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunSanitize_WritesJournal(t *testing.T) {
	remote := testutil.NewFakeRemote()
	seedScenario(remote)
	journalPath := filepath.Join(t.TempDir(), "run.journal")

	exec, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{
		Root:        "/",
		JournalPath: journalPath,
	})

	require.NoError(t, err)
	assert.Equal(t, journalPath, exec.JournalPath)

	reader := journal.NewReader(journalPath)
	require.NoError(t, reader.Validate())
	entries, err := reader.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 6, "intent and confirmation per rename")
}

func TestRunSanitize_SafeModeSkipsJournal(t *testing.T) {
	remote := testutil.NewFakeRemote()
	seedScenario(remote)
	journalPath := filepath.Join(t.TempDir(), "run.journal")

	exec, err := newService(remote).RunSanitize(context.Background(), SanitizeRequest{
		Root:        "/",
		SafeMode:    true,
		JournalPath: journalPath,
	})

	require.NoError(t, err)
	assert.Empty(t, exec.JournalPath)
	_, err = journal.NewReader(journalPath).Entries()
	assert.Error(t, err, "no journal file written in safe mode")
}

func TestRunUndo_RevertsInReverseOrder(t *testing.T) {
	remote := testutil.NewFakeRemote()
	seedScenario(remote)
	svc := newService(remote)
	journalPath := filepath.Join(t.TempDir(), "run.journal")

	_, err := svc.RunSanitize(context.Background(), SanitizeRequest{
		Root:        "/",
		JournalPath: journalPath,
	})
	require.NoError(t, err)
	require.True(t, remote.Exists("/My_Docs/report_.pdf"))

	exec, err := svc.RunUndo(context.Background(), UndoRequest{JournalPath: journalPath})

	require.NoError(t, err)
	assert.Equal(t, 3, exec.Total)
	assert.Equal(t, 3, exec.Reverted)
	assert.Zero(t, exec.Failed)
	assert.True(t, remote.Exists("/My:Docs/report?.pdf"))
	assert.True(t, remote.Exists("/My:Docs/CON"))
	assert.False(t, remote.Exists("/My_Docs"))
}

func TestRunUndo_SafeMode(t *testing.T) {
	remote := testutil.NewFakeRemote()
	seedScenario(remote)
	svc := newService(remote)
	journalPath := filepath.Join(t.TempDir(), "run.journal")

	_, err := svc.RunSanitize(context.Background(), SanitizeRequest{
		Root:        "/",
		JournalPath: journalPath,
	})
	require.NoError(t, err)
	movesBefore := len(remote.Moves)

	exec, err := svc.RunUndo(context.Background(), UndoRequest{
		JournalPath: journalPath,
		SafeMode:    true,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, exec.Total)
	assert.Zero(t, exec.Reverted)
	assert.Len(t, remote.Moves, movesBefore)
	assert.True(t, remote.Exists("/My_Docs"), "safe mode leaves the tree as is")
}

func TestRunUndo_MissingJournalIsFatal(t *testing.T) {
	remote := testutil.NewFakeRemote()

	_, err := newService(remote).RunUndo(context.Background(), UndoRequest{
		JournalPath: filepath.Join(t.TempDir(), "nope.journal"),
	})

	assert.Error(t, err)
}

func TestRunInit(t *testing.T) {
	t.Run("stores and probes", func(t *testing.T) {
		remote := testutil.NewFakeRemote()
		store := &recordingStore{}

		err := newService(remote).RunInit(context.Background(), store, InitRequest{
			Service:  "svc",
			Username: "alice",
			Secret:   "s3cret",
		})

		require.NoError(t, err)
		assert.Equal(t, "s3cret", store.secrets["svc/alice"])
	})

	t.Run("probe failure reported", func(t *testing.T) {
		remote := testutil.NewFakeRemote()
		remote.ListErrs["/"] = errors.New("401")
		store := &recordingStore{}

		err := newService(remote).RunInit(context.Background(), store, InitRequest{
			Service:  "svc",
			Username: "alice",
			Secret:   "wrong",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection test failed")
	})
}

type recordingStore struct {
	secrets map[string]string
}

func (r *recordingStore) Get(service, username string) (string, error) {
	secret, ok := r.secrets[service+"/"+username]
	if !ok {
		return "", fmt.Errorf("not found")
	}
	return secret, nil
}

func (r *recordingStore) Set(service, username, secret string) error {
	if r.secrets == nil {
		r.secrets = map[string]string{}
	}
	r.secrets[service+"/"+username] = secret
	return nil
}
