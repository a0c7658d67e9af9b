package shell

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedex/filedex/internal/config"
	"github.com/filedex/filedex/internal/session"
)

type testShell struct {
	mgr    *session.Manager
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestShell(t *testing.T) *testShell {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr, err := session.Open(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mgr.Close()
	})

	return &testShell{
		mgr:    mgr,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
}

// run feeds a script of commands through a fresh shell over the shared
// manager and returns the structured stdout lines.
func (ts *testShell) run(t *testing.T, script ...string) []string {
	t.Helper()
	ts.stdout.Reset()
	ts.stderr.Reset()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sh := New(ts.mgr, ts.stdout, ts.stderr, log)
	require.NoError(t, sh.Run(strings.NewReader(strings.Join(script, "\n"))))

	out := strings.TrimSpace(ts.stdout.String())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	// Keep mtimes distinct even on coarse filesystems
	now := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(path, now, now))
}

func TestRun_PrintsHelpOnStartup(t *testing.T) {
	ts := newTestShell(t)
	ts.run(t, "exit")
	assert.Contains(t, ts.stderr.String(), "Commands:")
	assert.Contains(t, ts.stderr.String(), "search <query>")
}

func TestAddCommitSearch_EmitsFragmentJSON(t *testing.T) {
	ts := newTestShell(t)
	path := filepath.Join(t.TempDir(), "fox.txt")
	writeFile(t, path, "the quick brown fox")

	lines := ts.run(t,
		"add "+path,
		"commit",
		"search content:quick",
		"exit",
	)

	require.Len(t, lines, 1)

	var hits []struct {
		Path      string             `json:"path"`
		Score     float64            `json:"score"`
		Fragments map[string][][]int `json:"fragments"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &hits))
	require.Len(t, hits, 1)

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, abs, hits[0].Path)
	assert.Greater(t, hits[0].Score, 0.0)
	assert.Equal(t, map[string][][]int{"quick": {{4, 9}}}, hits[0].Fragments)
}

func TestSearch_RejectedWhilePending(t *testing.T) {
	ts := newTestShell(t)
	path := filepath.Join(t.TempDir(), "pending.txt")
	writeFile(t, path, "not yet visible")

	lines := ts.run(t,
		"add "+path,
		"search visible",
		"rollback",
		"exit",
	)

	assert.Nil(t, lines, "no query may be issued while changes are pending")
	assert.Contains(t, ts.stderr.String(), "uncommitted changes")
}

func TestSearch_BeforeCommitSeesNothingAfterCommitSeesDocument(t *testing.T) {
	ts := newTestShell(t)
	path := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, path, "eventually consistent words")

	// Stage and roll back: nothing visible
	lines := ts.run(t, "add "+path, "rollback", "search eventually", "exit")
	require.Len(t, lines, 1)
	assert.Equal(t, "[]", lines[0])

	// Stage and commit: visible
	lines = ts.run(t, "add "+path, "commit", "search eventually", "exit")
	require.Len(t, lines, 1)
	assert.NotEqual(t, "[]", lines[0])
}

func TestCommitRollback_InIdleStatePrintNotice(t *testing.T) {
	ts := newTestShell(t)

	ts.run(t, "commit", "rollback", "exit")

	assert.Contains(t, ts.stderr.String(), "No changes to commit")
	assert.Contains(t, ts.stderr.String(), "No changes to rollback")
}

func TestExit_ImplicitlyRollsBackPendingSession(t *testing.T) {
	ts := newTestShell(t)
	path := filepath.Join(t.TempDir(), "dropped.txt")
	writeFile(t, path, "never committed")

	ts.run(t, "add "+path, "exit")

	lines := ts.run(t, "list", "exit")
	require.Len(t, lines, 1)
	assert.Equal(t, "[]", lines[0])
}

func TestList_ShowsCommittedEntries(t *testing.T) {
	ts := newTestShell(t)
	path := filepath.Join(t.TempDir(), "listed.txt")
	writeFile(t, path, "list me")

	lines := ts.run(t, "add "+path, "commit", "list", "exit")
	require.Len(t, lines, 1)

	var entries []struct {
		Path  string `json:"path"`
		Epoch int64  `json:"epoch"`
		Hash  uint64 `json:"hash"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entries))
	require.Len(t, entries, 1)

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, abs, entries[0].Path)
	assert.NotZero(t, entries[0].Epoch)
	assert.NotZero(t, entries[0].Hash)
}

func TestClearCommit_EmptiesListAndSearch(t *testing.T) {
	ts := newTestShell(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "alpha shared")
	writeFile(t, b, "beta shared")

	ts.run(t, "add "+a, "add "+b, "commit", "exit")

	lines := ts.run(t, "clear", "commit", "list", "search shared", "exit")
	require.Len(t, lines, 2)
	assert.Equal(t, "[]", lines[0])
	assert.Equal(t, "[]", lines[1])
}

func TestRollback_RestoresPriorState(t *testing.T) {
	ts := newTestShell(t)
	dir := t.TempDir()
	p1 := filepath.Join(dir, "p1.txt")
	p2 := filepath.Join(dir, "p2.txt")
	writeFile(t, p1, "one")
	writeFile(t, p2, "two")

	ts.run(t, "add "+p2, "commit", "exit")
	lines := ts.run(t, "add "+p1, "remove "+p2, "rollback", "list", "exit")

	require.Len(t, lines, 1)
	abs2, err := filepath.Abs(p2)
	require.NoError(t, err)
	assert.Contains(t, lines[0], abs2)

	abs1, err := filepath.Abs(p1)
	require.NoError(t, err)
	assert.NotContains(t, lines[0], abs1)
}

func TestUnknownCommand_ReportsAndKeepsGoing(t *testing.T) {
	ts := newTestShell(t)

	lines := ts.run(t, "frobnicate /x", "list", "exit")

	assert.Contains(t, ts.stderr.String(), "unknown command: frobnicate /x")
	require.Len(t, lines, 1, "the shell must keep processing after an unknown command")
}

func TestWrongArity_IsRejected(t *testing.T) {
	ts := newTestShell(t)

	ts.run(t, "add", "commit now", "exit")

	assert.Contains(t, ts.stderr.String(), "unknown command: add")
	assert.Contains(t, ts.stderr.String(), "unknown command: commit now")
}

func TestAdd_DirectoryArgumentRejected(t *testing.T) {
	ts := newTestShell(t)
	dir := t.TempDir()

	ts.run(t, "add "+dir, "exit")

	assert.Contains(t, ts.stderr.String(), "is not a file")
	assert.Contains(t, ts.stderr.String(), "ERR_203_NOT_A_FILE")
	// Nothing was staged, so commit has nothing to do
	ts.run(t, "commit", "exit")
	assert.Contains(t, ts.stderr.String(), "No changes to commit")
}

func TestAdd_MissingFileReportedNothingStaged(t *testing.T) {
	ts := newTestShell(t)

	ts.run(t, "add "+filepath.Join(t.TempDir(), "ghost.txt"), "exit")

	assert.Contains(t, ts.stderr.String(), "failed to access file")
	assert.Contains(t, ts.stderr.String(), "ERR_201_FILE_ACCESS")
}

func TestEmptyLines_AreSkipped(t *testing.T) {
	ts := newTestShell(t)

	lines := ts.run(t, "", "   ", "list", "exit")

	require.Len(t, lines, 1)
	assert.Equal(t, "[]", lines[0])
}

func TestQueryParseFailure_ReportedOnStderr(t *testing.T) {
	ts := newTestShell(t)

	lines := ts.run(t, `search content:"unterminated`, "exit")

	assert.Nil(t, lines)
	assert.Contains(t, ts.stderr.String(), "failed to search documents")
}
