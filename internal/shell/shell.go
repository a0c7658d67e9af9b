// Package shell implements the interactive command surface: one command
// per line on stdin, structured results as one-line JSON on stdout,
// diagnostics on stderr.
//
// The shell is a two-state machine. In IDLE no write session exists and
// searching is allowed. The first staged mutation opens a write session
// and moves to PENDING, where search is rejected: a read session cannot
// see uncommitted writes, so answering queries would silently ignore
// the staged changes. Commit or rollback returns to IDLE.
package shell

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	dexerrors "github.com/filedex/filedex/internal/errors"
	"github.com/filedex/filedex/internal/output"
	"github.com/filedex/filedex/internal/session"
)

const helpText = `Commands:
  help             Show this help message
  list             List indexed files with their stored state
  add <path>       Index a file, or refresh it if already indexed
  remove <path>    Remove a file from the index
  clear            Remove all files from the index
  commit           Commit pending changes
  rollback         Undo pending changes
  search <query>   Search file contents
  exit             Exit the program`

// Shell routes commands and enforces the pending-changes rule. It holds
// at most one open write session.
type Shell struct {
	mgr     *session.Manager
	results io.Writer
	diag    *output.Writer
	log     *slog.Logger

	pending *session.WriteSession
}

// New creates a shell writing structured results to results and
// diagnostics to diag.
func New(mgr *session.Manager, results io.Writer, diag io.Writer, log *slog.Logger) *Shell {
	return &Shell{
		mgr:     mgr,
		results: results,
		diag:    output.New(diag),
		log:     log,
	}
}

// Run reads commands line by line until exit or end of input. A write
// session left pending at the end is rolled back.
func (s *Shell) Run(in io.Reader) error {
	s.diag.Line(helpText)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		name, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		s.log.Debug("shell_command", slog.String("name", name))

		if !s.handle(name, arg) {
			return nil
		}
	}

	// End of input without an explicit exit
	s.discardPending()
	return scanner.Err()
}

// handle dispatches one command. Returns false to terminate the loop.
func (s *Shell) handle(name, arg string) bool {
	switch {
	case name == "help" && arg == "":
		s.diag.Line(helpText)
	case name == "list" && arg == "":
		s.handleList()
	case name == "clear" && arg == "":
		s.handleMutation("clear", func(ws *session.WriteSession) error {
			return ws.Clear()
		})
	case name == "commit" && arg == "":
		s.handleCommit()
	case name == "rollback" && arg == "":
		s.handleRollback()
	case name == "exit" && arg == "":
		s.discardPending()
		return false
	case name == "add" && arg != "":
		path, ok := s.resolveFilePath(arg)
		if !ok {
			return true
		}
		s.handleMutation("add", func(ws *session.WriteSession) error {
			return ws.Add(path)
		})
	case name == "remove" && arg != "":
		s.handleMutation("remove", func(ws *session.WriteSession) error {
			return ws.Remove(resolvePath(arg))
		})
	case name == "search" && arg != "":
		s.handleSearch(arg)
	default:
		s.diag.Errorf("unknown command: %s", strings.TrimSpace(name+" "+arg))
		s.diag.Line("Type 'help' to see available commands.")
	}

	return true
}

// handleMutation routes a staging operation to the open write session,
// opening one if the shell is idle. A failed operation is reported and
// aborts only itself; the session stays open for further use.
func (s *Shell) handleMutation(op string, fn func(*session.WriteSession) error) {
	if s.pending == nil {
		ws, err := s.mgr.OpenWrite()
		if err != nil {
			s.diag.Errorf("unable to start write session: %v", err)
			return
		}
		s.pending = ws
	}

	if err := fn(s.pending); err != nil {
		s.log.Warn("shell_mutation_failed", slog.String("op", op), slog.String("error", err.Error()))
		s.diag.Errorf("failed to %s: %v", op, err)
	}
}

// handleCommit persists pending changes. The session is consumed whether
// or not the commit succeeds; a failed commit is not retryable.
func (s *Shell) handleCommit() {
	if s.pending == nil {
		s.diag.Notice("No changes to commit")
		return
	}

	err := s.pending.Commit()
	s.pending = nil
	if err != nil {
		s.diag.Errorf("failed to commit: %v", err)
	}
}

// handleRollback discards pending changes, consuming the session.
func (s *Shell) handleRollback() {
	if s.pending == nil {
		s.diag.Notice("No changes to rollback")
		return
	}

	err := s.pending.Rollback()
	s.pending = nil
	if err != nil {
		s.diag.Errorf("failed to rollback: %v", err)
	}
}

// handleList emits every stored file state as a one-line JSON array.
func (s *Shell) handleList() {
	rs, err := s.mgr.OpenRead()
	if err != nil {
		s.diag.Errorf("unable to start read session: %v", err)
		return
	}
	defer func() { _ = rs.Close() }()

	entries, err := rs.List()
	if err != nil {
		s.diag.Errorf("failed to list documents: %v", err)
		return
	}

	s.emitJSON(entries)
}

// handleSearch runs a query, permitted only while no changes are pending.
func (s *Shell) handleSearch(query string) {
	if s.pending != nil {
		s.diag.Error("you have uncommitted changes; commit or rollback before searching")
		return
	}

	rs, err := s.mgr.OpenRead()
	if err != nil {
		s.diag.Errorf("unable to start read session: %v", err)
		return
	}
	defer func() { _ = rs.Close() }()

	hits, err := rs.Search(query, s.mgr.SearchLimit())
	if err != nil {
		s.diag.Errorf("failed to search documents: %v", err)
		return
	}

	s.emitJSON(hits)
}

// emitJSON writes v as a single line on the results stream.
func (s *Shell) emitJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.diag.Errorf("cannot serialize result: %v", err)
		return
	}
	_, _ = s.results.Write(append(data, '\n'))
}

// discardPending rolls back an open write session, if any.
func (s *Shell) discardPending() {
	if s.pending == nil {
		return
	}
	if err := s.pending.Rollback(); err != nil {
		s.diag.Errorf("failed to rollback: %v", err)
	}
	s.pending = nil
}

// resolveFilePath validates that the argument names an existing regular
// file and returns its canonical form. Failures are reported and nothing
// is staged.
func (s *Shell) resolveFilePath(arg string) (string, bool) {
	info, err := os.Stat(arg)
	if err != nil {
		s.diag.Errorf("%v", dexerrors.IOError(
			fmt.Sprintf("failed to access file '%s': %v", arg, err), err))
		return "", false
	}
	if !info.Mode().IsRegular() {
		s.diag.Errorf("%v", dexerrors.New(dexerrors.ErrCodeNotAFile,
			fmt.Sprintf("the path '%s' is not a file", arg), nil))
		return "", false
	}
	return resolvePath(arg), true
}

// resolvePath canonicalizes a path argument so the same file always maps
// to the same index key. Remove accepts paths that no longer exist on
// disk, so this never touches the filesystem.
func resolvePath(arg string) string {
	if abs, err := filepath.Abs(arg); err == nil {
		return abs
	}
	return arg
}
