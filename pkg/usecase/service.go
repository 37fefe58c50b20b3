// Package usecase provides application-level orchestration for CLI
// workflows without Cobra dependencies: fatal setup checks, then the
// walker/planner run, then aggregation.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"davtidy/pkg/credentials"
	"davtidy/pkg/journal"
	"davtidy/pkg/planner"
	"davtidy/pkg/progress"
	"davtidy/pkg/sanitizer"
	"davtidy/pkg/walker"
	"davtidy/pkg/webdav"
)

// ProgressCallback receives workflow stage progress updates.
type ProgressCallback = progress.Callback

// Options configure a Service.
type Options struct {
	Client webdav.Client
	Logger *slog.Logger
}

// Service orchestrates command workflows.
type Service struct {
	client webdav.Client
	logger *slog.Logger
}

// New creates a use-case service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: opts.Client, logger: logger}
}

// SanitizeRequest contains inputs for the sanitize workflow.
type SanitizeRequest struct {
	Root            string
	SafeMode        bool
	Overwrite       bool
	Substitute      rune
	JournalPath     string // empty disables the journal; ignored in safe mode
	SkipOnListError bool   // continue past unlistable subtrees instead of aborting
	OnProgress      ProgressCallback
}

// SanitizeExecution contains sanitize workflow outputs.
type SanitizeExecution struct {
	Root        string
	Result      planner.Result
	Duration    time.Duration
	JournalPath string
}

// RunSanitize walks the tree under req.Root and renames non-compliant
// entries. Setup failures (invalid substitute, unreachable root) are
// returned as errors before anything remote is mutated; per-entry rename
// failures are recorded in the Result.
func (s *Service) RunSanitize(ctx context.Context, req SanitizeRequest) (SanitizeExecution, error) {
	start := time.Now()

	if req.Substitute == 0 {
		req.Substitute = sanitizer.DefaultSubstitute
	}
	if err := sanitizer.ValidateSubstitute(req.Substitute); err != nil {
		return SanitizeExecution{}, err
	}

	root := path.Clean("/" + strings.TrimSpace(req.Root))
	rootInfo, err := s.client.Stat(ctx, root)
	if err != nil {
		return SanitizeExecution{}, fmt.Errorf("root directory %s is unreachable: %w", root, err)
	}
	if !rootInfo.IsDir {
		return SanitizeExecution{}, fmt.Errorf("root %s is not a directory", root)
	}

	var jw *journal.Writer
	journalPath := ""
	if req.JournalPath != "" && !req.SafeMode {
		jw, err = journal.NewWriter(req.JournalPath)
		if err != nil {
			return SanitizeExecution{}, err
		}
		defer jw.Close()
		journalPath = req.JournalPath
	}

	pl := planner.New(s.client, planner.Options{
		Substitute: req.Substitute,
		SafeMode:   req.SafeMode,
		Overwrite:  req.Overwrite,
		Logger:     s.logger,
		Journal:    jw,
	})

	var onListError walker.ListErrorFunc
	if req.SkipOnListError {
		onListError = func(dir string, listErr error) error {
			s.logger.Warn("skipping unlistable directory", "dir", dir, "error", listErr)
			return nil
		}
	}

	visited := 0
	visit := func(ctx context.Context, e webdav.Entry, siblings *sanitizer.SiblingSet) (string, error) {
		name, visitErr := pl.ProcessEntry(ctx, e, siblings)
		visited++
		progress.Emit(req.OnProgress, "sanitizing", visited, 0)
		return name, visitErr
	}

	s.logger.Info("starting sanitize run",
		"root", root, "safe_mode", req.SafeMode, "overwrite", req.Overwrite,
		"substitute", string(req.Substitute))

	if err := walker.New(s.client, onListError).Walk(ctx, root, visit); err != nil {
		return SanitizeExecution{}, err
	}

	result := pl.Result()
	s.logger.Info("sanitize run complete",
		"entries", result.TotalEntries, "renamed", result.RenamedCount,
		"compliant", result.CompliantCount, "conflicts", result.ConflictCount,
		"errors", result.ErrorCount)

	return SanitizeExecution{
		Root:        root,
		Result:      result,
		Duration:    time.Since(start),
		JournalPath: journalPath,
	}, nil
}

// InitRequest contains inputs for the one-shot setup flow.
type InitRequest struct {
	Service  string
	Username string
	Secret   string
}

// RunInit stores the secret in the credential store and verifies the
// connection by listing the server root. The store mutation happens before
// the probe so a failed probe still leaves the secret in place for
// debugging with --verbose.
func (s *Service) RunInit(ctx context.Context, store credentials.Store, req InitRequest) error {
	if err := store.Set(req.Service, req.Username, req.Secret); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	if _, err := s.client.List(ctx, "/"); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	s.logger.Info("connection successful, credentials stored",
		"service", req.Service, "username", req.Username)
	return nil
}

// UndoRequest contains inputs for the undo workflow.
type UndoRequest struct {
	JournalPath string
	SafeMode    bool
	OnProgress  ProgressCallback
}

// UndoExecution contains undo workflow outputs.
type UndoExecution struct {
	Total    int // confirmed renames found in the journal
	Reverted int
	Failed   int
	Duration time.Duration
}

// RunUndo replays the journal's confirmed renames in reverse, moving each
// destination back to its source. Like the forward run, individual move
// failures are logged and counted, not fatal.
func (s *Service) RunUndo(ctx context.Context, req UndoRequest) (UndoExecution, error) {
	start := time.Now()

	entries, err := journal.NewReader(req.JournalPath).ConfirmedReverse()
	if err != nil {
		return UndoExecution{}, err
	}

	exec := UndoExecution{Total: len(entries)}
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return exec, err
		}

		if req.SafeMode {
			s.logger.Info("would revert", "from", e.Dest, "to", e.Source)
			progress.Emit(req.OnProgress, "undo", i+1, len(entries))
			continue
		}

		if err := s.client.Move(ctx, e.Dest, e.Source, false); err != nil {
			exec.Failed++
			s.logger.Error("revert failed", "from", e.Dest, "to", e.Source, "error", err)
		} else {
			exec.Reverted++
			s.logger.Info("reverted", "from", e.Dest, "to", e.Source)
		}
		progress.Emit(req.OnProgress, "undo", i+1, len(entries))
	}

	exec.Duration = time.Since(start)
	return exec, nil
}
