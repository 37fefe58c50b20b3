// Package planner decides and applies renames for entries yielded by the
// walker. Each entry moves through a small state machine: evaluate the
// name, resolve conflicts against the directory's sibling set, then apply
// the move (or only log it in safe mode). A failed move is an entry-level
// outcome, never a run abort.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"davtidy/pkg/journal"
	"davtidy/pkg/sanitizer"
	"davtidy/pkg/webdav"
)

// Action classifies what was decided for an entry.
type Action string

const (
	ActionSkip              Action = "skip"
	ActionRename            Action = "rename"
	ActionRenameWithSuffix  Action = "rename-with-suffix"
	ActionConflictOverwrite Action = "conflict-overwrite"
)

// Outcome classifies how the decision ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Decision records the evaluation of one entry.
type Decision struct {
	OriginalPath string
	OriginalName string
	ProposedName string // sanitized name before conflict resolution
	FinalName    string
	NewPath      string // empty when no rename was needed
	IsDir        bool
	Action       Action
	Outcome      Outcome
	Err          error
}

// Result aggregates decisions for a whole run.
type Result struct {
	Decisions      []Decision
	TotalEntries   int
	RenamedCount   int // applied renames; in safe mode, planned renames
	CompliantCount int
	ConflictCount  int
	ErrorCount     int
}

// Options configure a Planner.
type Options struct {
	Substitute rune
	SafeMode   bool
	Overwrite  bool
	Logger     *slog.Logger
	Journal    *journal.Writer // nil disables journaling
}

// Planner implements the walker visit contract.
type Planner struct {
	mover  webdav.Mover
	opts   Options
	result Result
}

// New creates a Planner applying moves through mover.
func New(mover webdav.Mover, opts Options) *Planner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Substitute == 0 {
		opts.Substitute = sanitizer.DefaultSubstitute
	}
	return &Planner{mover: mover, opts: opts}
}

// ProcessEntry evaluates one entry and returns its authoritative name
// afterwards: the new name when a rename was applied, the current name
// otherwise (safe mode, failure). The returned error is reserved for
// fatal conditions; rename failures are recorded in the Result.
func (p *Planner) ProcessEntry(ctx context.Context, entry webdav.Entry, siblings *sanitizer.SiblingSet) (string, error) {
	d := Decision{
		OriginalPath: entry.Path,
		OriginalName: entry.Name,
		IsDir:        entry.IsDir,
	}

	res := sanitizer.Sanitize(entry.Name, p.opts.Substitute)
	if res.Valid {
		d.Action = ActionSkip
		d.Outcome = OutcomeSkipped
		d.FinalName = entry.Name
		p.opts.Logger.Debug("already compliant", "path", entry.Path)
		p.record(d)
		return entry.Name, nil
	}
	d.ProposedName = res.Name

	finalName, conflicted := sanitizer.Resolve(res.Name, siblings, entry.IsDir, p.opts.Overwrite)
	d.FinalName = finalName
	d.NewPath = path.Join(entry.ParentPath, finalName)
	switch {
	case conflicted && p.opts.Overwrite:
		d.Action = ActionConflictOverwrite
	case conflicted:
		d.Action = ActionRenameWithSuffix
	default:
		d.Action = ActionRename
	}

	// Claim the final name immediately, in safe mode too, so later
	// siblings in this directory see the reservation.
	siblings.Add(finalName)

	if p.opts.SafeMode {
		d.Outcome = OutcomeSkipped
		p.opts.Logger.Info("would rename",
			"from", entry.Path, "to", d.NewPath, "action", string(d.Action))
		p.record(d)
		// The remote was not touched; the entry still lives under its
		// original name.
		return entry.Name, nil
	}

	if err := p.journalIntent(d); err != nil {
		return "", err
	}

	if err := p.mover.Move(ctx, entry.Path, d.NewPath, p.opts.Overwrite); err != nil {
		d.Outcome = OutcomeFailed
		d.Err = err
		p.opts.Logger.Error("rename failed",
			"from", entry.Path, "to", d.NewPath, "error", err)
		p.record(d)
		return entry.Name, nil
	}

	if err := p.journalConfirm(d); err != nil {
		return "", err
	}

	d.Outcome = OutcomeSuccess
	p.opts.Logger.Info("renamed",
		"from", entry.Path, "to", d.NewPath, "action", string(d.Action))
	p.record(d)
	return finalName, nil
}

// Result returns the accumulated decisions and counters.
func (p *Planner) Result() Result {
	return p.result
}

func (p *Planner) record(d Decision) {
	p.result.Decisions = append(p.result.Decisions, d)
	p.result.TotalEntries++

	switch {
	case d.Outcome == OutcomeFailed:
		p.result.ErrorCount++
	case d.Action == ActionSkip:
		p.result.CompliantCount++
	default:
		// Applied, or planned in safe mode.
		p.result.RenamedCount++
	}
	if d.Action == ActionRenameWithSuffix || d.Action == ActionConflictOverwrite {
		p.result.ConflictCount++
	}
}

// Journal failures are fatal: continuing without an audit trail would make
// the run impossible to undo or reason about afterwards.
func (p *Planner) journalIntent(d Decision) error {
	if p.opts.Journal == nil {
		return nil
	}
	err := p.opts.Journal.Log(journal.Entry{
		Type:      journal.TypeRename,
		Source:    d.OriginalPath,
		Dest:      d.NewPath,
		Overwrite: p.opts.Overwrite,
	})
	if err != nil {
		return fmt.Errorf("journal intent for %s: %w", d.OriginalPath, err)
	}
	return nil
}

func (p *Planner) journalConfirm(d Decision) error {
	if p.opts.Journal == nil {
		return nil
	}
	err := p.opts.Journal.Log(journal.Entry{
		Type:      journal.TypeRename,
		Source:    d.OriginalPath,
		Dest:      d.NewPath,
		Overwrite: p.opts.Overwrite,
		Success:   true,
	})
	if err != nil {
		return fmt.Errorf("journal confirm for %s: %w", d.OriginalPath, err)
	}
	return nil
}
