package regions

import (
	"errors"
	"fmt"
	"strings"

	"voxeledit.ai/internal/sim/world/kernel/model"
)

var (
	ErrNotFound        = errors.New("snapshot not found")
	ErrPrimitiveFailed = errors.New("storage primitive failed")
	ErrReservedName    = errors.New("snapshot name is reserved")
)

// ChunkFailure is one primitive call that failed.
type ChunkFailure struct {
	ID     string
	Offset model.Vec3i
	Err    error
}

func (f ChunkFailure) String() string { return fmt.Sprintf("%s: %v", f.ID, f.Err) }

// CaptureError reports a failed Save. Every chunk captured before the failure has
// already been removed again; RollbackFailures lists removals the primitive refused.
type CaptureError struct {
	Name             string
	Failure          ChunkFailure
	Captured         int
	RollbackFailures []ChunkFailure
}

func (e *CaptureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "capture %q: %s", e.Name, e.Failure)
	if e.Captured > 0 {
		fmt.Fprintf(&b, " (rolled back %d chunks", e.Captured)
		if n := len(e.RollbackFailures); n > 0 {
			fmt.Fprintf(&b, ", %d removals failed", n)
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *CaptureError) Unwrap() []error { return []error{ErrPrimitiveFailed, e.Failure.Err} }

// RestoreError reports a failed Load.
type RestoreError struct {
	Name     string
	NotFound bool
	Restored int
	Failures []ChunkFailure
}

func (e *RestoreError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("load %q: %v", e.Name, ErrNotFound)
	}
	return fmt.Sprintf("load %q: %d of %d restores failed: %s", e.Name, len(e.Failures), len(e.Failures)+e.Restored, joinFailures(e.Failures))
}

func (e *RestoreError) Unwrap() []error {
	if e.NotFound {
		return []error{ErrNotFound}
	}
	out := []error{ErrPrimitiveFailed}
	for _, f := range e.Failures {
		out = append(out, f.Err)
	}
	return out
}

// DeleteError reports chunks the primitive refused to remove. The metadata entry is gone
// regardless.
type DeleteError struct {
	Name     string
	Failures []ChunkFailure
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete %q: %d removals failed: %s", e.Name, len(e.Failures), joinFailures(e.Failures))
}

func (e *DeleteError) Unwrap() []error {
	out := []error{ErrPrimitiveFailed}
	for _, f := range e.Failures {
		out = append(out, f.Err)
	}
	return out
}

func joinFailures(fs []ChunkFailure) string {
	parts := make([]string, 0, len(fs))
	for _, f := range fs {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, "; ")
}
