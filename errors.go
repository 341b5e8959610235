package nthm

import "fmt"

// Kind is the closed set of error kinds nthm operations report.
type Kind int

const (
	// KindNone is the zero Kind; it is never returned from an operation.
	KindNone Kind = iota
	// KindUnmanaged indicates the operation requires a managed context,
	// and the caller has none bound.
	KindUnmanaged
	// KindNotDrain indicates the caller is not the drain of the given
	// pipe, in its current scope.
	KindNotDrain
	// KindNullPipe indicates a nil pipe was passed where one was required.
	KindNullPipe
	// KindInvalidPipe indicates a pipe whose identity tag does not match
	// a live pipe (already retired, or never valid).
	KindInvalidPipe
	// KindKilled indicates the operation was interrupted because the
	// caller's own pipe (or an ancestor drain) was killed while blocked.
	KindKilled
	// KindScopeUnderflow indicates ExitScope was called with no matching
	// EnterScope.
	KindScopeUnderflow
	// KindScopeNotExited is a non-fatal warning: a scope was left (by
	// exit or by a worker yielding) with live descendants still tethered.
	KindScopeNotExited
	// KindInternal indicates a coordination primitive failed, or an
	// invariant the pipe-list/pool/plumbing modules maintain was
	// violated; Site identifies the code site that detected it.
	KindInternal
	// KindSystem wraps an error surfaced unchanged from the Go runtime or
	// OS (the POSIX ENOMEM/EAGAIN pass-through case).
	KindSystem
)

// String renders the kind using the short names spec'd for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindUnmanaged:
		return "UNMANAGED"
	case KindNotDrain:
		return "NOT-DRAIN"
	case KindNullPipe:
		return "NULL-PIPE"
	case KindInvalidPipe:
		return "INVALID-PIPE"
	case KindKilled:
		return "KILLED"
	case KindScopeUnderflow:
		return "SCOPE-UNDERFLOW"
	case KindScopeNotExited:
		return "SCOPE-NOT-EXITED"
	case KindInternal:
		return "INTERNAL"
	case KindSystem:
		return "SYSTEM"
	default:
		return "NONE"
	}
}

// Error is the error type returned by every nthm operation. Compare kinds
// with errors.Is against the Err* sentinels, or a literal &Error{Kind: ...}.
type Error struct {
	Kind  Kind
	Site  string
	Cause error
}

func (e *Error) Error() string {
	switch {
	case e.Site != "":
		return fmt.Sprintf("nthm: %s at %s", e.Kind, e.Site)
	case e.Cause != nil:
		return fmt.Sprintf("nthm: %s: %v", e.Kind, e.Cause)
	default:
		return fmt.Sprintf("nthm: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports equality by Kind, so errors.Is(err, nthm.ErrKilled) works
// regardless of Site/Cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func internalError(site string, cause error) *Error {
	return &Error{Kind: KindInternal, Site: site, Cause: cause}
}

// ErrorToString renders kind as the short diagnostic string used in logs
// and the error ledger; it never fails and covers every Kind, including
// KindInternal (whose Site is not part of this rendering - use Error.Error
// for the full detail).
func ErrorToString(kind Kind) string {
	return kind.String()
}

// Sentinel errors for use with errors.Is, one per Kind except KindNone,
// KindInternal and KindSystem.
var (
	ErrUnmanaged      = &Error{Kind: KindUnmanaged}
	ErrNotDrain       = &Error{Kind: KindNotDrain}
	ErrNullPipe       = &Error{Kind: KindNullPipe}
	ErrInvalidPipe    = &Error{Kind: KindInvalidPipe}
	ErrKilled         = &Error{Kind: KindKilled}
	ErrScopeUnderflow = &Error{Kind: KindScopeUnderflow}
	ErrScopeNotExited = &Error{Kind: KindScopeNotExited}
)
