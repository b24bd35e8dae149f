package curation

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies run failures.
type Kind int

const (
	// SourceUnavailable: a category call to the recommendation source failed,
	// or the catalog cache could not be read.
	SourceUnavailable Kind = iota + 1
	// EmptyCatalog: the profile's selected libraries hold no cached items.
	EmptyCatalog
	// MalformedCandidate: one payload element was unusable. Logged and
	// counted, never returned from a run.
	MalformedCandidate
	// PersistenceFailure: reading or committing local state failed.
	PersistenceFailure
)

func (k Kind) String() string {
	switch k {
	case SourceUnavailable:
		return "source_unavailable"
	case EmptyCatalog:
		return "empty_catalog"
	case MalformedCandidate:
		return "malformed_candidate"
	case PersistenceFailure:
		return "persistence_failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching on Kind.
var (
	ErrSourceUnavailable  = &Error{Kind: SourceUnavailable}
	ErrEmptyCatalog       = &Error{Kind: EmptyCatalog}
	ErrMalformedCandidate = &Error{Kind: MalformedCandidate}
	ErrPersistenceFailure = &Error{Kind: PersistenceFailure}
)

// ErrBusy is returned when another process holds the profile's curation lock.
var ErrBusy = errors.New("curation already running for profile")

// Error is a failed run.
type Error struct {
	Kind     Kind
	Stage    Stage
	Category string // set for SourceUnavailable
	Source   string // failing upstream: a recommendation source name or CatalogSource
	Err      error
}

// CatalogSource names the local catalog cache as the failing upstream.
const CatalogSource = "catalog"

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "curation %s during %s", e.Kind, e.Stage)
	if e.Category != "" {
		fmt.Fprintf(&b, " (category %s)", e.Category)
	}
	if e.Source != "" {
		fmt.Fprintf(&b, " from %s", e.Source)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of a run error, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
