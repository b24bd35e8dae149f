package curation

// Stage is a state of the curation state machine.
type Stage int

const (
	StageIdle Stage = iota
	StageFetchingCandidates
	StageMatching
	StagePersisting
	StageSelectingFeatured
	StageUpdatingProfile
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageFetchingCandidates:
		return "fetching_candidates"
	case StageMatching:
		return "matching"
	case StagePersisting:
		return "persisting"
	case StageSelectingFeatured:
		return "selecting_featured"
	case StageUpdatingProfile:
		return "updating_profile"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run has ended.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// Observer receives every stage transition of a run.
type Observer func(profileID string, stage Stage)

// FailurePolicy decides what a failed category call does to the run.
type FailurePolicy int

const (
	// FailFast fails the run on the first category error and discards the rest.
	FailFast FailurePolicy = iota
	// BestEffort keeps successful categories and fails only when all failed.
	BestEffort
)

func (p FailurePolicy) String() string {
	if p == BestEffort {
		return "best_effort"
	}
	return "fail_fast"
}

// ParseFailurePolicy maps the config value to a policy. Unknown values are fail-fast.
func ParseFailurePolicy(s string) FailurePolicy {
	if s == "best_effort" {
		return BestEffort
	}
	return FailFast
}
