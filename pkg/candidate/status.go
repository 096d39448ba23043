package candidate

import "errors"

// ErrBadTransition is returned when a status change is not allowed.
var ErrBadTransition = errors.New("illegal status transition")

// CanTransitionTo reports whether the parse status may move to next.
// Re-parsing a resume resets any state back to PARSED; a status may always
// re-enter itself.
func (s Status) CanTransitionTo(next Status) bool {
	if next == StatusParsed || next == s {
		return true
	}
	switch s {
	case StatusParsed:
		return next == StatusValidated || next == StatusNeedsReview || next == StatusManualEntry
	case StatusNeedsReview, StatusManualEntry:
		return next == StatusValidated
	}
	return false
}

// CanTransitionTo reports whether the document workflow may move to next.
// REQUESTED → REQUESTED covers reminder e-mails; SUBMITTED → REQUESTED covers
// a rejected document that must be resubmitted.
func (d DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch d {
	case DocsNotRequested:
		return next == DocsRequested || next == DocsSubmitted
	case DocsRequested:
		return next == DocsRequested || next == DocsSubmitted
	case DocsSubmitted:
		return next == DocsVerified || next == DocsRequested
	case DocsVerified:
		return false
	}
	return false
}

// TransitionDocuments applies a document workflow transition or fails with
// ErrBadTransition.
func (c *Candidate) TransitionDocuments(next DocumentStatus) error {
	if !c.DocumentStatus.CanTransitionTo(next) {
		return ErrBadTransition
	}
	c.DocumentStatus = next
	return nil
}
