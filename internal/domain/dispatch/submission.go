package dispatch

import (
	"fmt"
	"time"

	"github.com/logistics/console/internal/domain/shared"
)

// SubmissionStatus is the state of a dispatch form submission
type SubmissionStatus string

const (
	SubmissionIdle       SubmissionStatus = "IDLE"
	SubmissionSubmitting SubmissionStatus = "SUBMITTING"
	SubmissionSucceeded  SubmissionStatus = "SUCCEEDED"
	SubmissionFailed     SubmissionStatus = "FAILED"
)

// Notification texts
const (
	MsgDispatchCreated = "Dispatch created successfully"
	MsgDispatchFailed  = "Failed to create dispatch"
)

// IsValid checks if the status is a valid SubmissionStatus
func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionIdle, SubmissionSubmitting, SubmissionSucceeded, SubmissionFailed:
		return true
	}
	return false
}

// String returns the string representation of SubmissionStatus
func (s SubmissionStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the submission has an outcome waiting to be surfaced
func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionSucceeded || s == SubmissionFailed
}

// CanTransitionTo checks if the status can transition to the target status
func (s SubmissionStatus) CanTransitionTo(target SubmissionStatus) bool {
	switch s {
	case SubmissionIdle:
		return target == SubmissionSubmitting
	case SubmissionSubmitting:
		return target == SubmissionSucceeded || target == SubmissionFailed
	case SubmissionSucceeded, SubmissionFailed:
		return target == SubmissionIdle
	}
	return false
}

// Submission tracks one pass of the dispatch form through
// Idle -> Submitting -> {Succeeded, Failed} -> Idle.
// A Submission is owned by a single request and is not safe for concurrent use.
type Submission struct {
	Status      SubmissionStatus
	Form        Form
	Response    *Response
	Err         error
	StartedAt   time.Time
	CompletedAt time.Time
}

// NewSubmission creates an idle submission for the given form values
func NewSubmission(form Form) *Submission {
	return &Submission{Status: SubmissionIdle, Form: form}
}

func (s *Submission) transition(target SubmissionStatus) error {
	if !s.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move submission from %s to %s", s.Status, target))
	}
	s.Status = target
	return nil
}

// Begin moves an idle submission to Submitting
func (s *Submission) Begin() error {
	if err := s.transition(SubmissionSubmitting); err != nil {
		return err
	}
	s.StartedAt = time.Now()
	return nil
}

// Succeed records the backend response
func (s *Submission) Succeed(resp Response) error {
	if err := s.transition(SubmissionSucceeded); err != nil {
		return err
	}
	s.Response = &resp
	s.CompletedAt = time.Now()
	return nil
}

// Fail records the failure cause. The form values are kept for resubmission.
func (s *Submission) Fail(cause error) error {
	if err := s.transition(SubmissionFailed); err != nil {
		return err
	}
	s.Err = cause
	s.CompletedAt = time.Now()
	return nil
}

// Acknowledge surfaces the outcome as a notice and returns the submission to Idle
func (s *Submission) Acknowledge() (shared.Notice, error) {
	if !s.Status.IsTerminal() {
		return shared.Notice{}, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Submission in %s has no outcome to acknowledge", s.Status))
	}
	notice := shared.SuccessNotice(MsgDispatchCreated)
	if s.Status == SubmissionFailed {
		notice = shared.ErrorNotice(MsgDispatchFailed)
	}
	if err := s.transition(SubmissionIdle); err != nil {
		return shared.Notice{}, err
	}
	return notice, nil
}

// Elapsed returns how long the backend call took
func (s *Submission) Elapsed() time.Duration {
	if s.CompletedAt.IsZero() {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}
