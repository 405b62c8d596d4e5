package gym

import (
	"context"
	"sync"
)

// Draft is the ephemeral state behind a create/edit form.
type Draft interface {
	// Validate reports problems that must be fixed before submission.
	Validate() error
}

// FormState enumerates the form lifecycle.
type FormState int

const (
	FormClosed FormState = iota
	FormOpen
	FormSubmitting
)

func (s FormState) String() string {
	switch s {
	case FormOpen:
		return "open"
	case FormSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

// SubmitFunc sends a normalized draft to the backend.
type SubmitFunc[D Draft] func(ctx context.Context, draft D) error

// Form drives a draft through Closed -> Open -> Submitting -> Closed. Submit is
// non-reentrant: while a submission is in flight every further Submit returns
// ErrSubmitInProgress without reaching the backend.
type Form[D Draft] struct {
	name      string
	submit    SubmitFunc[D]
	telemetry Telemetry

	mu      sync.Mutex
	state   FormState
	draft   D
	lastErr error
}

// NewForm builds a closed form. name is used for telemetry events.
func NewForm[D Draft](name string, submit SubmitFunc[D], telemetry Telemetry) *Form[D] {
	return &Form[D]{
		name:      name,
		submit:    submit,
		telemetry: normalizeTelemetry(telemetry),
	}
}

// Open seeds the form with draft. Reopening an open form replaces its draft.
func (f *Form[D]) Open(draft D) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return ErrFormBusy
	}
	f.state = FormOpen
	f.draft = draft
	f.lastErr = nil
	return nil
}

// Update applies fn to the draft. A failing fn leaves the draft untouched.
func (f *Form[D]) Update(fn func(*D) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case FormClosed:
		return ErrFormClosed
	case FormSubmitting:
		return ErrFormBusy
	}
	next := f.draft
	if err := fn(&next); err != nil {
		return err
	}
	f.draft = next
	return nil
}

// Cancel discards the draft and closes the form.
func (f *Form[D]) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return ErrFormBusy
	}
	f.reset()
	return nil
}

// Submit validates the draft and hands it to the submit function. Validation
// failures keep the form open. A backend failure returns the form to Open with
// the draft preserved; success clears the draft and closes the form.
func (f *Form[D]) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch f.state {
	case FormSubmitting:
		f.mu.Unlock()
		return ErrSubmitInProgress
	case FormClosed:
		f.mu.Unlock()
		return ErrFormClosed
	}
	if err := f.draft.Validate(); err != nil {
		f.lastErr = err
		f.mu.Unlock()
		return err
	}
	f.state = FormSubmitting
	draft := f.draft
	f.mu.Unlock()

	err := f.submit(ctx, draft)

	f.mu.Lock()
	if err != nil {
		f.state = FormOpen
		f.lastErr = err
	} else {
		f.reset()
	}
	f.mu.Unlock()

	payload := map[string]any{"form": f.name}
	if err != nil {
		payload["error"] = err.Error()
		f.telemetry.Record(ctx, "gym.form.submit_failed", payload)
		return err
	}
	f.telemetry.Record(ctx, "gym.form.submitted", payload)
	return nil
}

// State returns the current lifecycle state.
func (f *Form[D]) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns a copy of the current draft and whether the form holds one.
func (f *Form[D]) Draft() (D, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft, f.state != FormClosed
}

// Err returns the last validation or submission error, if any.
func (f *Form[D]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Form[D]) reset() {
	var zero D
	f.draft = zero
	f.state = FormClosed
	f.lastErr = nil
}
