package gym

import "errors"

var (
	// ErrSubmitInProgress is returned when Submit is called while a previous
	// submission has not completed.
	ErrSubmitInProgress = errors.New("gym: submit already in progress")
	// ErrFormClosed is returned for operations that require an open form.
	ErrFormClosed = errors.New("gym: form is not open")
	// ErrFormBusy is returned when a draft is edited, reopened, or cancelled
	// while it is being submitted.
	ErrFormBusy = errors.New("gym: form is submitting")
	// ErrUnknownTrainer is returned when a trainer id is not in the catalog.
	ErrUnknownTrainer = errors.New("gym: unknown trainer")
	// ErrUnknownPlan is returned when a plan id is not in the catalog.
	ErrUnknownPlan = errors.New("gym: unknown plan")

	// ErrMissingID is returned when a mutation is asked to act on a blank id.
	ErrMissingID = errors.New("gym: id is required")

	errMissingBackend = errors.New("gym: backend not configured")
)
