package gym

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// TrainerDraft is the create/edit form for a trainer.
type TrainerDraft struct {
	ID             string          `json:"-"`
	FullName       string          `json:"fullName" validate:"required"`
	Gender         string          `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Phone          string          `json:"phone" validate:"required"`
	Email          string          `json:"email" validate:"omitempty,email"`
	Specialization []string        `json:"specialization"`
	Experience     int             `json:"experience" validate:"gte=0"`
	Price          decimal.Decimal `json:"price"`
	Salary         decimal.Decimal `json:"salary"`
}

// NewTrainerDraft returns the blank trainer form.
func NewTrainerDraft() TrainerDraft {
	return TrainerDraft{Gender: "Male"}
}

// TrainerDraftFrom seeds an edit draft from an existing trainer.
func TrainerDraftFrom(t Trainer) TrainerDraft {
	return TrainerDraft{
		ID:             t.ID,
		FullName:       t.FullName,
		Gender:         t.Gender,
		Phone:          t.Phone,
		Email:          t.Email,
		Specialization: slices.Clone(t.Specialization),
		Experience:     t.Experience,
		Price:          decimal.NewFromFloat(t.Price),
		Salary:         decimal.NewFromFloat(t.Salary),
	}
}

// Editing reports whether the draft updates an existing trainer.
func (d TrainerDraft) Editing() bool { return d.ID != "" }

// ToggleSpecialization adds or removes a specialization tag.
func (d *TrainerDraft) ToggleSpecialization(tag string) {
	if i := slices.Index(d.Specialization, tag); i >= 0 {
		d.Specialization = slices.Delete(slices.Clone(d.Specialization), i, i+1)
		return
	}
	d.Specialization = append(slices.Clone(d.Specialization), tag)
}

// Validate implements Draft.
func (d TrainerDraft) Validate() error {
	verr := &ValidationError{}
	if err := validateStruct(d, verr); err != nil {
		return err
	}
	if d.Price.IsNegative() {
		verr.Add("price", "must be at least 0")
	}
	if d.Salary.IsNegative() {
		verr.Add("salary", "must be at least 0")
	}
	for _, tag := range d.Specialization {
		if !slices.Contains(Specializations, tag) {
			verr.Add("specialization", "must be one of "+strings.Join(Specializations, ", "))
			break
		}
	}
	return verr.orNil()
}

// TrainerPayload is the normalized trainer snapshot.
type TrainerPayload struct {
	FullName       string   `json:"fullName"`
	Gender         string   `json:"gender,omitempty"`
	Phone          string   `json:"phone"`
	Email          *string  `json:"email"`
	Specialization []string `json:"specialization"`
	Experience     int      `json:"experience"`
	Price          float64  `json:"price"`
	Salary         *float64 `json:"salary"`
}

// Payload normalizes the draft. A zero salary is sent as null.
func (d TrainerDraft) Payload() TrainerPayload {
	payload := TrainerPayload{
		FullName:       strings.TrimSpace(d.FullName),
		Gender:         d.Gender,
		Phone:          strings.TrimSpace(d.Phone),
		Email:          OptionalString(d.Email),
		Specialization: slices.Clone(d.Specialization),
		Experience:     d.Experience,
		Price:          d.Price.InexactFloat64(),
	}
	if payload.Specialization == nil {
		payload.Specialization = []string{}
	}
	if !d.Salary.IsZero() {
		salary := d.Salary.InexactFloat64()
		payload.Salary = &salary
	}
	return payload
}
