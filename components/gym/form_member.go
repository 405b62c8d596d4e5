package gym

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const dobLayout = "2006-01-02"

// PaymentDraft is the payment sub-form attached to a new enrollment. The
// remaining balance is never stored; see MemberDraft.Remaining.
type PaymentDraft struct {
	Months        int             `json:"months" validate:"gte=1"`
	Amount        decimal.Decimal `json:"amount"`
	FullPayment   decimal.Decimal `json:"fullPayment"`
	PaymentMethod string          `json:"paymentMethod" validate:"omitempty,oneof=Cash Card UPI Online"`
	PaymentStatus string          `json:"paymentStatus" validate:"omitempty,oneof=Paid Pending Partial"`
}

// MemberDraft is the enrollment/edit form for a member. Amount is kept equal to
// planPrice + trainerPrice whenever the plan or trainer changes, but can be
// overridden by the user until the next such change.
type MemberDraft struct {
	ID              string       `json:"-"`
	FullName        string       `json:"fullName" validate:"required"`
	Gender          string       `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	DateOfBirth     string       `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Phone           string       `json:"phone" validate:"required"`
	Email           string       `json:"email" validate:"omitempty,email"`
	Address         Address      `json:"address"`
	AssignedTrainer string       `json:"assignedTrainer"`
	CurrentPlan     string       `json:"currentPlan"`
	Payment         PaymentDraft `json:"payment"`

	// RequireTrainer makes an empty trainer selection a validation failure.
	RequireTrainer bool `json:"-"`

	trainerPrice decimal.Decimal
	planPrice    decimal.Decimal
}

// NewMemberDraft returns an empty enrollment draft.
func NewMemberDraft() MemberDraft {
	return MemberDraft{
		Gender: "Male",
		Payment: PaymentDraft{
			Months:        1,
			PaymentMethod: "Cash",
			PaymentStatus: PaymentPending,
		},
	}
}

// MemberDraftFrom seeds an edit draft from an existing member. Edit drafts do
// not carry a payment sub-form.
func MemberDraftFrom(m Member) MemberDraft {
	draft := NewMemberDraft()
	draft.ID = m.ID
	draft.FullName = m.FullName
	if m.Gender != "" {
		draft.Gender = m.Gender
	}
	if !m.DateOfBirth.IsZero() {
		draft.DateOfBirth = m.DateOfBirth.Format(dobLayout)
	}
	draft.Phone = m.Phone
	draft.Email = m.Email
	if m.Address != nil {
		draft.Address = *m.Address
	}
	draft.AssignedTrainer = m.AssignedTrainer.IDOrEmpty()
	draft.CurrentPlan = m.CurrentPlan.IDOrEmpty()
	if trainer, ok := m.AssignedTrainer.Doc(); ok {
		draft.trainerPrice = decimal.NewFromFloat(trainer.Price)
	}
	if plan, ok := m.CurrentPlan.Doc(); ok {
		draft.planPrice = decimal.NewFromFloat(plan.Price)
	}
	return draft
}

// Editing reports whether the draft updates an existing member.
func (d MemberDraft) Editing() bool { return d.ID != "" }

// TrainerPrice is the per-session price of the selected trainer.
func (d MemberDraft) TrainerPrice() decimal.Decimal { return d.trainerPrice }

// PlanPrice is the price of the selected plan.
func (d MemberDraft) PlanPrice() decimal.Decimal { return d.planPrice }

// SelectTrainer selects a trainer from catalog and recomputes the amount. An
// empty id clears the selection.
func (d *MemberDraft) SelectTrainer(id string, catalog []Trainer) error {
	id = strings.TrimSpace(id)
	price := decimal.Zero
	if id != "" {
		trainer, ok := findByID(catalog, id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTrainer, id)
		}
		price = decimal.NewFromFloat(trainer.Price)
	}
	d.AssignedTrainer = id
	d.trainerPrice = price
	d.Payment.Amount = d.planPrice.Add(d.trainerPrice)
	return nil
}

// SelectPlan selects a plan from catalog and recomputes the amount, holding the
// current trainer price. An empty id clears the selection.
func (d *MemberDraft) SelectPlan(id string, catalog []Plan) error {
	id = strings.TrimSpace(id)
	price := decimal.Zero
	if id != "" {
		plan, ok := findByID(catalog, id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPlan, id)
		}
		price = decimal.NewFromFloat(plan.Price)
	}
	d.CurrentPlan = id
	d.planPrice = price
	d.Payment.Amount = d.planPrice.Add(d.trainerPrice)
	return nil
}

// SetMonths changes the number of months paid for.
func (d *MemberDraft) SetMonths(months int) error {
	if months < 1 {
		return &ValidationError{Fields: map[string]string{"payment.months": "must be at least 1"}}
	}
	d.Payment.Months = months
	return nil
}

// SetAmount overrides the per-month amount.
func (d *MemberDraft) SetAmount(amount decimal.Decimal) {
	d.Payment.Amount = amount
}

// SetFullPayment records how much the member pays now.
func (d *MemberDraft) SetFullPayment(paid decimal.Decimal) {
	d.Payment.FullPayment = paid
}

// Total is months * amount.
func (d MemberDraft) Total() decimal.Decimal {
	return d.Payment.Amount.Mul(decimal.NewFromInt(int64(d.Payment.Months)))
}

// Remaining is max(0, months*amount - fullPayment).
func (d MemberDraft) Remaining() decimal.Decimal {
	remaining := d.Total().Sub(d.Payment.FullPayment)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Validate implements Draft.
func (d MemberDraft) Validate() error {
	verr := &ValidationError{}
	if err := validateStruct(d, verr); err != nil {
		return err
	}
	if strings.TrimSpace(d.FullName) == "" {
		verr.Add("fullName", "is required")
	}
	if d.RequireTrainer && strings.TrimSpace(d.AssignedTrainer) == "" {
		verr.Add("assignedTrainer", "is required")
	}
	if !d.Editing() {
		if d.Payment.Amount.IsNegative() {
			verr.Add("payment.amount", "must be at least 0")
		}
		if d.Payment.FullPayment.IsNegative() {
			verr.Add("payment.fullPayment", "must be at least 0")
		}
	}
	return verr.orNil()
}

// MemberPayload is the normalized snapshot sent to the backend. Optional
// fields left blank in the form are sent as null.
type MemberPayload struct {
	FullName        string          `json:"fullName"`
	Gender          string          `json:"gender,omitempty"`
	DateOfBirth     *string         `json:"dateOfBirth"`
	Phone           string          `json:"phone"`
	Email           *string         `json:"email"`
	Address         *Address        `json:"address,omitempty"`
	AssignedTrainer *string         `json:"assignedTrainer"`
	CurrentPlan     *string         `json:"currentPlan"`
	Payment         *PaymentPayload `json:"payment,omitempty"`
}

// PaymentPayload is the payment snapshot attached to a new enrollment.
type PaymentPayload struct {
	Months        int     `json:"months"`
	Amount        float64 `json:"amount"`
	FullPayment   float64 `json:"fullPayment"`
	Remaining     float64 `json:"remaining"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	PaymentStatus string  `json:"paymentStatus,omitempty"`
}

// Payload normalizes the draft for transmission.
func (d MemberDraft) Payload() MemberPayload {
	payload := MemberPayload{
		FullName:        strings.TrimSpace(d.FullName),
		Gender:          d.Gender,
		DateOfBirth:     OptionalString(d.DateOfBirth),
		Phone:           strings.TrimSpace(d.Phone),
		Email:           OptionalString(d.Email),
		AssignedTrainer: OptionalString(d.AssignedTrainer),
		CurrentPlan:     OptionalString(d.CurrentPlan),
	}
	if d.Address != (Address{}) {
		addr := d.Address
		payload.Address = &addr
	}
	if !d.Editing() {
		payload.Payment = &PaymentPayload{
			Months:        d.Payment.Months,
			Amount:        d.Payment.Amount.InexactFloat64(),
			FullPayment:   d.Payment.FullPayment.InexactFloat64(),
			Remaining:     d.Remaining().InexactFloat64(),
			PaymentMethod: d.Payment.PaymentMethod,
			PaymentStatus: d.Payment.PaymentStatus,
		}
	}
	return payload
}

func findByID[T Identified](items []T, id string) (T, bool) {
	for _, item := range items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}
