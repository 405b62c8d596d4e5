package gym

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// PlanDraft is the create/edit form for a membership plan.
type PlanDraft struct {
	ID            string          `json:"-"`
	PlanName      string          `json:"planName" validate:"required"`
	DurationValue int             `json:"durationValue" validate:"gte=1"`
	DurationUnit  string          `json:"durationUnit" validate:"oneof=days months"`
	Price         decimal.Decimal `json:"price"`
	AccessType    []string        `json:"accessType" validate:"min=1"`
	Description   string          `json:"description"`
	Features      []string        `json:"features"`
}

// NewPlanDraft returns the blank plan form: one month, gym access, one empty
// feature row.
func NewPlanDraft() PlanDraft {
	return PlanDraft{
		DurationValue: 1,
		DurationUnit:  UnitMonths,
		AccessType:    []string{"Gym"},
		Features:      []string{""},
	}
}

// PlanDraftFrom seeds an edit draft from an existing plan.
func PlanDraftFrom(p Plan) PlanDraft {
	draft := PlanDraft{
		ID:            p.ID,
		PlanName:      p.PlanName,
		DurationValue: p.Duration.Value,
		DurationUnit:  p.Duration.Unit,
		Price:         decimal.NewFromFloat(p.Price),
		AccessType:    slices.Clone(p.AccessType),
		Description:   p.Description,
		Features:      slices.Clone(p.Features),
	}
	if len(draft.Features) == 0 {
		draft.Features = []string{""}
	}
	return draft
}

// Editing reports whether the draft updates an existing plan.
func (d PlanDraft) Editing() bool { return d.ID != "" }

// ToggleAccess adds or removes an access tag.
func (d *PlanDraft) ToggleAccess(tag string) {
	if i := slices.Index(d.AccessType, tag); i >= 0 {
		d.AccessType = slices.Delete(slices.Clone(d.AccessType), i, i+1)
		return
	}
	d.AccessType = append(slices.Clone(d.AccessType), tag)
}

// AddFeature appends an empty feature row.
func (d *PlanDraft) AddFeature() {
	d.Features = append(slices.Clone(d.Features), "")
}

// SetFeature replaces the feature at index i.
func (d *PlanDraft) SetFeature(i int, value string) {
	if i < 0 || i >= len(d.Features) {
		return
	}
	features := slices.Clone(d.Features)
	features[i] = value
	d.Features = features
}

// RemoveFeature drops the feature at index i.
func (d *PlanDraft) RemoveFeature(i int) {
	if i < 0 || i >= len(d.Features) {
		return
	}
	d.Features = slices.Delete(slices.Clone(d.Features), i, i+1)
}

// Validate implements Draft.
func (d PlanDraft) Validate() error {
	verr := &ValidationError{}
	if err := validateStruct(d, verr); err != nil {
		return err
	}
	if d.Price.IsNegative() {
		verr.Add("price", "must be at least 0")
	}
	for _, tag := range d.AccessType {
		if !slices.Contains(AccessTypes, tag) {
			verr.Add("accessType", "must be one of "+strings.Join(AccessTypes, ", "))
			break
		}
	}
	return verr.orNil()
}

// PlanPayload is the normalized plan snapshot.
type PlanPayload struct {
	PlanName    string       `json:"planName"`
	Duration    PlanDuration `json:"duration"`
	Price       float64      `json:"price"`
	AccessType  []string     `json:"accessType"`
	Description string       `json:"description"`
	Features    []string     `json:"features"`
}

// Payload normalizes the draft. Blank feature rows are dropped.
func (d PlanDraft) Payload() PlanPayload {
	features := make([]string, 0, len(d.Features))
	for _, feature := range d.Features {
		if feature = strings.TrimSpace(feature); feature != "" {
			features = append(features, feature)
		}
	}
	return PlanPayload{
		PlanName:    strings.TrimSpace(d.PlanName),
		Duration:    PlanDuration{Value: d.DurationValue, Unit: d.DurationUnit},
		Price:       d.Price.InexactFloat64(),
		AccessType:  slices.Clone(d.AccessType),
		Description: strings.TrimSpace(d.Description),
		Features:    features,
	}
}
