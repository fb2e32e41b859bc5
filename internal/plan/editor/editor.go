// Package editor holds the in-memory state of a single plan editing
// session: the scalar form fields plus the working feature list. The
// session is a pure state machine owned by one caller; it performs no
// I/O and never mutates committed state. Persisting the result is the
// caller's job via the SaveRequest the session assembles.
package editor

import (
	"errors"
	"strings"

	"github.com/stackbill/stackbill/internal/plan/domain"
)

var (
	ErrIndexOutOfRange = errors.New("feature_index_out_of_range")
	ErrLastFeature     = errors.New("cannot_delete_last_feature")
	ErrNotEditable     = errors.New("feature_text_not_editable")
)

type Session struct {
	planID       int64
	name         string
	subtitle     string
	description  string
	monthlyPrice float64
	annualPrice  float64
	isPopular    bool
	features     []domain.Feature

	pendingDelete int
}

// NewSession starts a blank session for creating a plan. The feature
// list starts with one empty, locally-new entry so the form always has
// at least one row.
func NewSession() *Session {
	return &Session{
		features:      []domain.Feature{{New: true}},
		pendingDelete: -1,
	}
}

// LoadSession starts an editing session for an existing plan. Features
// come pre-parsed from the backend representation.
func LoadSession(planID int64, name, subtitle, description string, monthlyPrice, annualPrice float64, isPopular bool, features []domain.Feature) *Session {
	s := &Session{
		planID:        planID,
		name:          name,
		subtitle:      subtitle,
		description:   description,
		monthlyPrice:  monthlyPrice,
		annualPrice:   annualPrice,
		isPopular:     isPopular,
		features:      make([]domain.Feature, len(features)),
		pendingDelete: -1,
	}
	copy(s.features, features)
	return s
}

func (s *Session) SetName(v string)          { s.name = v }
func (s *Session) SetSubtitle(v string)      { s.subtitle = v }
func (s *Session) SetDescription(v string)   { s.description = v }
func (s *Session) SetMonthlyPrice(v float64) { s.monthlyPrice = v }
func (s *Session) SetAnnualPrice(v float64)  { s.annualPrice = v }
func (s *Session) SetPopular(v bool)         { s.isPopular = v }

// Features returns a copy of the working list.
func (s *Session) Features() []domain.Feature {
	out := make([]domain.Feature, len(s.features))
	copy(out, s.features)
	return out
}

// AddFeature appends an empty, locally-new feature.
func (s *Session) AddFeature() {
	s.features = append(s.features, domain.Feature{New: true})
}

// SetFeatureText edits the text of a feature. Only features created in
// this session are editable; persisted features support add/delete only.
func (s *Session) SetFeatureText(index int, text string) error {
	if index < 0 || index >= len(s.features) {
		return ErrIndexOutOfRange
	}
	if !s.features[index].New {
		return ErrNotEditable
	}
	s.features[index].Text = text
	return nil
}

// RequestDelete marks a feature for the confirmation step. The deletion
// takes effect only when ConfirmDelete is called.
func (s *Session) RequestDelete(index int) error {
	if index < 0 || index >= len(s.features) {
		return ErrIndexOutOfRange
	}
	if len(s.features) <= 1 {
		return ErrLastFeature
	}
	s.pendingDelete = index
	return nil
}

// ConfirmDelete flags the pending feature as deleted. The entry stays in
// the list so the user can undo before the next save.
func (s *Session) ConfirmDelete() {
	if s.pendingDelete >= 0 && s.pendingDelete < len(s.features) && len(s.features) > 1 {
		s.features[s.pendingDelete].Deleted = true
	}
	s.pendingDelete = -1
}

// CancelDelete abandons the confirmation step without changes.
func (s *Session) CancelDelete() {
	s.pendingDelete = -1
}

// UndoDelete clears the deleted flag on a feature.
func (s *Session) UndoDelete(index int) error {
	if index < 0 || index >= len(s.features) {
		return ErrIndexOutOfRange
	}
	s.features[index].Deleted = false
	return nil
}

// ActiveCount reports the number of features not marked for deletion.
func (s *Session) ActiveCount() int {
	n := 0
	for _, f := range s.features {
		if !f.Deleted {
			n++
		}
	}
	return n
}

// IsNewPlan reports whether this session creates a plan rather than
// editing one.
func (s *Session) IsNewPlan() bool { return s.planID == 0 }

// BuildSaveRequest validates the form and assembles the save payload.
// All field validators run; if any fail the request is aborted and the
// full error set is returned with no payload. Otherwise the feature
// list is categorized and mapped onto the wire contract.
func (s *Session) BuildSaveRequest() (*domain.SaveRequest, domain.FieldErrors) {
	if errs := domain.ValidatePlanFields(s.name, s.subtitle, s.description, s.monthlyPrice, s.annualPrice); errs != nil {
		return nil, errs
	}

	diff := domain.CategorizeFeatures(s.features)

	req := &domain.SaveRequest{
		PlanID:            s.planID,
		PlanTitle:         s.name,
		PlanSubtitle:      s.subtitle,
		PlanDescription:   s.description,
		IsPopular:         s.isPopular,
		AmountPerMonth:    s.monthlyPrice,
		AmountPerYear:     s.annualPrice,
		AddedFeatures:     make([]string, 0, len(diff.Added)),
		DeletedFeatureIDs: make([]int64, 0, len(diff.Deleted)),
		UpdatedFeatures:   make([]domain.FeatureUpdate, 0, len(diff.Updated)),
	}
	for _, f := range diff.Added {
		req.AddedFeatures = append(req.AddedFeatures, f.Text)
	}
	for _, f := range diff.Deleted {
		req.DeletedFeatureIDs = append(req.DeletedFeatureIDs, *f.ID)
	}
	for _, f := range diff.Updated {
		req.UpdatedFeatures = append(req.UpdatedFeatures, domain.FeatureUpdate{
			FeatureID:   *f.ID,
			Description: f.Text,
		})
	}
	return req, nil
}

// SuccessMessage is the confirmation phrasing for a settled save.
func (s *Session) SuccessMessage() string {
	if s.IsNewPlan() {
		return "Plan created successfully!"
	}
	return "Plan updated successfully!"
}

// blankFeature reports whether a feature row carries no content worth
// keeping when the form is discarded.
func blankFeature(f domain.Feature) bool {
	return f.New && strings.TrimSpace(f.Text) == ""
}

// Prune drops locally-new blank rows, keeping at least one row so the
// form never renders empty.
func (s *Session) Prune() {
	kept := s.features[:0]
	for _, f := range s.features {
		if !blankFeature(f) {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, domain.Feature{New: true})
	}
	s.features = kept
}
