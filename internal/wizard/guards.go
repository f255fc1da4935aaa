package wizard

import (
	"github.com/google/uuid"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

// Guard messages surfaced when forward navigation is blocked. A guard failure
// sets the step-scoped error and leaves the draft untouched.
const (
	msgShapeRequired    = "Choose a shape to continue."
	msgDesignRequired   = "Describe your design, add an inspiration photo, or ask for design help."
	msgSaveSetToLeave   = "Save this set to continue."
	msgNoSets           = "Add at least one nail set before continuing."
	msgAddressRequired  = "A complete delivery address is required."
	msgUnknownSet       = "That nail set no longer exists."
	msgAddAnotherAt     = "Finish or save the current set before adding another."
	msgSubmitInProgress = "Submission already in progress."
)

func applyNext(s *State) {
	switch s.Step {
	case domain.StepShape:
		if s.Current.ShapeID == "" {
			s.StepErrors[domain.StepShape] = msgShapeRequired
			return
		}
	case domain.StepDesign:
		if !s.Current.HasDesignInput() {
			s.StepErrors[domain.StepDesign] = msgDesignRequired
			return
		}
	case domain.StepSize:
		// Leaving size happens through the explicit save-set action.
		s.StepErrors[domain.StepSize] = msgSaveSetToLeave
		return
	case domain.StepSummary:
		if len(s.Draft.Sets) == 0 {
			s.StepErrors[domain.StepSummary] = msgNoSets
			return
		}
	case domain.StepFulfillment:
		if s.Draft.Delivery.Method.RequiresAddress() && !s.Draft.Delivery.Addr.Complete() {
			s.StepErrors[domain.StepFulfillment] = msgAddressRequired
			return
		}
	case domain.StepReview:
		return // terminal; submission is a separate action
	}
	s.Step = s.Step.Next()
}

func applySaveSet(s *State) {
	if s.Step != domain.StepSize {
		s.StepErrors[s.Step] = msgSaveSetToLeave
		return
	}
	if err := s.resolver().Validate(&s.Current, s.Draft.CustomerSizes); err != nil {
		if v, ok := err.(*errors.ErrValidation); ok {
			s.StepErrors[domain.StepSize] = v.Message
		} else {
			s.StepErrors[domain.StepSize] = err.Error()
		}
		return
	}

	set := s.Current.Clone()
	if set.ID == uuid.Nil {
		set.ID = uuid.New() // stable identifier, assigned at first save
	}

	// Keep the order-level shadow in sync with saved sizing.
	if set.SelectedSizingOption == domain.SizingOptionSaved {
		if p := s.resolver().ResolveProfile(&set, s.Draft.CustomerSizes); p != nil {
			set.SelectedProfileID = p.ID
			s.Draft.CustomerSizes = &domain.CustomerSizes{
				Mode:      set.SizeMode,
				Values:    p.Values.Clone(),
				ProfileID: p.ID,
			}
		}
	}

	// Merge by id: re-saving an edited set replaces it, a new one appends.
	merged := false
	for i := range s.Draft.Sets {
		if s.Draft.Sets[i].ID == set.ID {
			s.Draft.Sets[i] = set
			merged = true
			break
		}
	}
	if !merged {
		s.Draft.Sets = append(s.Draft.Sets, set)
	}

	s.Current = domain.NewNailSetDraft()
	s.Step = domain.StepSummary
}

func applyAddAnother(s *State) {
	if s.Step != domain.StepSummary {
		s.StepErrors[s.Step] = msgAddAnotherAt
		return
	}
	s.Current = domain.NewNailSetDraft()
	s.Step = domain.StepShape
}

func applyEditSet(s *State, id uuid.UUID) {
	if s.Step != domain.StepSummary && s.Step != domain.StepReview {
		s.StepErrors[s.Step] = msgUnknownSet
		return
	}
	for i := range s.Draft.Sets {
		if s.Draft.Sets[i].ID == id {
			s.Current = s.Draft.Sets[i].Clone()
			s.Draft.Sets = append(s.Draft.Sets[:i], s.Draft.Sets[i+1:]...)
			s.Step = domain.StepShape
			return
		}
	}
	s.StepErrors[s.Step] = msgUnknownSet
}

// CanSubmit reports whether a final submission may start: review step, at
// least one saved set, and no submission already in flight. Violations are
// local validation errors, never service calls.
func CanSubmit(s State) error {
	if s.Submitting {
		return &errors.ErrConflict{Message: msgSubmitInProgress}
	}
	if len(s.Draft.Sets) == 0 {
		return &errors.ErrValidation{Step: domain.StepReview, Message: msgNoSets}
	}
	if s.Draft.Delivery.Method.RequiresAddress() && !s.Draft.Delivery.Addr.Complete() {
		return &errors.ErrValidation{Step: domain.StepFulfillment, Message: msgAddressRequired}
	}
	return nil
}
