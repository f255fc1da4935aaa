package wizard

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/sizing"
)

// State is everything the order composition wizard owns: the step position,
// the single set being edited, the committed sets and order-level fields, and
// step-scoped error flags. Transitions are pure: Apply returns a new State
// and never mutates its input, so the machine is testable without a UI.
type State struct {
	Step     domain.Step
	Current  domain.NailSetDraft
	Draft    domain.OrderDraft
	Profiles []domain.SizeProfile

	// StepErrors holds the human-readable guard failure per step; a failed
	// guard sets the flag and message without touching the draft.
	StepErrors map[domain.Step]string
	// Notices are non-blocking messages (e.g. a silently cleared promo).
	Notices []string

	Submitting  bool
	FinalStatus domain.OrderStatus
}

// NewState creates a fresh wizard at the shape step for a new draft.
// profiles should already be the customer's saved profiles; ineligible
// (empty) ones are filtered here.
func NewState(userID string, profiles []domain.SizeProfile) State {
	eligible := sizing.NewResolver(profiles).EligibleProfiles()
	return State{
		Step:       domain.StepShape,
		Current:    domain.NewNailSetDraft(),
		Draft:      domain.OrderDraft{UserID: userID},
		Profiles:   eligible,
		StepErrors: map[domain.Step]string{},
	}
}

// Resume rebuilds a wizard over a previously autosaved draft so a session
// survives server restarts. The captured order id is kept, so later autosaves
// update the same row instead of creating a second one. A persisted promo
// code is not restored: its validity cannot be trusted against a session that
// may diverge, so the customer re-applies it.
func Resume(rec *domain.OrderRecord, profiles []domain.SizeProfile) State {
	s := NewState(rec.UserID, profiles)
	s.Draft.ID = rec.ID
	s.Draft.Sets = make([]domain.NailSetDraft, len(rec.NailSets))
	for i, set := range rec.NailSets {
		s.Draft.Sets[i] = set.Clone()
	}
	if rec.CustomerSizes != nil {
		cs := *rec.CustomerSizes
		cs.Values = rec.CustomerSizes.Values.Clone()
		s.Draft.CustomerSizes = &cs
	}
	s.Draft.Delivery = rec.Delivery
	if rec.Delivery.Addr != nil {
		a := *rec.Delivery.Addr
		s.Draft.Delivery.Addr = &a
	}
	s.Draft.SaveAddress = rec.Delivery.SaveAddress
	if len(s.Draft.Sets) > 0 {
		s.Step = domain.StepSummary
	}
	return s
}

// clone deep-copies the state so Apply can stay pure.
func (s State) clone() State {
	out := s
	out.Current = s.Current.Clone()
	out.Draft.Sets = make([]domain.NailSetDraft, len(s.Draft.Sets))
	for i, set := range s.Draft.Sets {
		out.Draft.Sets[i] = set.Clone()
	}
	if s.Draft.CustomerSizes != nil {
		cs := *s.Draft.CustomerSizes
		cs.Values = s.Draft.CustomerSizes.Values.Clone()
		out.Draft.CustomerSizes = &cs
	}
	if s.Draft.Promo != nil {
		p := *s.Draft.Promo
		out.Draft.Promo = &p
	}
	if s.Draft.Delivery.Addr != nil {
		a := *s.Draft.Delivery.Addr
		out.Draft.Delivery.Addr = &a
	}
	out.StepErrors = make(map[domain.Step]string, len(s.StepErrors))
	for k, v := range s.StepErrors {
		out.StepErrors[k] = v
	}
	out.Notices = append([]string(nil), s.Notices...)
	return out
}

// resolver builds the sizing resolver over the state's profiles.
func (s *State) resolver() *sizing.Resolver {
	return sizing.NewResolver(s.Profiles)
}

// Action is one wizard input. Transitions (GoNext, GoBack, SaveSet,
// AddAnother, EditSet) move between steps behind guards; the remaining
// actions edit fields of the current set or the order.
type Action interface{ isAction() }

// GoNext advances to the following step when the current step's guard holds.
type GoNext struct{}

// GoBack returns to the previous step unconditionally.
type GoBack struct{}

// SaveSet freezes the current set into the order. Only legal on the size
// step; guarded by sizing validity. On success the wizard resets to an empty
// current set positioned at summary.
type SaveSet struct{}

// AddAnother opens a new empty set from the summary step.
type AddAnother struct{}

// EditSet re-opens a saved set as the current one, removing it from the
// frozen list until re-saved. No two sets are ever edited concurrently.
type EditSet struct{ ID uuid.UUID }

type SetShape struct{ ShapeID string }
type SetDescription struct{ Text string }
type SetDesignHelp struct{ On bool }
type SetSizingHelp struct{ On bool }

type AttachUpload struct {
	Kind domain.UploadKind
	Ref  domain.UploadReference
}
type ResolveUpload struct {
	ID  uuid.UUID
	URL string
}
type FailUpload struct {
	ID     uuid.UUID
	Reason string
}
type RemoveUpload struct{ ID uuid.UUID }

type SetSizeMode struct{ Mode domain.SizeMode }
type SetFingerSize struct {
	Finger domain.Finger
	Value  string
}
type SelectSizingOption struct{ Option domain.SizingOption }

// SelectProfile picks a saved profile for the current set and refreshes the
// order-level CustomerSizes shadow so saved sizes survive later set edits.
type SelectProfile struct{ Profile domain.SizeProfile }

type SetQuantity struct{ N int }

type SetDeliveryMethod struct {
	Method domain.DeliveryMethodID
	Speed  domain.DeliverySpeed
}
type SetAddress struct{ Addr domain.Address }
type SetNotes struct{ Text string }
type SetSaveAddress struct{ On bool }

// PriceSet records the computed prices for a saved set. Prices are computed,
// never user-editable.
type PriceSet struct {
	ID        uuid.UUID
	UnitPrice decimal.Decimal
	Price     decimal.Decimal
}

// PromoApplied attaches validated discount terms; it supersedes any
// previously applied code.
type PromoApplied struct{ App domain.PromoApplication }

// PromoCleared removes the promo (invalidation or user action) and records a
// non-blocking notice when one is given.
type PromoCleared struct{ Notice string }

// OrderPersisted captures the id returned by the first successful upsert; it
// is reused for every later autosave/submit in the session.
type OrderPersisted struct{ ID uuid.UUID }

// SubmissionStarted blocks further autosaves from clobbering the submit.
type SubmissionStarted struct{}

// SubmissionFinished records the admission decision.
type SubmissionFinished struct{ Status domain.OrderStatus }

// ClearNotices drops accumulated notices once surfaced.
type ClearNotices struct{}

func (GoNext) isAction()             {}
func (GoBack) isAction()             {}
func (SaveSet) isAction()            {}
func (AddAnother) isAction()         {}
func (EditSet) isAction()            {}
func (SetShape) isAction()           {}
func (SetDescription) isAction()     {}
func (SetDesignHelp) isAction()      {}
func (SetSizingHelp) isAction()      {}
func (AttachUpload) isAction()       {}
func (ResolveUpload) isAction()      {}
func (FailUpload) isAction()         {}
func (RemoveUpload) isAction()       {}
func (SetSizeMode) isAction()        {}
func (SetFingerSize) isAction()      {}
func (SelectSizingOption) isAction() {}
func (SelectProfile) isAction()      {}
func (SetQuantity) isAction()        {}
func (SetDeliveryMethod) isAction()  {}
func (SetAddress) isAction()         {}
func (SetNotes) isAction()           {}
func (SetSaveAddress) isAction()     {}
func (PriceSet) isAction()           {}
func (PromoApplied) isAction()       {}
func (PromoCleared) isAction()       {}
func (OrderPersisted) isAction()     {}
func (SubmissionStarted) isAction()  {}
func (SubmissionFinished) isAction() {}
func (ClearNotices) isAction()       {}

// Apply is the pure transition function (state, action) -> state.
func Apply(s State, a Action) State {
	next := s.clone()
	delete(next.StepErrors, next.Step)

	switch act := a.(type) {
	case GoNext:
		applyNext(&next)
	case GoBack:
		next.Step = next.Step.Prev()
	case SaveSet:
		applySaveSet(&next)
	case AddAnother:
		applyAddAnother(&next)
	case EditSet:
		applyEditSet(&next, act.ID)

	case SetShape:
		next.Current.ShapeID = act.ShapeID
	case SetDescription:
		next.Current.DesignDescription = act.Text
	case SetDesignHelp:
		next.Current.RequiresDesignHelp = act.On
	case SetSizingHelp:
		next.Current.RequiresSizingHelp = act.On

	case AttachUpload:
		ref := act.Ref
		if ref.ID == uuid.Nil {
			ref.ID = uuid.New()
		}
		if ref.State == "" {
			ref.State = domain.UploadStatePending
		}
		if act.Kind == domain.UploadKindSizing {
			next.Current.SizingUploads = append(next.Current.SizingUploads, ref)
		} else {
			next.Current.DesignUploads = append(next.Current.DesignUploads, ref)
		}
	case ResolveUpload:
		settleUpload(&next, act.ID, func(u *domain.UploadReference) {
			u.RemoteURL = act.URL
			u.PendingLocalURI = ""
			u.State = domain.UploadStateUploaded
			u.ErrorReason = ""
		})
	case FailUpload:
		settleUpload(&next, act.ID, func(u *domain.UploadReference) {
			u.State = domain.UploadStateFailed
			u.ErrorReason = act.Reason
		})
	case RemoveUpload:
		if !removeUpload(&next.Current, act.ID) {
			for i := range next.Draft.Sets {
				if removeUpload(&next.Draft.Sets[i], act.ID) {
					break
				}
			}
		}

	case SetSizeMode:
		next.Current.SizeMode = act.Mode
	case SetFingerSize:
		if next.Current.Sizes == nil {
			next.Current.Sizes = domain.FingerSizes{}
		}
		next.Current.Sizes[act.Finger] = act.Value
	case SelectSizingOption:
		next.Current.SelectedSizingOption = act.Option.Normalize()
	case SelectProfile:
		next.Current.SelectedSizingOption = domain.SizingOptionSaved
		next.Current.SelectedProfileID = act.Profile.ID
		next.Draft.CustomerSizes = &domain.CustomerSizes{
			Mode:      next.Current.SizeMode,
			Values:    act.Profile.Values.Clone(),
			ProfileID: act.Profile.ID,
		}
	case SetQuantity:
		if act.N > 0 {
			next.Current.Quantity = act.N
		}

	case SetDeliveryMethod:
		next.Draft.Delivery.Method = act.Method
		next.Draft.Delivery.Speed = act.Speed
	case SetAddress:
		addr := act.Addr
		next.Draft.Delivery.Addr = &addr
	case SetNotes:
		next.Draft.Delivery.Notes = act.Text
	case SetSaveAddress:
		next.Draft.SaveAddress = act.On

	case PriceSet:
		for i := range next.Draft.Sets {
			if next.Draft.Sets[i].ID == act.ID {
				next.Draft.Sets[i].UnitPrice = act.UnitPrice
				next.Draft.Sets[i].Price = act.Price
			}
		}

	case PromoApplied:
		app := act.App
		next.Draft.PromoCode = app.Code
		next.Draft.Promo = &app
	case PromoCleared:
		next.Draft.PromoCode = ""
		next.Draft.Promo = nil
		if act.Notice != "" {
			next.Notices = append(next.Notices, act.Notice)
		}

	case OrderPersisted:
		next.Draft.ID = act.ID
	case SubmissionStarted:
		next.Submitting = true
	case SubmissionFinished:
		next.Submitting = false
		next.FinalStatus = act.Status
	case ClearNotices:
		next.Notices = nil
	}

	return next
}

// settleUpload applies fn to the upload with the given id wherever it lives.
// Uploads run in the background, so one can finish after its set was frozen
// by SaveSet; settlement must reach saved sets, not just the one being edited.
func settleUpload(s *State, id uuid.UUID, fn func(*domain.UploadReference)) {
	if updateUpload(&s.Current, id, fn) {
		return
	}
	for i := range s.Draft.Sets {
		if updateUpload(&s.Draft.Sets[i], id, fn) {
			return
		}
	}
}

func updateUpload(set *domain.NailSetDraft, id uuid.UUID, fn func(*domain.UploadReference)) bool {
	for i := range set.DesignUploads {
		if set.DesignUploads[i].ID == id {
			fn(&set.DesignUploads[i])
			return true
		}
	}
	for i := range set.SizingUploads {
		if set.SizingUploads[i].ID == id {
			fn(&set.SizingUploads[i])
			return true
		}
	}
	return false
}

func removeUpload(set *domain.NailSetDraft, id uuid.UUID) bool {
	for i := range set.DesignUploads {
		if set.DesignUploads[i].ID == id {
			set.DesignUploads = append(set.DesignUploads[:i], set.DesignUploads[i+1:]...)
			return true
		}
	}
	for i := range set.SizingUploads {
		if set.SizingUploads[i].ID == id {
			set.SizingUploads = append(set.SizingUploads[:i], set.SizingUploads[i+1:]...)
			return true
		}
	}
	return false
}
