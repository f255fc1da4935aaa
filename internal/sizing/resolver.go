package sizing

import (
	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

// Resolver resolves the effective per-finger sizes for a nail set from the
// customer's saved profiles, the draft's own manual entry, or legacy photo
// evidence. It is pure over the profile list it is given.
type Resolver struct {
	profiles []domain.SizeProfile
}

// NewResolver creates a resolver over the customer's saved profiles. Empty
// profiles are filtered out up front: they are never eligible for saved
// sizing nor shown in the selectable list.
func NewResolver(profiles []domain.SizeProfile) *Resolver {
	r := &Resolver{}
	for _, p := range profiles {
		if p.Eligible() {
			r.profiles = append(r.profiles, p)
		}
	}
	return r
}

// EligibleProfiles returns the selectable saved profiles.
func (r *Resolver) EligibleProfiles() []domain.SizeProfile {
	return r.profiles
}

// lookup finds a profile by id among the eligible ones.
func (r *Resolver) lookup(id string) *domain.SizeProfile {
	if id == "" {
		return nil
	}
	for i := range r.profiles {
		if r.profiles[i].ID == id {
			return &r.profiles[i]
		}
	}
	return nil
}

// ResolveProfile resolves the profile backing a saved-sizing set, falling
// back from the set's own id to the order-level shadow's id to the first
// eligible profile.
func (r *Resolver) ResolveProfile(set *domain.NailSetDraft, shadow *domain.CustomerSizes) *domain.SizeProfile {
	if p := r.lookup(set.SelectedProfileID); p != nil {
		return p
	}
	if shadow != nil {
		if p := r.lookup(shadow.ProfileID); p != nil {
			return p
		}
	}
	if len(r.profiles) > 0 {
		return &r.profiles[0]
	}
	return nil
}

// Resolve returns the effective sizes for display and submission.
// Precedence: saved profile values, then the draft's own manual map. A set
// whose sizing rests on photo evidence resolves to its (possibly empty)
// manual map; Validate accepts it separately.
func (r *Resolver) Resolve(set *domain.NailSetDraft, shadow *domain.CustomerSizes) domain.FingerSizes {
	if set.SelectedSizingOption == domain.SizingOptionSaved {
		if p := r.ResolveProfile(set, shadow); p != nil {
			return p.Values.Clone()
		}
	}
	return set.Sizes.Clone()
}

// Validate decides whether the set may leave the size step.
//   - requiresSizingHelp is an explicit escape hatch: sizing is always
//     satisfied when it is set.
//   - saved sizing needs a resolvable profile.
//   - manual sizing needs all five finger values, or at least one uploaded
//     sizing photo (the normalized legacy photo mode).
func (r *Resolver) Validate(set *domain.NailSetDraft, shadow *domain.CustomerSizes) error {
	if set.RequiresSizingHelp {
		return nil
	}

	switch set.SelectedSizingOption.Normalize() {
	case domain.SizingOptionSaved:
		if r.ResolveProfile(set, shadow) == nil {
			return &errors.ErrValidation{
				Step:    domain.StepSize,
				Message: "no saved size profile available",
				Fields:  map[string]string{"selected_profile_id": "profile not found"},
			}
		}
		return nil
	default:
		if set.Sizes.Complete() {
			return nil
		}
		if set.HasSizingUpload() {
			return nil
		}
		return &errors.ErrValidation{
			Step:    domain.StepSize,
			Message: "all five finger sizes are required",
			Fields:  missingFingers(set.Sizes),
		}
	}
}

func missingFingers(sizes domain.FingerSizes) map[string]string {
	fields := map[string]string{}
	for _, f := range domain.Fingers {
		if sizes[f] == "" {
			fields[string(f)] = "required"
		}
	}
	return fields
}
