package domain

import "encoding/json"

// Normalization is the single boundary where deprecated persisted shapes are
// mapped to current ones. The engine never branches on legacy values.

type nailSetAlias NailSetDraft

// nailSetEnvelope carries the wire shape of a nail set, including the
// derived requires_follow_up flag older readers still expect.
type nailSetEnvelope struct {
	nailSetAlias
	RequiresFollowUp *bool `json:"requires_follow_up,omitempty"`
}

// UnmarshalJSON accepts both current and legacy persisted shapes and
// normalizes on load.
func (d *NailSetDraft) UnmarshalJSON(b []byte) error {
	var env nailSetEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	*d = NailSetDraft(env.nailSetAlias)
	NormalizeSet(d, env.RequiresFollowUp != nil && *env.RequiresFollowUp)
	return nil
}

// MarshalJSON writes the derived requires_follow_up alongside the two help
// flags so older persisted-record readers keep working.
func (d NailSetDraft) MarshalJSON() ([]byte, error) {
	follow := d.RequiresFollowUp()
	return json.Marshal(nailSetEnvelope{
		nailSetAlias:     nailSetAlias(d),
		RequiresFollowUp: &follow,
	})
}

// NormalizeSet rewrites a loaded nail set in place:
//   - the legacy camera sizing option becomes manual; the set's sizing photos
//     remain the satisfying sizing evidence,
//   - a legacy requires_follow_up flag with no newer help flags set is folded
//     into both help flags (it cannot be disaggregated),
//   - quantity zero becomes the default of one.
func NormalizeSet(s *NailSetDraft, legacyFollowUp bool) {
	s.SelectedSizingOption = s.SelectedSizingOption.Normalize()
	if legacyFollowUp && !s.RequiresDesignHelp && !s.RequiresSizingHelp {
		s.RequiresDesignHelp = true
		s.RequiresSizingHelp = true
	}
	if s.Quantity <= 0 {
		s.Quantity = 1
	}
	if s.Sizes == nil {
		s.Sizes = FingerSizes{}
	}
	if s.SizeMode == "" {
		s.SizeMode = SizeModeStandard
	}
}

// NormalizeRecord applies NormalizeSet to every set in a loaded order record
// and defaults a missing delivery selection to pickup/standard.
func NormalizeRecord(rec *OrderRecord) {
	for i := range rec.NailSets {
		NormalizeSet(&rec.NailSets[i], false)
	}
	if rec.Delivery.Method == "" {
		rec.Delivery.Method = DeliveryMethodPickup
	}
	if rec.Delivery.Speed == "" {
		rec.Delivery.Speed = DeliverySpeedStandard
	}
	if rec.Status == "" {
		rec.Status = OrderStatusDraft
	}
}
