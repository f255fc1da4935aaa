package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/wizard"
)

// StateResponse is the wire shape of the wizard state returned after every
// action. Step errors are keyed by step so the client can render them in
// place.
type StateResponse struct {
	OrderID     string                   `json:"order_id,omitempty"`
	Step        domain.Step              `json:"step"`
	Current     domain.NailSetDraft      `json:"current"`
	Sets        []domain.NailSetDraft    `json:"sets"`
	Delivery    domain.DeliveryDetails   `json:"delivery"`
	Promo       *domain.PromoApplication `json:"promo,omitempty"`
	SaveAddress bool                     `json:"save_address"`
	Profiles    []ProfileResponse        `json:"profiles,omitempty"`
	StepErrors  map[domain.Step]string   `json:"step_errors,omitempty"`
	Notices     []string                 `json:"notices,omitempty"`
	Submitting  bool                     `json:"submitting"`
	FinalStatus domain.OrderStatus       `json:"final_status,omitempty"`
}

// NewStateResponse projects a wizard state onto the wire.
func NewStateResponse(st wizard.State) StateResponse {
	resp := StateResponse{
		Step:        st.Step,
		Current:     st.Current,
		Sets:        st.Draft.Sets,
		Delivery:    st.Draft.Delivery,
		Promo:       st.Draft.Promo,
		SaveAddress: st.Draft.SaveAddress,
		Profiles:    NewProfileResponses(st.Profiles),
		StepErrors:  st.StepErrors,
		Notices:     st.Notices,
		Submitting:  st.Submitting,
		FinalStatus: st.FinalStatus,
	}
	if st.Draft.ID != uuid.Nil {
		resp.OrderID = st.Draft.ID.String()
	}
	return resp
}

// ProfileResponse is the wire shape of a saved size profile.
type ProfileResponse struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Values domain.FingerSizes `json:"values"`
}

// NewProfileResponses converts saved profiles to their wire shape.
func NewProfileResponses(profiles []domain.SizeProfile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, ProfileResponse{ID: p.ID, Name: p.Name, Values: p.Values})
	}
	return out
}

// OrderResponse is the wire shape of a persisted order.
type OrderResponse struct {
	ID            string                 `json:"id"`
	NailSets      []domain.NailSetDraft  `json:"nail_sets"`
	CustomerSizes *domain.CustomerSizes  `json:"customer_sizes,omitempty"`
	Delivery      domain.DeliveryDetails `json:"fulfillment"`
	PromoCode     string                 `json:"promo_code,omitempty"`
	Status        domain.OrderStatus     `json:"status"`
	CreatedAt     string                 `json:"created_at"`
	UpdatedAt     string                 `json:"updated_at"`
}

// NewOrderResponse converts an order record to its wire shape.
func NewOrderResponse(rec *domain.OrderRecord) OrderResponse {
	return OrderResponse{
		ID:            rec.ID.String(),
		NailSets:      rec.NailSets,
		CustomerSizes: rec.CustomerSizes,
		Delivery:      rec.Delivery,
		PromoCode:     rec.PromoCode,
		Status:        rec.Status,
		CreatedAt:     rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     rec.UpdatedAt.Format(time.RFC3339),
	}
}

// NewOrderResponses converts a list of records.
func NewOrderResponses(recs []*domain.OrderRecord) []OrderResponse {
	out := make([]OrderResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, NewOrderResponse(r))
	}
	return out
}

// SubmitResponse is returned from submit and resubmit.
type SubmitResponse struct {
	Order    OrderResponse          `json:"order"`
	Capacity *domain.CapacityWindow `json:"capacity,omitempty"`
	Notices  []string               `json:"notices,omitempty"`
}
