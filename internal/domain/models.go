package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FingerSizes maps the five finger keys to size strings.
type FingerSizes map[Finger]string

// Complete reports whether all five finger values are non-empty strings.
func (f FingerSizes) Complete() bool {
	for _, finger := range Fingers {
		if strings.TrimSpace(f[finger]) == "" {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one finger value is non-empty.
func (f FingerSizes) HasAny() bool {
	for _, finger := range Fingers {
		if strings.TrimSpace(f[finger]) != "" {
			return true
		}
	}
	return false
}

// Clone returns a copy so callers can mutate without aliasing.
func (f FingerSizes) Clone() FingerSizes {
	out := make(FingerSizes, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// UploadReference tracks a single image attached to a nail set.
// An upload with a PendingLocalURI and no RemoteURL must never reach a
// submitted payload: it is resolved to a URL or dropped with a surfaced error.
type UploadReference struct {
	ID              uuid.UUID   `json:"id"`
	FileName        string      `json:"file_name"`
	RemoteURL       string      `json:"remote_url,omitempty"`
	PendingLocalURI string      `json:"pending_local_uri,omitempty"`
	State           UploadState `json:"state"`
	ErrorReason     string      `json:"error_reason,omitempty"`
}

// Resolved reports whether the upload has a usable remote URL.
func (u UploadReference) Resolved() bool {
	return u.State == UploadStateUploaded && u.RemoteURL != ""
}

// NailSetDraft is one customer-specified nail set.
type NailSetDraft struct {
	ID                   uuid.UUID         `json:"id"` // uuid.Nil while newly created and unsaved
	ShapeID              string            `json:"shape_id"`
	DesignDescription    string            `json:"design_description"`
	DesignUploads        []UploadReference `json:"design_uploads,omitempty"`
	SizingUploads        []UploadReference `json:"sizing_uploads,omitempty"`
	RequiresDesignHelp   bool              `json:"requires_design_help"`
	RequiresSizingHelp   bool              `json:"requires_sizing_help"`
	SizeMode             SizeMode          `json:"size_mode"`
	Sizes                FingerSizes       `json:"sizes,omitempty"`
	SelectedSizingOption SizingOption      `json:"selected_sizing_option"`
	SelectedProfileID    string            `json:"selected_profile_id,omitempty"`
	Quantity             int               `json:"quantity"`
	UnitPrice            decimal.Decimal   `json:"unit_price"`
	Price                decimal.Decimal   `json:"price"`
}

// RequiresFollowUp is the derived backward-compatibility flag. It is computed,
// never stored as a second source of truth.
func (d *NailSetDraft) RequiresFollowUp() bool {
	return d.RequiresDesignHelp || d.RequiresSizingHelp
}

// HasDesignInput reports whether the design step has anything usable.
func (d *NailSetDraft) HasDesignInput() bool {
	return strings.TrimSpace(d.DesignDescription) != "" ||
		len(d.DesignUploads) > 0 ||
		d.RequiresDesignHelp
}

// HasSizingUpload reports whether at least one sizing photo resolved to a URL.
func (d *NailSetDraft) HasSizingUpload() bool {
	for _, u := range d.SizingUploads {
		if u.Resolved() {
			return true
		}
	}
	return false
}

// Clone deep-copies the draft, including upload lists and size maps.
func (d NailSetDraft) Clone() NailSetDraft {
	out := d
	out.Sizes = d.Sizes.Clone()
	out.DesignUploads = append([]UploadReference(nil), d.DesignUploads...)
	out.SizingUploads = append([]UploadReference(nil), d.SizingUploads...)
	return out
}

// NewNailSetDraft returns an empty draft with defaults applied.
func NewNailSetDraft() NailSetDraft {
	return NailSetDraft{
		SizeMode:             SizeModeStandard,
		SelectedSizingOption: SizingOptionManual,
		Sizes:                FingerSizes{},
		Quantity:             1,
	}
}

// Address is a delivery destination. Sub-fields are jointly required whenever
// the address is present.
type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// Complete reports whether all address sub-fields are filled.
func (a *Address) Complete() bool {
	if a == nil {
		return false
	}
	return strings.TrimSpace(a.Name) != "" &&
		strings.TrimSpace(a.Line1) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != "" &&
		strings.TrimSpace(a.PostalCode) != ""
}

// DeliveryDetails holds the fulfillment selection for an order. SaveAddress
// travels with the persisted payload; the most recent order carrying it is
// the prefill source for the next draft's address.
type DeliveryDetails struct {
	Method      DeliveryMethodID `json:"method"`
	Speed       DeliverySpeed    `json:"speed"`
	Addr        *Address         `json:"address,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	SaveAddress bool             `json:"save_address,omitempty"`
}

// PromoApplication is the resolved discount attached to an order after
// validating a promo code. A PromoApplication validated against a past order
// snapshot must be revalidated before being trusted against a different one.
type PromoApplication struct {
	Code                string          `json:"code"`
	Valid               bool            `json:"valid"`
	DiscountDescription string          `json:"discount_description"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
}

// CustomerSizes is the order-level shadow of whichever set currently uses
// saved sizing, so those sizes survive being edited independently of any set.
type CustomerSizes struct {
	Mode      SizeMode    `json:"mode"`
	Values    FingerSizes `json:"values,omitempty"`
	ProfileID string      `json:"profile_id,omitempty"`
}

// OrderDraft is the in-progress order owned by the wizard.
type OrderDraft struct {
	ID            uuid.UUID         `json:"id"` // uuid.Nil until the first successful upsert
	UserID        string            `json:"user_id"`
	Sets          []NailSetDraft    `json:"sets"`
	Delivery      DeliveryDetails   `json:"delivery"`
	PromoCode     string            `json:"promo_code,omitempty"`
	Promo         *PromoApplication `json:"promo,omitempty"`
	CustomerSizes *CustomerSizes    `json:"customer_sizes,omitempty"`
	SaveAddress   bool              `json:"save_address"`
}

// Snapshot derives the promo-relevant view of the draft: which sets (shape and
// quantity) it holds plus the fulfillment selection. Promo validity is only
// trusted against an identical snapshot.
func (d *OrderDraft) Snapshot() OrderSnapshot {
	snap := OrderSnapshot{
		Method: d.Delivery.Method,
		Speed:  d.Delivery.Speed,
	}
	for _, s := range d.Sets {
		snap.Sets = append(snap.Sets, SnapshotSet{ShapeID: s.ShapeID, Quantity: s.Quantity})
	}
	return snap
}

// SnapshotSet is the promo-relevant projection of one nail set.
type SnapshotSet struct {
	ShapeID  string `json:"shape_id"`
	Quantity int    `json:"quantity"`
}

// OrderSnapshot is the promo-relevant projection of an order draft.
type OrderSnapshot struct {
	Sets   []SnapshotSet    `json:"sets"`
	Method DeliveryMethodID `json:"method"`
	Speed  DeliverySpeed    `json:"speed"`
}

// Fingerprint returns a stable hash of the snapshot. Two drafts with the same
// sets, method and speed fingerprint identically regardless of set order.
func (s OrderSnapshot) Fingerprint() string {
	parts := make([]string, 0, len(s.Sets)+2)
	for _, set := range s.Sets {
		parts = append(parts, fmt.Sprintf("%s x%d", set.ShapeID, set.Quantity))
	}
	sort.Strings(parts)
	parts = append(parts, string(s.Method), string(s.Speed))
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// CapacityWindow is the weekly production-capacity counter, read at submission
// time only. Never cached across wizard steps: capacity is shared and
// externally mutated.
type CapacityWindow struct {
	WeekStart     time.Time `json:"week_start"`
	Remaining     int       `json:"remaining"`
	IsAlmostFull  bool      `json:"is_almost_full"`
	IsFull        bool      `json:"is_full"`
	NextWeekStart time.Time `json:"next_week_start"`
}

// Shape is one entry in the external shape catalog.
type Shape struct {
	ID              string
	Name            string
	BasePrice       decimal.Decimal
	PriceAdjustment decimal.Decimal
	IsVisible       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UnitPrice is the effective per-set price for this shape.
func (s *Shape) UnitPrice() decimal.Decimal {
	return s.BasePrice.Add(s.PriceAdjustment)
}

// SpeedOption is one fee tier within a delivery method.
type SpeedOption struct {
	Fee           decimal.Decimal `json:"fee"`
	Label         string          `json:"label"`
	EstimatedDays int             `json:"estimated_days"`
}

// DeliveryMethodConfig is one entry in the external delivery-method table.
type DeliveryMethodConfig struct {
	ID           DeliveryMethodID              `json:"id"`
	Label        string                        `json:"label"`
	DefaultSpeed DeliverySpeed                 `json:"default_speed"`
	SpeedOptions map[DeliverySpeed]SpeedOption `json:"speed_options"`
}

// SizeProfile is a named, reusable set of five finger measurements.
type SizeProfile struct {
	ID        string
	UserID    string
	Name      string
	Values    FingerSizes
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Eligible reports whether the profile can back saved sizing. A profile with
// no non-empty value is filtered out of the selectable list.
func (p *SizeProfile) Eligible() bool {
	return p.Values.HasAny()
}

// PromoCode is a stored promotional discount definition.
type PromoCode struct {
	ID          uuid.UUID
	Code        string
	Kind        string // "percent" or "fixed"
	Amount      decimal.Decimal
	Description string
	MinSubtotal decimal.Decimal
	IsActive    bool
	StartsAt    *time.Time
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderRecord is the persisted order payload: the upsert unit of the remote
// order store.
type OrderRecord struct {
	ID            uuid.UUID
	UserID        string
	NailSets      []NailSetDraft
	CustomerSizes *CustomerSizes
	Delivery      DeliveryDetails
	PromoCode     string
	Status        OrderStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderEvent represents an audit event for an order
type OrderEvent struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	EventType string
	EventData map[string]interface{} // JSONB
	CreatedAt time.Time
}

// IdempotencyKey stores idempotency information for order submission
type IdempotencyKey struct {
	Key         string
	UserID      string
	OrderID     uuid.UUID
	RequestHash string
	CreatedAt   time.Time
}
