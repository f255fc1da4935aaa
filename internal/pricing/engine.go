package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

// LineItemKind classifies a breakdown line.
type LineItemKind string

const (
	LineItemSet      LineItemKind = "set"
	LineItemDelivery LineItemKind = "delivery"
	LineItemDiscount LineItemKind = "discount"
)

// LineItem is one row of the price breakdown. Discount amounts are negative.
type LineItem struct {
	Kind     LineItemKind    `json:"kind"`
	Label    string          `json:"label"`
	Quantity int             `json:"quantity,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// Breakdown is the computed pricing result for an order draft.
type Breakdown struct {
	LineItems               []LineItem      `json:"line_items"`
	Total                   decimal.Decimal `json:"total"`
	EstimatedCompletionDays int             `json:"estimated_completion_days"`
}

// Input is everything Compute needs. Promo contributes only when valid.
type Input struct {
	Sets     []domain.NailSetDraft
	Delivery domain.DeliveryDetails
	Promo    *domain.PromoApplication
}

// Engine prices order drafts against a shape catalog and delivery-method
// table. Compute is pure: identical input yields identical output, so it can
// back live-preview pricing as the user types.
type Engine struct {
	shapes  map[string]domain.Shape
	methods map[domain.DeliveryMethodID]domain.DeliveryMethodConfig
}

// NewEngine creates a pricing engine over catalog snapshots.
func NewEngine(shapes []domain.Shape, methods []domain.DeliveryMethodConfig) *Engine {
	e := &Engine{
		shapes:  make(map[string]domain.Shape, len(shapes)),
		methods: make(map[domain.DeliveryMethodID]domain.DeliveryMethodConfig, len(methods)),
	}
	for _, s := range shapes {
		e.shapes[s.ID] = s
	}
	for _, m := range methods {
		e.methods[m.ID] = m
	}
	return e
}

// Compute builds the line-item breakdown and total for the input.
// Each set contributes basePrice(shape) * quantity. Delivery contributes a
// flat fee from the (method, speed) table; pickup/standard is the zero-fee
// default. A valid promo subtracts its discount as a negative line. The total
// is clamped at zero, never negative.
func (e *Engine) Compute(in Input) (*Breakdown, error) {
	out := &Breakdown{Total: decimal.Zero}

	for _, set := range in.Sets {
		shape, ok := e.shapes[set.ShapeID]
		if !ok {
			return nil, &errors.ErrNotFound{Resource: "shape", ID: set.ShapeID}
		}
		qty := set.Quantity
		if qty < 1 {
			qty = 1
		}
		unit := shape.UnitPrice()
		amount := unit.Mul(decimal.NewFromInt(int64(qty)))
		out.LineItems = append(out.LineItems, LineItem{
			Kind:     LineItemSet,
			Label:    shape.Name,
			Quantity: qty,
			Amount:   amount,
		})
		out.Total = out.Total.Add(amount)
	}

	fee, days, label, err := e.deliveryFee(in.Delivery.Method, in.Delivery.Speed)
	if err != nil {
		return nil, err
	}
	out.EstimatedCompletionDays = days
	if !fee.IsZero() {
		out.LineItems = append(out.LineItems, LineItem{
			Kind:   LineItemDelivery,
			Label:  label,
			Amount: fee,
		})
		out.Total = out.Total.Add(fee)
	}

	if in.Promo != nil && in.Promo.Valid && in.Promo.DiscountAmount.IsPositive() {
		discount := in.Promo.DiscountAmount.Neg()
		out.LineItems = append(out.LineItems, LineItem{
			Kind:   LineItemDiscount,
			Label:  fmt.Sprintf("Promo %s", in.Promo.Code),
			Amount: discount,
		})
		out.Total = out.Total.Add(discount)
	}

	if out.Total.IsNegative() {
		out.Total = decimal.Zero
	}

	return out, nil
}

// Subtotal prices only the sets, with no delivery fee or discount. Promo
// validation uses it to check minimum-spend terms.
func (e *Engine) Subtotal(sets []domain.NailSetDraft) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, set := range sets {
		shape, ok := e.shapes[set.ShapeID]
		if !ok {
			return decimal.Zero, &errors.ErrNotFound{Resource: "shape", ID: set.ShapeID}
		}
		qty := set.Quantity
		if qty < 1 {
			qty = 1
		}
		total = total.Add(shape.UnitPrice().Mul(decimal.NewFromInt(int64(qty))))
	}
	return total, nil
}

// UnitPrice looks up the effective per-set price for a shape.
func (e *Engine) UnitPrice(shapeID string) (decimal.Decimal, error) {
	shape, ok := e.shapes[shapeID]
	if !ok {
		return decimal.Zero, &errors.ErrNotFound{Resource: "shape", ID: shapeID}
	}
	return shape.UnitPrice(), nil
}

// deliveryFee resolves the flat fee and completion estimate for a method and
// speed. Pickup at standard speed is the zero-fee default even when the
// delivery-method table is missing or incomplete.
func (e *Engine) deliveryFee(method domain.DeliveryMethodID, speed domain.DeliverySpeed) (decimal.Decimal, int, string, error) {
	if method == "" {
		method = domain.DeliveryMethodPickup
	}
	if speed == "" {
		speed = domain.DeliverySpeedStandard
	}

	cfg, ok := e.methods[method]
	if !ok {
		if method == domain.DeliveryMethodPickup && speed == domain.DeliverySpeedStandard {
			return decimal.Zero, 0, "", nil
		}
		return decimal.Zero, 0, "", &errors.ErrNotFound{Resource: "delivery method", ID: string(method)}
	}

	opt, ok := cfg.SpeedOptions[speed]
	if !ok {
		return decimal.Zero, 0, "", &errors.ErrNotFound{
			Resource: "delivery speed",
			ID:       fmt.Sprintf("%s/%s", method, speed),
		}
	}

	label := cfg.Label
	if opt.Label != "" {
		label = fmt.Sprintf("%s (%s)", cfg.Label, opt.Label)
	}
	return opt.Fee, opt.EstimatedDays, label, nil
}
