package promo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/repository"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

// Validator validates a promo code against an order snapshot. A returned
// application is only trusted against that exact snapshot: any change to the
// sets, delivery method, or speed requires revalidation.
type Validator interface {
	Validate(ctx context.Context, code string, snap domain.OrderSnapshot, userID string) (*domain.PromoApplication, error)
}

type codeValidator struct {
	promos repository.PromoCodeRepository
	shapes repository.ShapeRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewValidator creates a validator backed by the promo-code store and the
// shape catalog (for minimum-spend checks).
func NewValidator(promos repository.PromoCodeRepository, shapes repository.ShapeRepository, logger *zap.Logger) Validator {
	return &codeValidator{
		promos: promos,
		shapes: shapes,
		logger: logger,
		now:    time.Now,
	}
}

// Validate resolves the code's concrete discount terms for the snapshot.
// Idempotent: revalidating against an unchanged snapshot yields the same
// discount as the original validation.
func (v *codeValidator) Validate(ctx context.Context, code string, snap domain.OrderSnapshot, userID string) (*domain.PromoApplication, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, &errors.ErrInvalidPromo{Code: code, Reason: "empty code"}
	}

	promo, err := v.promos.GetByCode(ctx, code)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return nil, &errors.ErrInvalidPromo{Code: code, Reason: "unknown code"}
		}
		return nil, &errors.ErrServiceUnavailable{Service: "promo validation", Err: err}
	}

	now := v.now()
	switch {
	case !promo.IsActive:
		return nil, &errors.ErrInvalidPromo{Code: code, Reason: "code is no longer active"}
	case promo.StartsAt != nil && now.Before(*promo.StartsAt):
		return nil, &errors.ErrInvalidPromo{Code: code, Reason: "code is not active yet"}
	case promo.ExpiresAt != nil && now.After(*promo.ExpiresAt):
		return nil, &errors.ErrInvalidPromo{Code: code, Reason: "code has expired"}
	case len(snap.Sets) == 0:
		return nil, &errors.ErrInvalidPromo{Code: code, Reason: "order has no nail sets"}
	}

	subtotal, err := v.snapshotSubtotal(ctx, snap)
	if err != nil {
		return nil, err
	}
	if subtotal.LessThan(promo.MinSubtotal) {
		return nil, &errors.ErrInvalidPromo{
			Code:   code,
			Reason: fmt.Sprintf("order subtotal below minimum of %s", promo.MinSubtotal.StringFixed(2)),
		}
	}

	amount := promo.Amount
	if promo.Kind == "percent" {
		amount = subtotal.Mul(promo.Amount).Div(decimal.NewFromInt(100)).Round(2)
	}
	// A discount can never exceed what the sets cost.
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}

	v.logger.Debug("Promo code validated",
		zap.String("code", code),
		zap.String("user_id", userID),
		zap.String("discount", amount.StringFixed(2)),
	)

	return &domain.PromoApplication{
		Code:                code,
		Valid:               true,
		DiscountDescription: promo.Description,
		DiscountAmount:      amount,
	}, nil
}

func (v *codeValidator) snapshotSubtotal(ctx context.Context, snap domain.OrderSnapshot) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, set := range snap.Sets {
		shape, err := v.shapes.GetByID(ctx, set.ShapeID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				return decimal.Zero, &errors.ErrInvalidPromo{Code: "", Reason: "order references an unknown shape"}
			}
			return decimal.Zero, &errors.ErrServiceUnavailable{Service: "shape catalog", Err: err}
		}
		qty := set.Quantity
		if qty < 1 {
			qty = 1
		}
		total = total.Add(shape.UnitPrice().Mul(decimal.NewFromInt(int64(qty))))
	}
	return total, nil
}
