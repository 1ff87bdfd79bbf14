package promotion

import (
	"github.com/adityarahmanda/kopitera-backend/pkg/enums"
	"github.com/adityarahmanda/kopitera-backend/pkg/money"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Promotion is a server-owned discount rule. The client holds a read-only
// snapshot and never mutates usage counters.
type Promotion struct {
	ID                    int64               `json:"promotionId"`
	Name                  string              `json:"name"`
	Description           string              `json:"description"`
	Type                  enums.PromotionType `json:"promotionType"`
	DiscountValue         decimal.Decimal     `json:"discountValue"`
	MinimumPurchaseAmount int64               `json:"minimumPurchaseAmount,omitempty"`
	MaximumUses           *int                `json:"maximumUses,omitempty"`
	CurrentUses           int                 `json:"currentUses,omitempty"`
	MaxDiscountAmount     int64               `json:"maxDiscountAmount,omitempty"`
}

// Fraction returns the canonical percentage fraction in [0,1]. Catalog data is
// inconsistent about whether 10% arrives as 0.1 or 10; a value above 1 is
// treated as already-percent and divided by 100 here, in exactly one place.
func (p Promotion) Fraction() decimal.Decimal {
	if p.DiscountValue.GreaterThan(decimal.NewFromInt(1)) {
		return p.DiscountValue.Div(oneHundred)
	}
	return p.DiscountValue
}

// Exhausted reports whether the usage cap has been reached.
func (p Promotion) Exhausted() bool {
	return p.MaximumUses != nil && p.CurrentUses >= *p.MaximumUses
}

// DiscountFor computes this promotion's contribution against the given cart
// total, floored to minor units. A total below the minimum purchase amount
// contributes nothing.
func (p Promotion) DiscountFor(totalPrice int64) int64 {
	if totalPrice <= 0 {
		return 0
	}
	if p.MinimumPurchaseAmount > 0 && totalPrice < p.MinimumPurchaseAmount {
		return 0
	}

	switch p.Type {
	case enums.PromotionTypePercentage:
		raw := money.ApplyFraction(totalPrice, p.Fraction())
		if p.MaxDiscountAmount > 0 && raw > p.MaxDiscountAmount {
			raw = p.MaxDiscountAmount
		}
		return raw
	case enums.PromotionTypeFixedAmount:
		return money.Clamp(money.Floor(p.DiscountValue), totalPrice)
	default:
		return 0
	}
}
