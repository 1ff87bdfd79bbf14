package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/adityarahmanda/kopitera-backend/internal/cart"
	"github.com/adityarahmanda/kopitera-backend/internal/catalog"
	"github.com/adityarahmanda/kopitera-backend/internal/promotion"
	"github.com/adityarahmanda/kopitera-backend/pkg/enums"
	"github.com/adityarahmanda/kopitera-backend/pkg/errors"
	"github.com/adityarahmanda/kopitera-backend/pkg/logger"
	"github.com/adityarahmanda/kopitera-backend/pkg/money"
	"github.com/shopspring/decimal"
)

const promotionRefreshTimeout = 5 * time.Second

// Totals is the pricing snapshot frozen when the buyer enters the payment
// step. The gateway charge and the submitted order both read from it, so the
// amount the buyer saw is exactly the amount charged.
type Totals struct {
	Subtotal   int64 `json:"subtotal"`
	ServiceFee int64 `json:"serviceFee"`
	Discount   int64 `json:"discount"`
	Total      int64 `json:"total"`
}

// FeePolicy computes the storefront service fee.
type FeePolicy struct {
	Rate    decimal.Decimal
	Minimum int64
}

// FeeFor returns the fee for a subtotal: the configured percentage rounded to
// the nearest rupiah, floored at the configured minimum.
func (f FeePolicy) FeeFor(subtotal int64) int64 {
	fee := money.Round(decimal.NewFromInt(subtotal).Mul(f.Rate))
	if fee < f.Minimum {
		fee = f.Minimum
	}
	return fee
}

// Session is one buyer's checkout: a cart, a promotion selection, and the
// order/payment/confirmation step machine. All methods are safe for
// concurrent use.
type Session struct {
	Key       string
	CreatedAt time.Time

	mu         sync.Mutex
	step       enums.CheckoutStep
	cart       *cart.Cart
	promos     *promotion.Evaluator
	fee        FeePolicy
	notes      string
	totals     *Totals
	lastActive time.Time

	logg *logger.Logger
}

// NewSession builds a session on the order step with an empty cart. Cart
// changes trigger an asynchronous promotion refresh; the evaluator discards
// stale responses itself.
func NewSession(key string, promoCatalog promotion.Catalog, fee FeePolicy, logg *logger.Logger) (*Session, error) {
	if key == "" {
		return nil, errors.New(errors.CodeValidation, "session key required")
	}
	evaluator, err := promotion.NewEvaluator(promoCatalog)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	s := &Session{
		Key:        key,
		CreatedAt:  now,
		step:       enums.StepOrder,
		cart:       cart.New(),
		promos:     evaluator,
		fee:        fee,
		lastActive: now,
		logg:       logg,
	}
	s.cart.OnChange(func(totalPrice int64) {
		// Availability only matters while there is something to discount;
		// emptying the cart does not refetch.
		if totalPrice == 0 {
			return
		}
		go s.refreshPromotions(totalPrice)
	})
	return s, nil
}

func (s *Session) refreshPromotions(totalPrice int64) {
	ctx, cancel := context.WithTimeout(context.Background(), promotionRefreshTimeout)
	defer cancel()
	if err := s.promos.Refresh(ctx, totalPrice); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithSessionKey(ctx, s.Key), "promotion refresh failed", err)
	}
}

// Step returns the current checkout step.
func (s *Session) Step() enums.CheckoutStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Touch records activity for idle expiry.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
}

// IdleSince returns the last activity timestamp.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// guardOrderStep rejects cart and selection mutations once the buyer has
// moved past the order step.
func (s *Session) guardOrderStep() error {
	if s.step != enums.StepOrder {
		return errors.New(errors.CodeStateConflict, "cart is read-only on the "+s.step.String()+" step").
			WithDetails(map[string]string{"step": s.step.String()})
	}
	return nil
}

// AddItem adds or merges a cart line.
func (s *Session) AddItem(product catalog.Product, uniqueKey string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardOrderStep(); err != nil {
		return err
	}
	s.cart.AddItem(product, uniqueKey, quantity)
	return nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *Session) UpdateQuantity(uniqueKey string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardOrderStep(); err != nil {
		return err
	}
	s.cart.UpdateQuantity(uniqueKey, quantity)
	return nil
}

// RemoveItem drops a cart line.
func (s *Session) RemoveItem(uniqueKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardOrderStep(); err != nil {
		return err
	}
	s.cart.RemoveItem(uniqueKey)
	return nil
}

// SetNotes stores free-form order notes.
func (s *Session) SetNotes(notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardOrderStep(); err != nil {
		return err
	}
	s.notes = notes
	return nil
}

// Notes returns the order notes.
func (s *Session) Notes() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes
}

// Items returns a copy of the cart lines.
func (s *Session) Items() []cart.Item { return s.cart.Items() }

// TotalItems returns the summed cart quantity.
func (s *Session) TotalItems() int { return s.cart.TotalItems() }

// TotalPrice returns the live cart total.
func (s *Session) TotalPrice() int64 { return s.cart.TotalPrice() }

// IsEmpty reports whether the cart has no lines.
func (s *Session) IsEmpty() bool { return s.cart.IsEmpty() }

// RefreshPromotions synchronously re-evaluates promotion availability against
// the current cart total.
func (s *Session) RefreshPromotions(ctx context.Context) error {
	return s.promos.Refresh(ctx, s.cart.TotalPrice())
}

// AvailablePromotions returns the current availability snapshot.
func (s *Session) AvailablePromotions() []promotion.Promotion {
	return s.promos.Available()
}

// PromotionsLoading reports whether a refresh is in flight.
func (s *Session) PromotionsLoading() bool { return s.promos.IsLoading() }

// TogglePromotion flips a promotion's selected state. Selection is only
// mutable on the order step.
func (s *Session) TogglePromotion(promotionID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardOrderStep(); err != nil {
		return false, err
	}
	return s.promos.Toggle(promotionID), nil
}

// SelectedPromotions returns the selected promotion ids in ascending order.
func (s *Session) SelectedPromotions() []int64 { return s.promos.Selected() }

// RestorePromotionSelection re-applies a persisted selection during
// re-hydration.
func (s *Session) RestorePromotionSelection(ids []int64) { s.promos.RestoreSelection(ids) }

// Discount returns the discount the current selection yields for the live
// cart total.
func (s *Session) Discount() int64 {
	return s.promos.Discount(s.cart.TotalPrice())
}

// EnterPayment freezes the pricing snapshot and moves to the payment step.
// An empty cart cannot enter payment. Re-entering while already on the
// payment step returns the existing snapshot unchanged.
func (s *Session) EnterPayment() (Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step == enums.StepPayment && s.totals != nil {
		return *s.totals, nil
	}
	if s.step != enums.StepOrder {
		return Totals{}, errors.New(errors.CodeStateConflict, "cannot enter payment from the "+s.step.String()+" step")
	}
	if s.cart.IsEmpty() {
		return Totals{}, errors.New(errors.CodeStateConflict, "cannot enter payment with an empty cart")
	}

	subtotal := s.cart.TotalPrice()
	totals := Totals{
		Subtotal:   subtotal,
		ServiceFee: s.fee.FeeFor(subtotal),
		Discount:   s.promos.Discount(subtotal),
	}
	totals.Total = totals.Subtotal + totals.ServiceFee - totals.Discount
	s.totals = &totals
	s.step = enums.StepPayment
	return totals, nil
}

// BackToOrder discards the frozen snapshot and returns to the order step,
// cart and selection intact.
func (s *Session) BackToOrder() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != enums.StepPayment {
		return errors.New(errors.CodeStateConflict, "cannot go back to order from the "+s.step.String()+" step")
	}
	s.totals = nil
	s.step = enums.StepOrder
	return nil
}

// Totals returns the frozen pricing snapshot, if one exists.
func (s *Session) Totals() (Totals, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.totals == nil {
		return Totals{}, false
	}
	return *s.totals, true
}

// CompletePayment moves to the confirmation step and resets cart state for
// the next order. Called by the payment dispatcher after the order snapshot
// has been persisted.
func (s *Session) CompletePayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != enums.StepPayment {
		return errors.New(errors.CodeStateConflict, "cannot complete payment from the "+s.step.String()+" step")
	}
	s.cart.Clear()
	s.promos.ClearSelection()
	s.notes = ""
	s.totals = nil
	s.step = enums.StepConfirmation
	return nil
}

// StartNewOrder returns a confirmation-step session to the order step so the
// buyer can shop again.
func (s *Session) StartNewOrder() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != enums.StepConfirmation {
		return errors.New(errors.CodeStateConflict, "cannot start a new order from the "+s.step.String()+" step")
	}
	s.step = enums.StepOrder
	return nil
}
