package promotion

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/adityarahmanda/kopitera-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

func TestDiscountForPercentageCap(t *testing.T) {
	t.Parallel()

	promo := Promotion{
		ID:                1,
		Type:              enums.PromotionTypePercentage,
		DiscountValue:     decimal.RequireFromString("0.5"),
		MaxDiscountAmount: 5000,
	}

	if got := promo.DiscountFor(20000); got != 5000 {
		t.Fatalf("expected cap at 5000, got %d", got)
	}
}

func TestDiscountForMinimumPurchaseGate(t *testing.T) {
	t.Parallel()

	promo := Promotion{
		ID:                    2,
		Type:                  enums.PromotionTypeFixedAmount,
		DiscountValue:         decimal.NewFromInt(10000),
		MinimumPurchaseAmount: 50000,
	}

	if got := promo.DiscountFor(30000); got != 0 {
		t.Fatalf("below-minimum total must contribute nothing, got %d", got)
	}
	if got := promo.DiscountFor(50000); got != 10000 {
		t.Fatalf("at-minimum total should qualify, got %d", got)
	}
}

func TestDiscountForFixedAmountClampedToTotal(t *testing.T) {
	t.Parallel()

	promo := Promotion{
		ID:            3,
		Type:          enums.PromotionTypeFixedAmount,
		DiscountValue: decimal.NewFromInt(40000),
	}

	if got := promo.DiscountFor(25000); got != 25000 {
		t.Fatalf("fixed discount must not exceed total, got %d", got)
	}
}

func TestFractionNormalizesPercentValues(t *testing.T) {
	t.Parallel()

	asFraction := Promotion{Type: enums.PromotionTypePercentage, DiscountValue: decimal.RequireFromString("0.1")}
	asPercent := Promotion{Type: enums.PromotionTypePercentage, DiscountValue: decimal.NewFromInt(10)}

	if got := asFraction.DiscountFor(20000); got != 2000 {
		t.Fatalf("fraction form: expected 2000, got %d", got)
	}
	if got := asPercent.DiscountFor(20000); got != 2000 {
		t.Fatalf("percent form: expected 2000, got %d", got)
	}
}

func TestDiscountFloorsFractionalMinorUnits(t *testing.T) {
	t.Parallel()

	promo := Promotion{Type: enums.PromotionTypePercentage, DiscountValue: decimal.RequireFromString("0.1")}
	// 23333 * 0.1 = 2333.3 -> 2333
	if got := promo.DiscountFor(23333); got != 2333 {
		t.Fatalf("expected floored 2333, got %d", got)
	}
}

func TestExhaustedPromotionsDropped(t *testing.T) {
	t.Parallel()

	uses := 3
	promo := Promotion{MaximumUses: &uses, CurrentUses: 3}
	if !promo.Exhausted() {
		t.Fatalf("expected exhausted")
	}
	promo.CurrentUses = 2
	if promo.Exhausted() {
		t.Fatalf("expected not exhausted")
	}
}

func TestEvaluatorDiscountDeterministicAndStacking(t *testing.T) {
	t.Parallel()

	catalog := &stubCatalog{promotions: []Promotion{
		{ID: 3, Type: enums.PromotionTypePercentage, DiscountValue: decimal.RequireFromString("0.1")},
		{ID: 7, Type: enums.PromotionTypeFixedAmount, DiscountValue: decimal.NewFromInt(5000)},
		{ID: 9, Type: enums.PromotionTypeFixedAmount, DiscountValue: decimal.NewFromInt(9999), MinimumPurchaseAmount: 100000},
	}}
	eval := newTestEvaluator(t, catalog)
	if err := eval.Refresh(context.Background(), 60000); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	eval.Toggle(3)
	eval.Toggle(7)
	eval.Toggle(9) // below minimum purchase, silently excluded

	first := eval.Discount(60000)
	second := eval.Discount(60000)
	if first != second {
		t.Fatalf("discount must be deterministic: %d vs %d", first, second)
	}
	if first != 6000+5000 {
		t.Fatalf("expected stacked 11000, got %d", first)
	}
}

func TestEvaluatorToggleAndRestoreIdempotent(t *testing.T) {
	t.Parallel()

	eval := newTestEvaluator(t, &stubCatalog{})

	eval.Toggle(3)
	eval.Toggle(7)
	eval.RestoreSelection([]int64{3, 7})

	got := eval.Selected()
	if len(got) != 2 || got[0] != 3 || got[1] != 7 {
		t.Fatalf("re-hydration must not flip selections off, got %v", got)
	}

	if eval.Toggle(3) {
		t.Fatalf("second toggle should deselect")
	}
	if eval.IsSelected(3) {
		t.Fatalf("id 3 should be deselected")
	}
}

func TestEvaluatorRefreshFailureKeepsSnapshot(t *testing.T) {
	t.Parallel()

	catalog := &stubCatalog{promotions: []Promotion{
		{ID: 1, Type: enums.PromotionTypeFixedAmount, DiscountValue: decimal.NewFromInt(2000)},
	}}
	eval := newTestEvaluator(t, catalog)
	if err := eval.Refresh(context.Background(), 10000); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	eval.Toggle(1)

	catalog.err = errors.New("backend down")
	if err := eval.Refresh(context.Background(), 10000); err == nil {
		t.Fatalf("expected refresh error")
	}

	if got := eval.Discount(10000); got != 2000 {
		t.Fatalf("failed refresh must keep previous snapshot, got discount %d", got)
	}
}

func TestEvaluatorStaleRefreshDiscarded(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	catalog := &blockingCatalog{
		started: make(chan struct{}),
		release: release,
		first:   []Promotion{{ID: 1, Type: enums.PromotionTypeFixedAmount, DiscountValue: decimal.NewFromInt(1000)}},
		rest:    []Promotion{{ID: 2, Type: enums.PromotionTypeFixedAmount, DiscountValue: decimal.NewFromInt(7000)}},
	}
	eval := newTestEvaluator(t, catalog)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = eval.Refresh(context.Background(), 10000) // stale: started first, resolves last
	}()
	<-catalog.started

	if err := eval.Refresh(context.Background(), 99000); err != nil {
		t.Fatalf("newer refresh failed: %v", err)
	}
	close(release)
	wg.Wait()

	available := eval.Available()
	if len(available) != 1 || available[0].ID != 2 {
		t.Fatalf("stale response must not overwrite newer snapshot, got %+v", available)
	}
}

func newTestEvaluator(t *testing.T, catalog Catalog) *Evaluator {
	t.Helper()
	eval, err := NewEvaluator(catalog)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	return eval
}

type stubCatalog struct {
	promotions []Promotion
	err        error
}

func (s *stubCatalog) AvailablePromotions(ctx context.Context, totalPrice int64) ([]Promotion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.promotions, nil
}

type blockingCatalog struct {
	started chan struct{}
	release chan struct{}
	first   []Promotion
	rest    []Promotion
	calls   int
	mu      sync.Mutex
}

func (b *blockingCatalog) AvailablePromotions(ctx context.Context, totalPrice int64) ([]Promotion, error) {
	b.mu.Lock()
	b.calls++
	call := b.calls
	b.mu.Unlock()

	if call == 1 {
		close(b.started)
		<-b.release
		return b.first, nil
	}
	return b.rest, nil
}
