package checkout

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/adityarahmanda/kopitera-backend/internal/catalog"
	"github.com/adityarahmanda/kopitera-backend/internal/promotion"
	"github.com/adityarahmanda/kopitera-backend/pkg/enums"
	"github.com/adityarahmanda/kopitera-backend/pkg/errors"
	"github.com/adityarahmanda/kopitera-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type staticCatalog struct {
	promos []promotion.Promotion
}

func (s *staticCatalog) AvailablePromotions(ctx context.Context, totalPrice int64) ([]promotion.Promotion, error) {
	return s.promos, nil
}

func testFeePolicy() FeePolicy {
	return FeePolicy{Rate: decimal.NewFromFloat(0.025), Minimum: 2000}
}

func newTestSession(t *testing.T, promos ...promotion.Promotion) *Session {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	session, err := NewSession("sess-1", &staticCatalog{promos: promos}, testFeePolicy(), logg)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return session
}

func kopiSusu() catalog.Product {
	return catalog.Product{ID: 12, Name: "Kopi Susu", Price: 25000, Stock: 10, IsAvailable: true}
}

func TestFeePolicy(t *testing.T) {
	t.Parallel()
	fee := testFeePolicy()
	cases := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{"below minimum uses minimum", 23333, 2000},
		{"exactly at minimum boundary", 80000, 2000},
		{"percentage above minimum", 120000, 3000},
		{"fraction rounds half away from zero", 100020, 2501},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := fee.FeeFor(tc.subtotal); got != tc.want {
				t.Fatalf("FeeFor(%d) = %d, want %d", tc.subtotal, got, tc.want)
			}
		})
	}
}

func TestEnterPaymentRejectsEmptyCart(t *testing.T) {
	t.Parallel()
	session := newTestSession(t)

	_, err := session.EnterPayment()
	if err == nil {
		t.Fatal("expected error for empty cart")
	}
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if session.Step() != enums.StepOrder {
		t.Fatalf("step moved despite rejection: %s", session.Step())
	}
}

func TestEnterPaymentFreezesTotals(t *testing.T) {
	t.Parallel()
	session := newTestSession(t)
	if err := session.AddItem(kopiSusu(), "12", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	totals, err := session.EnterPayment()
	if err != nil {
		t.Fatalf("EnterPayment: %v", err)
	}
	if totals.Subtotal != 50000 {
		t.Fatalf("subtotal = %d, want 50000", totals.Subtotal)
	}
	if totals.ServiceFee != 2000 {
		t.Fatalf("service fee = %d, want minimum 2000", totals.ServiceFee)
	}
	if totals.Total != 52000 {
		t.Fatalf("total = %d, want 52000", totals.Total)
	}
	if session.Step() != enums.StepPayment {
		t.Fatalf("step = %s, want payment", session.Step())
	}

	// Cart, selection, and notes are read-only now.
	if err := session.AddItem(kopiSusu(), "12", 1); err == nil {
		t.Fatal("expected cart mutation to be rejected on payment step")
	}
	if err := session.SetNotes("less ice"); err == nil {
		t.Fatal("expected notes mutation to be rejected on payment step")
	}
	if _, err := session.TogglePromotion(1); err == nil {
		t.Fatal("expected promotion toggle to be rejected on payment step")
	}

	// Re-entering payment returns the same frozen snapshot.
	again, err := session.EnterPayment()
	if err != nil {
		t.Fatalf("re-enter payment: %v", err)
	}
	if again != totals {
		t.Fatalf("snapshot changed across re-entry: %+v vs %+v", again, totals)
	}
}

func TestEnterPaymentAppliesSelectedDiscount(t *testing.T) {
	t.Parallel()
	tenPercent := promotion.Promotion{
		ID:            7,
		Name:          "Kopi Pagi",
		Type:          enums.PromotionTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
	}
	session := newTestSession(t, tenPercent)
	if err := session.AddItem(kopiSusu(), "12", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := session.RefreshPromotions(context.Background()); err != nil {
		t.Fatalf("RefreshPromotions: %v", err)
	}
	if _, err := session.TogglePromotion(7); err != nil {
		t.Fatalf("TogglePromotion: %v", err)
	}

	totals, err := session.EnterPayment()
	if err != nil {
		t.Fatalf("EnterPayment: %v", err)
	}
	if totals.Discount != 5000 {
		t.Fatalf("discount = %d, want 5000", totals.Discount)
	}
	if totals.Total != 50000+2000-5000 {
		t.Fatalf("total = %d, want 47000", totals.Total)
	}
}

func TestBackToOrderRestoresMutability(t *testing.T) {
	t.Parallel()
	session := newTestSession(t)
	if err := session.AddItem(kopiSusu(), "12", 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := session.EnterPayment(); err != nil {
		t.Fatalf("EnterPayment: %v", err)
	}

	if err := session.BackToOrder(); err != nil {
		t.Fatalf("BackToOrder: %v", err)
	}
	if session.Step() != enums.StepOrder {
		t.Fatalf("step = %s, want order", session.Step())
	}
	if _, ok := session.Totals(); ok {
		t.Fatal("expected frozen snapshot discarded")
	}
	if session.TotalPrice() != 25000 {
		t.Fatalf("cart lost on back navigation: total %d", session.TotalPrice())
	}
	if err := session.AddItem(kopiSusu(), "12", 1); err != nil {
		t.Fatalf("cart should be mutable again: %v", err)
	}

	if err := session.BackToOrder(); err == nil {
		t.Fatal("expected back navigation to fail from order step")
	}
}

func TestCompletePaymentResetsForNextOrder(t *testing.T) {
	t.Parallel()
	session := newTestSession(t)
	if err := session.AddItem(kopiSusu(), "12", 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := session.SetNotes("takeaway"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}
	if _, err := session.EnterPayment(); err != nil {
		t.Fatalf("EnterPayment: %v", err)
	}

	if err := session.CompletePayment(); err != nil {
		t.Fatalf("CompletePayment: %v", err)
	}
	if session.Step() != enums.StepConfirmation {
		t.Fatalf("step = %s, want confirmation", session.Step())
	}
	if !session.IsEmpty() {
		t.Fatal("cart should be cleared after completion")
	}
	if session.Notes() != "" {
		t.Fatal("notes should be cleared after completion")
	}
	if len(session.SelectedPromotions()) != 0 {
		t.Fatal("promotion selection should be cleared after completion")
	}

	if err := session.CompletePayment(); err == nil {
		t.Fatal("expected completion to fail from confirmation step")
	}
	if err := session.StartNewOrder(); err != nil {
		t.Fatalf("StartNewOrder: %v", err)
	}
	if session.Step() != enums.StepOrder {
		t.Fatalf("step = %s, want order", session.Step())
	}
}

type countingCatalog struct {
	mu   sync.Mutex
	seen chan int64
}

func (c *countingCatalog) AvailablePromotions(ctx context.Context, totalPrice int64) ([]promotion.Promotion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case c.seen <- totalPrice:
	default:
	}
	return nil, nil
}

func TestEmptyingCartSkipsPromotionRefetch(t *testing.T) {
	t.Parallel()
	cat := &countingCatalog{seen: make(chan int64, 4)}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	session, err := NewSession("sess-1", cat, testFeePolicy(), logg)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if err := session.AddItem(kopiSusu(), "12", 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	select {
	case total := <-cat.seen:
		if total != 25000 {
			t.Fatalf("refetch total = %d, want 25000", total)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("adding an item should refetch promotions")
	}

	if err := session.RemoveItem("12"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	select {
	case total := <-cat.seen:
		t.Fatalf("emptying the cart must not refetch promotions, saw refetch at %d", total)
	case <-time.After(100 * time.Millisecond):
	}
}
