package continuity

import (
	"context"
	"testing"
	"time"

	"github.com/adityarahmanda/kopitera-backend/internal/orders"
	"github.com/adityarahmanda/kopitera-backend/pkg/enums"
)

func newTestStore(t *testing.T) (*Store, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV()
	store, err := NewStore(kv, time.Hour, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, kv
}

func TestSelectedPromotionsRoundTrip(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveSelectedPromotions(ctx, "sess-1", []int64{7, 3, 12}); err != nil {
		t.Fatalf("save: %v", err)
	}
	ids, err := store.LoadSelectedPromotions(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ids) != 3 || ids[0] != 7 || ids[1] != 3 || ids[2] != 12 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestSelectedPromotionsEmptySelectionDeletesKey(t *testing.T) {
	t.Parallel()
	store, kv := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveSelectedPromotions(ctx, "sess-1", []int64{4}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveSelectedPromotions(ctx, "sess-1", nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	if _, err := kv.Get(ctx, "sess-1", nameSelectedPromotions); err != ErrNotFound {
		t.Fatalf("expected key removed, got err=%v", err)
	}
	ids, err := store.LoadSelectedPromotions(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty selection, got %v", ids)
	}
}

func TestSelectedPromotionsCorruptValueIsDiscarded(t *testing.T) {
	t.Parallel()
	store, kv := newTestStore(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "sess-1", nameSelectedPromotions, "7,banana,9", 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ids, err := store.LoadSelectedPromotions(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ids != nil {
		t.Fatalf("expected corrupt value treated as absent, got %v", ids)
	}
}

func TestCompletedOrderRoundTrip(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	want := &orders.CheckoutOrder{
		OrderNumber:   "KPT-20260901-ABC123",
		OrderDate:     time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
		Items:         []orders.OrderItem{{ProductID: 12, Name: "Kopi Susu", UnitPrice: 25000, Quantity: 2, Subtotal: 50000}},
		Subtotal:      50000,
		ServiceFee:    2000,
		Discount:      5000,
		Total:         47000,
		PaymentMethod: enums.PaymentMethodCash,
		PaymentStatus: enums.PaymentStatusPending,
	}
	if err := store.SaveCompletedOrder(ctx, "sess-1", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.LoadCompletedOrder(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("expected snapshot, got nil")
	}
	if got.OrderNumber != want.OrderNumber || got.Total != want.Total || got.PaymentMethod != want.PaymentMethod {
		t.Fatalf("snapshot mismatch: %+v", got)
	}

	// Confirmation reload must see the same snapshot again.
	again, err := store.LoadCompletedOrder(ctx, "sess-1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again == nil || again.OrderNumber != want.OrderNumber {
		t.Fatalf("expected snapshot to survive a read, got %+v", again)
	}
}

func TestCompletedOrderAbsentAndCorrupt(t *testing.T) {
	t.Parallel()
	store, kv := newTestStore(t)
	ctx := context.Background()

	got, err := store.LoadCompletedOrder(ctx, "sess-1")
	if err != nil || got != nil {
		t.Fatalf("expected nil,nil for absent snapshot, got %+v, %v", got, err)
	}

	if err := kv.Set(ctx, "sess-1", nameCompletedOrder, "{not json", 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err = store.LoadCompletedOrder(ctx, "sess-1")
	if err != nil || got != nil {
		t.Fatalf("expected corrupt snapshot treated as absent, got %+v, %v", got, err)
	}
}
