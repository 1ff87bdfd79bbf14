package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adityarahmanda/kopitera-backend/pkg/logger"
	"github.com/adityarahmanda/kopitera-backend/pkg/metrics"
	"github.com/google/uuid"
)

// snapshotWriter is the slice of the continuity store the submitter needs.
type snapshotWriter interface {
	SaveCompletedOrder(ctx context.Context, sessionKey string, order *CheckoutOrder) error
}

// Submitter reconciles a completed payment attempt with the storefront
// backend. The payment already happened by the time Submit runs, so the
// failure policy differs per path: gateway payments fall back to local
// persistence when the backend is down, cash payments fail outright because
// nothing has been charged yet.
type Submitter struct {
	backend   Creator
	snapshots snapshotWriter
	logg      *logger.Logger
	checkout  *metrics.CheckoutMetrics
}

// NewSubmitter wires the reconciler.
func NewSubmitter(backend Creator, snapshots snapshotWriter, logg *logger.Logger, checkout *metrics.CheckoutMetrics) *Submitter {
	return &Submitter{backend: backend, snapshots: snapshots, logg: logg, checkout: checkout}
}

// SubmitOptions controls the failure policy for one submission.
type SubmitOptions struct {
	// FallbackOnError persists the snapshot locally with SyncPending set
	// when the backend call fails. Used after a successful gateway charge,
	// where the money has already moved.
	FallbackOnError bool
}

// Submit sends the order to the backend and persists the confirmation
// snapshot. On backend failure with fallback enabled, the snapshot is still
// persisted and marked for later reconciliation; the buyer sees a normal
// confirmation.
func (s *Submitter) Submit(ctx context.Context, sessionKey string, order *CheckoutOrder, promotionIDs []int64, opts SubmitOptions) error {
	req := CreateOrderRequest{
		Items:        make([]CreateOrderItem, 0, len(order.Items)),
		PromotionIDs: promotionIDs,
		Notes:        order.Notes,
		OrderNumber:  order.OrderNumber,
		PaymentInfo: PaymentInfo{
			Type:          order.PaymentType,
			PaymentMethod: order.PaymentMethod.String(),
			TransactionID: order.TransactionID,
		},
	}
	for _, item := range order.Items {
		req.Items = append(req.Items, CreateOrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)

	_, err := s.backend.CreateOrder(ctx, req)
	if err != nil {
		if !opts.FallbackOnError {
			s.checkout.IncOrderSubmitted(order.PaymentMethod.String(), "failed")
			return err
		}
		s.logg.Error(ctx, "backend order submission failed, persisting locally", err)
		order.SyncPending = true
		if saveErr := s.snapshots.SaveCompletedOrder(ctx, sessionKey, order); saveErr != nil {
			return saveErr
		}
		s.checkout.IncOrderSubmitted(order.PaymentMethod.String(), "sync_pending")
		s.checkout.IncSyncFallback()
		return nil
	}

	if err := s.snapshots.SaveCompletedOrder(ctx, sessionKey, order); err != nil {
		return err
	}
	s.checkout.IncOrderSubmitted(order.PaymentMethod.String(), "submitted")
	s.logg.Info(ctx, "order submitted to storefront backend")
	return nil
}

// NewOrderNumber returns a human-readable order number, unique enough for
// receipt lookup.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("KPT-%s-%s", now.UTC().Format("20060102"), suffix)
}
