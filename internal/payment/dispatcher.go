package payment

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/adityarahmanda/kopitera-backend/internal/checkout"
	"github.com/adityarahmanda/kopitera-backend/internal/orders"
	"github.com/adityarahmanda/kopitera-backend/pkg/enums"
	"github.com/adityarahmanda/kopitera-backend/pkg/errors"
	"github.com/adityarahmanda/kopitera-backend/pkg/logger"
	"github.com/adityarahmanda/kopitera-backend/pkg/metrics"
	"github.com/google/uuid"
)

// submitter is the reconciliation surface the dispatcher needs.
type submitter interface {
	Submit(ctx context.Context, sessionKey string, order *orders.CheckoutOrder, promotionIDs []int64, opts orders.SubmitOptions) error
}

// Dispatcher routes a confirmed payment down the cash or gateway path and
// turns popup callbacks into order completion.
type Dispatcher struct {
	sessions *checkout.Service
	gateway  Gateway
	orders   submitter
	logg     *logger.Logger
	counters *metrics.CheckoutMetrics

	mu       sync.Mutex
	attempts map[string]*Attempt
}

// NewDispatcher wires the payment paths.
func NewDispatcher(sessions *checkout.Service, gateway Gateway, sub submitter, logg *logger.Logger, counters *metrics.CheckoutMetrics) (*Dispatcher, error) {
	if sessions == nil || gateway == nil || sub == nil {
		return nil, errors.New(errors.CodeInternal, "dispatcher dependencies missing")
	}
	return &Dispatcher{
		sessions: sessions,
		gateway:  gateway,
		orders:   sub,
		logg:     logg,
		counters: counters,
		attempts: make(map[string]*Attempt),
	}, nil
}

// PayResult is the outcome of starting a payment. Exactly one of Order
// (cash, settled immediately) or Attempt (gateway, popup pending) is set.
type PayResult struct {
	Method  enums.PaymentMethod
	Order   *orders.CheckoutOrder
	Attempt *Attempt
}

// Pay starts the payment for a session that is on the payment step with a
// frozen pricing snapshot. Cash settles at the counter and completes
// immediately; gateway methods return a popup token and wait for the
// callback.
func (d *Dispatcher) Pay(ctx context.Context, sessionKey string, method enums.PaymentMethod, customer Customer) (*PayResult, error) {
	if !method.IsValid() {
		return nil, errors.New(errors.CodeValidation, "unknown payment method").
			WithDetails(map[string]string{"paymentMethod": method.String()})
	}
	session, err := d.sessions.Get(sessionKey)
	if err != nil {
		return nil, err
	}
	totals, ok := session.Totals()
	if !ok || session.Step() != enums.StepPayment {
		return nil, errors.New(errors.CodeStateConflict, "session is not on the payment step")
	}

	ctx = d.logg.WithPaymentMethod(d.logg.WithSessionKey(ctx, sessionKey), method.String())
	if method == enums.PaymentMethodCash {
		return d.payCash(ctx, session, totals)
	}
	return d.beginGateway(ctx, session, totals, method, customer)
}

// payCash submits the order unpaid. Backend failure is fatal here: nothing
// has been charged, so the buyer keeps the cart and can retry.
func (d *Dispatcher) payCash(ctx context.Context, session *checkout.Session, totals checkout.Totals) (*PayResult, error) {
	order := buildOrder(session, totals, enums.PaymentMethodCash, time.Now())
	order.PaymentStatus = enums.PaymentStatusPending
	order.PaymentType = "cash"

	if err := d.orders.Submit(ctx, session.Key, order, session.SelectedPromotions(), orders.SubmitOptions{}); err != nil {
		return nil, err
	}
	if err := d.finishSession(ctx, session); err != nil {
		return nil, err
	}
	d.logg.Info(d.logg.WithOrderNumber(ctx, order.OrderNumber), "cash order placed")
	return &PayResult{Method: enums.PaymentMethodCash, Order: order}, nil
}

// beginGateway creates the gateway transaction for exactly the frozen total
// and parks an attempt until the popup reports back. Starting a new attempt
// abandons any unresolved one.
func (d *Dispatcher) beginGateway(ctx context.Context, session *checkout.Session, totals checkout.Totals, method enums.PaymentMethod, customer Customer) (*PayResult, error) {
	orderNumber := orders.NewOrderNumber(time.Now())
	charge, err := d.gateway.CreateTransaction(ctx, ChargeRequest{
		OrderNumber: orderNumber,
		GrossAmount: totals.Total,
		Method:      method,
		Customer:    customer,
		Items:       chargeItems(session, totals),
	})
	if err != nil {
		return nil, err
	}

	attempt := &Attempt{
		ID:          uuid.NewString(),
		OrderNumber: orderNumber,
		Token:       charge.Token,
		RedirectURL: charge.RedirectURL,
		Method:      method,
		GrossAmount: totals.Total,
	}
	d.mu.Lock()
	d.attempts[session.Key] = attempt
	d.mu.Unlock()

	d.logg.Info(d.logg.WithOrderNumber(ctx, orderNumber), "gateway transaction created")
	return &PayResult{Method: method, Attempt: attempt}, nil
}

// ResolveResult reports what a popup callback did to the checkout.
type ResolveResult struct {
	Outcome   enums.GatewayOutcome
	Completed bool
	Notice    string
	Order     *orders.CheckoutOrder
}

// Resolve applies one popup callback to the session's open attempt. Each
// attempt resolves at most once; a duplicate callback is a state conflict.
// Success completes the order, pending and error leave the buyer on the
// payment step with a notice, closed is a silent no-op. A success whose
// completion fails keeps the claim, so further callbacks are rejected and
// Status is the recovery path for the reparked attempt.
func (d *Dispatcher) Resolve(ctx context.Context, sessionKey, attemptID string, res Resolution) (*ResolveResult, error) {
	if !res.Outcome.IsValid() {
		return nil, errors.New(errors.CodeValidation, "unknown gateway outcome").
			WithDetails(map[string]string{"outcome": res.Outcome.String()})
	}
	session, err := d.sessions.Get(sessionKey)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	attempt := d.attempts[sessionKey]
	d.mu.Unlock()
	if attempt == nil || attempt.ID != attemptID {
		return nil, errors.New(errors.CodeNotFound, "payment attempt not found")
	}
	if !attempt.claim(res) {
		return nil, errors.New(errors.CodeStateConflict, "payment attempt already resolved")
	}

	ctx = d.logg.WithOrderNumber(d.logg.WithSessionKey(ctx, sessionKey), attempt.OrderNumber)
	d.counters.IncGatewayOutcome(res.Outcome.String())

	switch res.Outcome {
	case enums.GatewayOutcomeSuccess:
		return d.completeGateway(ctx, session, attempt, res)
	case enums.GatewayOutcomePending:
		d.logg.Info(ctx, "gateway payment pending")
		return &ResolveResult{Outcome: res.Outcome, Notice: "payment is pending, please complete it with your provider"}, nil
	case enums.GatewayOutcomeError:
		d.logg.Warn(ctx, "gateway payment failed")
		return &ResolveResult{Outcome: res.Outcome, Notice: "payment failed, please try again"}, nil
	default:
		// Popup dismissed. The buyer stays on the payment step and may
		// start a fresh attempt.
		return &ResolveResult{Outcome: res.Outcome}, nil
	}
}

// completeGateway turns a successful charge into a completed order. Both the
// popup callback and the status check land here, so the attempt slot is taken
// atomically up front: whoever removes the attempt submits, everyone else
// gets a state conflict. The money has moved, so backend submission falls
// back to local persistence rather than failing the buyer.
func (d *Dispatcher) completeGateway(ctx context.Context, session *checkout.Session, attempt *Attempt, res Resolution) (*ResolveResult, error) {
	d.mu.Lock()
	if d.attempts[session.Key] != attempt {
		d.mu.Unlock()
		return nil, errors.New(errors.CodeStateConflict, "payment attempt already completed")
	}
	delete(d.attempts, session.Key)
	d.mu.Unlock()

	totals, ok := session.Totals()
	if !ok {
		return nil, errors.New(errors.CodeStateConflict, "session is not on the payment step")
	}
	order := buildOrder(session, totals, attempt.Method, time.Now())
	order.OrderNumber = attempt.OrderNumber
	order.PaymentStatus = enums.PaymentStatusCompleted
	order.TransactionID = res.TransactionID
	order.PaymentType = res.PaymentType

	if err := d.orders.Submit(ctx, session.Key, order, session.SelectedPromotions(), orders.SubmitOptions{FallbackOnError: true}); err != nil {
		// The charge succeeded but nothing durable recorded it. Park the
		// attempt again so the status check can settle it once storage
		// recovers.
		d.reparkAttempt(session.Key, attempt)
		return nil, err
	}
	if err := d.finishSession(ctx, session); err != nil {
		return nil, err
	}

	d.logg.Info(ctx, "gateway order completed")
	return &ResolveResult{Outcome: enums.GatewayOutcomeSuccess, Completed: true, Order: order}, nil
}

// reparkAttempt returns an attempt to the open slot after a failed
// completion. A newer attempt started in the meantime keeps the slot.
func (d *Dispatcher) reparkAttempt(sessionKey string, attempt *Attempt) {
	d.mu.Lock()
	if _, ok := d.attempts[sessionKey]; !ok {
		d.attempts[sessionKey] = attempt
	}
	d.mu.Unlock()
}

// Status re-checks a pending attempt against the gateway. A settled charge
// completes the order as if the success callback had fired; anything else is
// reported back unchanged.
func (d *Dispatcher) Status(ctx context.Context, sessionKey string) (*ResolveResult, error) {
	session, err := d.sessions.Get(sessionKey)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	attempt := d.attempts[sessionKey]
	d.mu.Unlock()
	if attempt == nil {
		return nil, errors.New(errors.CodeNotFound, "payment attempt not found")
	}

	status, err := d.gateway.CheckTransaction(ctx, attempt.OrderNumber)
	if err != nil {
		return nil, err
	}
	settled := status.Status == "settlement" || (status.Status == "capture" && status.FraudStatus == "accept")
	if !settled {
		return &ResolveResult{Outcome: enums.GatewayOutcomePending, Notice: "transaction status: " + status.Status}, nil
	}
	return d.completeGateway(ctx, session, attempt, Resolution{
		Outcome:       enums.GatewayOutcomeSuccess,
		TransactionID: status.TransactionID,
		PaymentType:   status.PaymentType,
	})
}

// finishSession clears the persisted selection and advances to confirmation.
func (d *Dispatcher) finishSession(ctx context.Context, session *checkout.Session) error {
	if err := d.sessions.ClearPersistedSelection(ctx, session.Key); err != nil {
		d.logg.Warn(d.logg.WithSessionKey(ctx, session.Key), "clearing persisted promotion selection failed")
	}
	return session.CompletePayment()
}

// buildOrder freezes the session into an order snapshot. Must run before
// CompletePayment clears the cart.
func buildOrder(session *checkout.Session, totals checkout.Totals, method enums.PaymentMethod, now time.Time) *orders.CheckoutOrder {
	items := session.Items()
	lines := make([]orders.OrderItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, orders.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	return &orders.CheckoutOrder{
		OrderNumber:   orders.NewOrderNumber(now),
		OrderDate:     now.UTC(),
		Items:         lines,
		Subtotal:      totals.Subtotal,
		ServiceFee:    totals.ServiceFee,
		Discount:      totals.Discount,
		Total:         totals.Total,
		PaymentMethod: method,
		Notes:         session.Notes(),
	}
}

// chargeItems mirrors the frozen totals as gateway line items so the item sum
// equals the gross amount exactly.
func chargeItems(session *checkout.Session, totals checkout.Totals) []ChargeItem {
	items := session.Items()
	lines := make([]ChargeItem, 0, len(items)+2)
	for _, item := range items {
		lines = append(lines, ChargeItem{
			ID:       strconv.FormatInt(item.ProductID, 10),
			Name:     item.Name,
			Price:    item.UnitPrice,
			Quantity: item.Quantity,
		})
	}
	lines = append(lines, ChargeItem{ID: "service-fee", Name: "Service Fee", Price: totals.ServiceFee, Quantity: 1})
	if totals.Discount > 0 {
		lines = append(lines, ChargeItem{ID: "discount", Name: "Promotions", Price: -totals.Discount, Quantity: 1})
	}
	return lines
}
