package payment

import (
	"context"

	"github.com/adityarahmanda/kopitera-backend/pkg/config"
	"github.com/adityarahmanda/kopitera-backend/pkg/enums"
	"github.com/adityarahmanda/kopitera-backend/pkg/errors"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// The SDK has no constant for QRIS yet.
const snapPaymentTypeQris = snap.SnapPaymentType("qris")

// ChargeItem is one order line forwarded to the gateway for display in the
// popup.
type ChargeItem struct {
	ID       string
	Name     string
	Price    int64
	Quantity int
}

// Customer identifies the buyer to the gateway. All fields are optional;
// walk-in buyers can pay without an account.
type Customer struct {
	Name  string
	Email string
	Phone string
}

func (c Customer) isZero() bool {
	return c.Name == "" && c.Email == "" && c.Phone == ""
}

// ChargeRequest describes one gateway transaction. GrossAmount must equal the
// frozen checkout total to the rupiah.
type ChargeRequest struct {
	OrderNumber string
	GrossAmount int64
	Method      enums.PaymentMethod
	Customer    Customer
	Items       []ChargeItem
}

// ChargeResponse carries the popup token back to the client.
type ChargeResponse struct {
	Token       string
	RedirectURL string
}

// TransactionStatus is the gateway's current view of a transaction, used to
// settle attempts the popup reported as pending.
type TransactionStatus struct {
	OrderNumber   string
	TransactionID string
	PaymentType   string
	Status        string
	FraudStatus   string
}

// Gateway abstracts the payment gateway for the dispatcher.
type Gateway interface {
	CreateTransaction(ctx context.Context, req ChargeRequest) (*ChargeResponse, error)
	CheckTransaction(ctx context.Context, orderNumber string) (*TransactionStatus, error)
}

// SnapGateway is the Midtrans implementation: Snap for the popup token,
// Core API for status checks.
type SnapGateway struct {
	snap snap.Client
	core coreapi.Client
}

// NewSnapGateway builds gateway clients from config.
func NewSnapGateway(cfg config.MidtransConfig) (*SnapGateway, error) {
	if cfg.ServerKey == "" {
		return nil, errors.New(errors.CodeInternal, "midtrans server key required")
	}
	env := midtrans.Sandbox
	if cfg.Environment() == "production" {
		env = midtrans.Production
	}
	g := &SnapGateway{}
	g.snap.New(cfg.ServerKey, env)
	g.core.New(cfg.ServerKey, env)
	return g, nil
}

// CreateTransaction requests a Snap token for the order. The SDK does not
// thread a context; cancellation is checked before the call.
func (g *SnapGateway) CreateTransaction(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.Method.IsGateway() {
		return nil, errors.New(errors.CodeValidation, "payment method "+req.Method.String()+" is not a gateway method")
	}

	items := make([]midtrans.ItemDetails, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    item.ID,
			Name:  item.Name,
			Price: item.Price,
			Qty:   int32(item.Quantity),
		})
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderNumber,
			GrossAmt: req.GrossAmount,
		},
		EnabledPayments: enabledPayments(req.Method),
		Items:           &items,
	}
	if !req.Customer.isZero() {
		snapReq.CustomerDetail = &midtrans.CustomerDetails{
			FName: req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		}
	}
	resp, snapErr := g.snap.CreateTransaction(snapReq)
	if snapErr != nil {
		return nil, errors.Wrap(errors.CodeDependency, snapErr, "create gateway transaction")
	}
	return &ChargeResponse{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// CheckTransaction queries the gateway for the transaction's current status.
func (g *SnapGateway) CheckTransaction(ctx context.Context, orderNumber string) (*TransactionStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, coreErr := g.core.CheckTransaction(orderNumber)
	if coreErr != nil {
		return nil, errors.Wrap(errors.CodeDependency, coreErr, "check gateway transaction")
	}
	return &TransactionStatus{
		OrderNumber:   resp.OrderID,
		TransactionID: resp.TransactionID,
		PaymentType:   resp.PaymentType,
		Status:        resp.TransactionStatus,
		FraudStatus:   resp.FraudStatus,
	}, nil
}

// enabledPayments narrows the popup to the method the buyer picked on the
// payment step. Unmapped gateway methods fall back to an unrestricted popup.
func enabledPayments(method enums.PaymentMethod) []snap.SnapPaymentType {
	switch method {
	case enums.PaymentMethodGopay:
		return []snap.SnapPaymentType{snap.PaymentTypeGopay}
	case enums.PaymentMethodQRIS:
		return []snap.SnapPaymentType{snapPaymentTypeQris}
	case enums.PaymentMethodBankTransfer:
		return []snap.SnapPaymentType{snap.PaymentTypeBankTransfer}
	case enums.PaymentMethodCreditCard:
		return []snap.SnapPaymentType{snap.PaymentTypeCreditCard}
	case enums.PaymentMethodShopeePay:
		return []snap.SnapPaymentType{snap.PaymentTypeShopeepay}
	default:
		return nil
	}
}
