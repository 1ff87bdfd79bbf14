package orders

import (
	"time"

	"github.com/adityarahmanda/kopitera-backend/pkg/enums"
)

// OrderItem is the denormalized line copied into the order snapshot.
type OrderItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// CheckoutOrder is the in-flight order snapshot created when a payment attempt
// begins. Once persisted it is the single source of truth for the confirmation
// page; the live cart has been cleared by then.
type CheckoutOrder struct {
	OrderNumber   string              `json:"order_number"`
	OrderDate     time.Time           `json:"order_date"`
	Items         []OrderItem         `json:"items"`
	Subtotal      int64               `json:"subtotal"`
	ServiceFee    int64               `json:"service_fee"`
	Discount      int64               `json:"discount"`
	Total         int64               `json:"total"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	TransactionID string              `json:"transaction_id,omitempty"`
	PaymentType   string              `json:"payment_type,omitempty"`
	Notes         string              `json:"notes,omitempty"`

	// SyncPending marks a snapshot that was persisted locally after the
	// backend rejected or never received the create-order call. It is
	// surfaced to operations, not to the buyer.
	SyncPending bool `json:"sync_pending,omitempty"`
}

// PaymentInfo is the settlement block sent with order creation.
type PaymentInfo struct {
	Type          string `json:"type"`
	PaymentMethod string `json:"paymentMethod"`
	TransactionID string `json:"transactionId,omitempty"`
	Bank          string `json:"bank,omitempty"`
	VANumber      string `json:"vaNumber,omitempty"`
	ThreeDS       bool   `json:"threeDs,omitempty"`
}

// CreateOrderRequest is the POST /orders body. Items carry product id and
// quantity only; the server recomputes pricing and is authoritative for what
// is charged.
type CreateOrderRequest struct {
	Items        []CreateOrderItem `json:"items"`
	PaymentInfo  PaymentInfo       `json:"paymentInfo"`
	PromotionIDs []int64           `json:"promotionIds"`
	Notes        string            `json:"notes,omitempty"`
	OrderNumber  string            `json:"orderNumber"`
}

type CreateOrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderResponse acknowledges backend persistence.
type CreateOrderResponse struct {
	OrderID     int64  `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
}
