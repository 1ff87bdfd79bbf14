package enums

// PaymentStatus tracks settlement of a submitted order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}
