package payment

import (
	"sync"

	"github.com/adityarahmanda/kopitera-backend/pkg/enums"
)

// Resolution is the terminal report of one gateway popup: which callback
// fired and what the gateway said about the transaction.
type Resolution struct {
	Outcome       enums.GatewayOutcome
	TransactionID string
	PaymentType   string
	StatusMessage string
}

// Attempt is one in-flight gateway charge. The popup reports back exactly
// once; claim semantics make duplicate or racing callbacks harmless.
type Attempt struct {
	ID          string
	OrderNumber string
	Token       string
	RedirectURL string
	Method      enums.PaymentMethod
	GrossAmount int64

	once       sync.Once
	mu         sync.Mutex
	resolution *Resolution
}

// claim records the resolution if the attempt is still open. It reports
// whether this caller won; losers must not act on the attempt.
func (a *Attempt) claim(res Resolution) bool {
	won := false
	a.once.Do(func() {
		a.mu.Lock()
		a.resolution = &res
		a.mu.Unlock()
		won = true
	})
	return won
}

// Resolved returns the recorded resolution, if any.
func (a *Attempt) Resolved() (Resolution, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.resolution == nil {
		return Resolution{}, false
	}
	return *a.resolution, true
}
