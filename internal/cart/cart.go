package cart

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/adityarahmanda/kopitera-backend/internal/catalog"
)

// Item is one distinct purchasable line in the cart. UniqueKey disambiguates
// items that share a product id but differ by customization; two items are the
// same line iff UniqueKey matches.
type Item struct {
	ProductID int64  `json:"product_id"`
	UniqueKey string `json:"unique_key"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// Cart is the authoritative mutable cart for one checkout flow. Mutation goes
// through the methods below only, which keeps the totals invariant
// (Subtotal == UnitPrice * Quantity on every line) intact. All methods are
// safe for concurrent use; mutations are serialized the way the browser event
// loop serialized them in the storefront.
type Cart struct {
	mu       sync.Mutex
	items    []*Item
	onChange func(totalPrice int64)
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// OnChange registers a single observer invoked with the new total price after
// every mutation. The evaluator uses this to recompute the discount.
func (c *Cart) OnChange(fn func(totalPrice int64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// AddItem merges the product into an existing line when the unique key
// matches, otherwise appends a new line. Quantities below one are treated
// as one.
func (c *Cart) AddItem(product catalog.Product, uniqueKey string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	if uniqueKey == "" {
		uniqueKey = BuildUniqueKey(product.ID, nil)
	}

	c.mu.Lock()
	if existing := c.find(uniqueKey); existing != nil {
		existing.Quantity += quantity
		existing.Subtotal = existing.UnitPrice * int64(existing.Quantity)
	} else {
		c.items = append(c.items, &Item{
			ProductID: product.ID,
			UniqueKey: uniqueKey,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  quantity,
			Subtotal:  product.Price * int64(quantity),
		})
	}
	c.notifyLocked()
}

// UpdateQuantity sets the line's quantity; a value of zero or below removes
// the line outright. Unknown keys are a no-op.
func (c *Cart) UpdateQuantity(uniqueKey string, quantity int) {
	c.mu.Lock()
	item := c.find(uniqueKey)
	if item == nil {
		c.mu.Unlock()
		return
	}
	if quantity <= 0 {
		c.removeLocked(uniqueKey)
	} else {
		item.Quantity = quantity
		item.Subtotal = item.UnitPrice * int64(quantity)
	}
	c.notifyLocked()
}

// RemoveItem removes the line unconditionally if present.
func (c *Cart) RemoveItem(uniqueKey string) {
	c.mu.Lock()
	if c.find(uniqueKey) == nil {
		c.mu.Unlock()
		return
	}
	c.removeLocked(uniqueKey)
	c.notifyLocked()
}

// Clear empties the line list and resets totals. Promotion selection is not
// touched here; the continuity layer owns that lifecycle.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.notifyLocked()
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	for i, item := range c.items {
		out[i] = *item
	}
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

// TotalItems is the sum of all line quantities.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of all line subtotals in minor units.
func (c *Cart) TotalPrice() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPriceLocked()
}

func (c *Cart) totalPriceLocked() int64 {
	var total int64
	for _, item := range c.items {
		total += item.Subtotal
	}
	return total
}

func (c *Cart) find(uniqueKey string) *Item {
	for _, item := range c.items {
		if item.UniqueKey == uniqueKey {
			return item
		}
	}
	return nil
}

func (c *Cart) removeLocked(uniqueKey string) {
	filtered := c.items[:0]
	for _, item := range c.items {
		if item.UniqueKey != uniqueKey {
			filtered = append(filtered, item)
		}
	}
	c.items = filtered
}

// notifyLocked releases the lock before invoking the observer so the observer
// may call back into the cart.
func (c *Cart) notifyLocked() {
	fn := c.onChange
	total := c.totalPriceLocked()
	c.mu.Unlock()
	if fn != nil {
		fn(total)
	}
}

// BuildUniqueKey derives the customization signature for a line: the product
// id plus the sorted option pairs, e.g. "12:size=large|sugar=less".
func BuildUniqueKey(productID int64, options map[string]string) string {
	if len(options) == 0 {
		return fmt.Sprintf("%d", productID)
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, options[k]))
	}
	return fmt.Sprintf("%d:%s", productID, strings.Join(pairs, "|"))
}
