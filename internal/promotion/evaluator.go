package promotion

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Evaluator holds the read-only promotion snapshot and the buyer's selection,
// and derives the discount amount from them. The discount is never stored
// independently; it is recomputed from (selection, snapshot, total) on demand.
type Evaluator struct {
	catalog Catalog

	mu        sync.Mutex
	available []Promotion
	selected  map[int64]struct{}
	loading   bool
	seq       uint64
}

// NewEvaluator builds an evaluator backed by the given catalog.
func NewEvaluator(catalog Catalog) (*Evaluator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("promotion catalog required")
	}
	return &Evaluator{
		catalog:  catalog,
		selected: make(map[int64]struct{}),
	}, nil
}

// Refresh replaces the snapshot with the catalog's view for the given total.
// A refresh that was superseded by a newer one while in flight is discarded,
// so an out-of-order response can never overwrite newer state. The error is
// fail-soft territory for callers: on failure the previous snapshot stays
// intact and the discount is unchanged.
func (e *Evaluator) Refresh(ctx context.Context, totalPrice int64) error {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	e.loading = true
	e.mu.Unlock()

	promotions, err := e.catalog.AvailablePromotions(ctx, totalPrice)

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != e.seq {
		// A later refresh owns the snapshot now.
		return nil
	}
	e.loading = false
	if err != nil {
		return err
	}
	e.available = promotions
	return nil
}

// IsLoading reports whether a refresh is in flight.
func (e *Evaluator) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Available returns a copy of the current snapshot.
func (e *Evaluator) Available() []Promotion {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Promotion, len(e.available))
	copy(out, e.available)
	return out
}

// Toggle flips the selection state of the given promotion id and reports the
// resulting state. Unknown ids toggle like any other; the discount computation
// ignores ids absent from the snapshot.
func (e *Evaluator) Toggle(promotionID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.selected[promotionID]; ok {
		delete(e.selected, promotionID)
		return false
	}
	e.selected[promotionID] = struct{}{}
	return true
}

// IsSelected reports whether the promotion id is currently selected.
func (e *Evaluator) IsSelected(promotionID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.selected[promotionID]
	return ok
}

// Selected returns the selected promotion ids in ascending order.
func (e *Evaluator) Selected() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]int64, 0, len(e.selected))
	for id := range e.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RestoreSelection re-applies persisted selection ids, skipping ids that are
// already selected so a re-hydration never flips a selection back off.
func (e *Evaluator) RestoreSelection(ids []int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range ids {
		e.selected[id] = struct{}{}
	}
}

// ClearSelection drops every selected id.
func (e *Evaluator) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = make(map[int64]struct{})
}

// Discount derives the total discount for the given cart total. Selected
// promotions missing from the snapshot or below their minimum purchase amount
// contribute nothing, silently. Qualifying promotions stack additively.
func (e *Evaluator) Discount(totalPrice int64) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var sum int64
	for _, promo := range e.available {
		if _, ok := e.selected[promo.ID]; !ok {
			continue
		}
		sum += promo.DiscountFor(totalPrice)
	}
	return sum
}
