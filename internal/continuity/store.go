package continuity

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/adityarahmanda/kopitera-backend/internal/orders"
	"github.com/adityarahmanda/kopitera-backend/pkg/logger"
)

const (
	nameSelectedPromotions = "selected-promotions"
	nameCompletedOrder     = "completed-order"
)

// Store persists the slices of checkout state that must survive a session
// re-hydration: the promotion selection made on the order step and the
// completed order snapshot read by the confirmation step.
type Store struct {
	kv   KV
	ttl  time.Duration
	logg *logger.Logger
}

// NewStore builds a continuity store over the given KV adapter.
func NewStore(kv KV, ttl time.Duration, logg *logger.Logger) (*Store, error) {
	if kv == nil {
		return nil, errors.New("continuity kv required")
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Store{kv: kv, ttl: ttl, logg: logg}, nil
}

// SaveSelectedPromotions stores the selected promotion ids. An empty selection
// removes the key so re-hydration sees no selection at all.
func (s *Store) SaveSelectedPromotions(ctx context.Context, sessionKey string, ids []int64) error {
	if len(ids) == 0 {
		return s.kv.Delete(ctx, sessionKey, nameSelectedPromotions)
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return s.kv.Set(ctx, sessionKey, nameSelectedPromotions, strings.Join(parts, ","), s.ttl)
}

// LoadSelectedPromotions returns the stored selection. Absent or corrupt data
// yields an empty selection, never an error the caller must branch on.
func (s *Store) LoadSelectedPromotions(ctx context.Context, sessionKey string) ([]int64, error) {
	raw, err := s.kv.Get(ctx, sessionKey, nameSelectedPromotions)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	ids := make([]int64, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithSessionKey(ctx, sessionKey), "discarding corrupt promotion selection")
			}
			return nil, nil
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ClearSelectedPromotions removes the stored selection.
func (s *Store) ClearSelectedPromotions(ctx context.Context, sessionKey string) error {
	return s.kv.Delete(ctx, sessionKey, nameSelectedPromotions)
}

// SaveCompletedOrder persists the order snapshot shown on the confirmation step.
func (s *Store) SaveCompletedOrder(ctx context.Context, sessionKey string, order *orders.CheckoutOrder) error {
	if order == nil {
		return errors.New("completed order required")
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, sessionKey, nameCompletedOrder, string(payload), s.ttl)
}

// LoadCompletedOrder returns the stored order snapshot, or nil when none is
// present. The snapshot is deliberately left in place after a read so repeated
// confirmation loads keep working.
func (s *Store) LoadCompletedOrder(ctx context.Context, sessionKey string) (*orders.CheckoutOrder, error) {
	raw, err := s.kv.Get(ctx, sessionKey, nameCompletedOrder)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var order orders.CheckoutOrder
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionKey(ctx, sessionKey), "discarding corrupt completed order snapshot")
		}
		return nil, nil
	}
	return &order, nil
}
