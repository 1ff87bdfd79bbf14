package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/adityarahmanda/kopitera-backend/internal/promotion"
	"github.com/adityarahmanda/kopitera-backend/pkg/config"
	"github.com/adityarahmanda/kopitera-backend/pkg/errors"
	"github.com/adityarahmanda/kopitera-backend/pkg/logger"
	"github.com/google/uuid"
)

// selectionStore is the slice of the continuity store the service needs to
// keep the promotion selection alive across re-hydrations.
type selectionStore interface {
	SaveSelectedPromotions(ctx context.Context, sessionKey string, ids []int64) error
	LoadSelectedPromotions(ctx context.Context, sessionKey string) ([]int64, error)
}

// Service owns the live checkout sessions. Sessions are in-memory; the
// continuity store carries the state that must outlive the process.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session

	promoCatalog promotion.Catalog
	selections   selectionStore
	fee          FeePolicy
	ttl          time.Duration
	logg         *logger.Logger
}

// NewService wires the session manager from config.
func NewService(cfg config.CheckoutConfig, promoCatalog promotion.Catalog, selections selectionStore, logg *logger.Logger) (*Service, error) {
	rate, err := cfg.ServiceFeeRate()
	if err != nil {
		return nil, err
	}
	if promoCatalog == nil {
		return nil, errors.New(errors.CodeInternal, "promotion catalog required")
	}
	if selections == nil {
		return nil, errors.New(errors.CodeInternal, "selection store required")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		sessions:     make(map[string]*Session),
		promoCatalog: promoCatalog,
		selections:   selections,
		fee:          FeePolicy{Rate: rate, Minimum: cfg.ServiceFeeMinimum},
		ttl:          ttl,
		logg:         logg,
	}, nil
}

// CreateSession returns the session for requestedKey if it is still live, or
// builds a fresh one. A fresh session with a requested key re-hydrates the
// persisted promotion selection, which is how a buyer resumes after a process
// restart.
func (s *Service) CreateSession(ctx context.Context, requestedKey string) (*Session, bool, error) {
	if requestedKey != "" {
		if existing, err := s.Get(requestedKey); err == nil {
			return existing, true, nil
		}
	}

	key := requestedKey
	if key == "" {
		key = uuid.NewString()
	}
	session, err := NewSession(key, s.promoCatalog, s.fee, s.logg)
	if err != nil {
		return nil, false, err
	}

	resumed := false
	if requestedKey != "" {
		ids, err := s.selections.LoadSelectedPromotions(ctx, key)
		if err != nil {
			s.logg.Warn(s.logg.WithSessionKey(ctx, key), "loading persisted promotion selection failed")
		} else if len(ids) > 0 {
			if err := session.RefreshPromotions(ctx); err != nil {
				s.logg.Warn(s.logg.WithSessionKey(ctx, key), "promotion refresh during re-hydration failed")
			}
			session.RestorePromotionSelection(ids)
			resumed = true
		}
	}

	s.mu.Lock()
	s.sessions[key] = session
	s.mu.Unlock()
	return session, resumed, nil
}

// Get returns a live session or a not-found error. Idle sessions past the
// configured TTL are dropped on access.
func (s *Service) Get(key string) (*Session, error) {
	s.mu.Lock()
	session, ok := s.sessions[key]
	s.mu.Unlock()
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "checkout session not found")
	}
	if time.Since(session.IdleSince()) > s.ttl {
		s.mu.Lock()
		delete(s.sessions, key)
		s.mu.Unlock()
		return nil, errors.New(errors.CodeNotFound, "checkout session expired")
	}
	session.Touch()
	return session, nil
}

// TogglePromotion flips a promotion on a session and persists the new
// selection so a re-hydrated session sees the same choice.
func (s *Service) TogglePromotion(ctx context.Context, sessionKey string, promotionID int64) (bool, error) {
	session, err := s.Get(sessionKey)
	if err != nil {
		return false, err
	}
	selected, err := session.TogglePromotion(promotionID)
	if err != nil {
		return false, err
	}
	if err := s.selections.SaveSelectedPromotions(ctx, sessionKey, session.SelectedPromotions()); err != nil {
		s.logg.Warn(s.logg.WithSessionKey(ctx, sessionKey), "persisting promotion selection failed")
	}
	return selected, nil
}

// ClearPersistedSelection removes the stored promotion selection, called when
// an order completes.
func (s *Service) ClearPersistedSelection(ctx context.Context, sessionKey string) error {
	return s.selections.SaveSelectedPromotions(ctx, sessionKey, nil)
}
