package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adityarahmanda/kopitera-backend/api/responses"
	"github.com/adityarahmanda/kopitera-backend/internal/checkout"
	pkgerrors "github.com/adityarahmanda/kopitera-backend/pkg/errors"
	"github.com/adityarahmanda/kopitera-backend/pkg/logger"
)

// PromotionList re-evaluates availability against the current cart total and
// returns the promotions with their selected state.
func PromotionList(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Get(chi.URLParam(r, "sessionKey"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := session.RefreshPromotions(r.Context()); err != nil {
			// Keep serving the last good snapshot; the client sees the
			// stale list rather than an empty page.
			logg.Warn(logg.WithSessionKey(r.Context(), session.Key), "promotion refresh failed, serving snapshot")
		}

		responses.WriteSuccess(w, newPromotionListView(session))
	}
}

type toggleResponse struct {
	PromotionID int64 `json:"promotionId"`
	Selected    bool  `json:"selected"`
	Discount    int64 `json:"discount"`
}

// PromotionToggle flips one promotion's selected state and persists the
// selection.
func PromotionToggle(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionKey := chi.URLParam(r, "sessionKey")
		promotionID, err := strconv.ParseInt(chi.URLParam(r, "promotionId"), 10, 64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid promotion id"))
			return
		}

		selected, err := svc.TogglePromotion(r.Context(), sessionKey, promotionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Get(sessionKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toggleResponse{
			PromotionID: promotionID,
			Selected:    selected,
			Discount:    session.Discount(),
		})
	}
}
