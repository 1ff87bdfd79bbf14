package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adityarahmanda/kopitera-backend/api/responses"
	"github.com/adityarahmanda/kopitera-backend/api/validators"
	"github.com/adityarahmanda/kopitera-backend/internal/cart"
	"github.com/adityarahmanda/kopitera-backend/internal/catalog"
	"github.com/adityarahmanda/kopitera-backend/internal/checkout"
	pkgerrors "github.com/adityarahmanda/kopitera-backend/pkg/errors"
	"github.com/adityarahmanda/kopitera-backend/pkg/logger"
)

// productFetcher is the slice of the catalog client the cart endpoints need.
type productFetcher interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
}

type addItemRequest struct {
	ProductID int64             `json:"productId" validate:"required,min=1"`
	Quantity  int               `json:"quantity" validate:"min=1"`
	Options   map[string]string `json:"options,omitempty"`
}

// CartItemAdd adds a product to the cart. Lines with the same product and
// options merge.
func CartItemAdd(svc *checkout.Service, products productFetcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Get(chi.URLParam(r, "sessionKey"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.GetProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.IsAvailable {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product is not available").
				WithDetails(map[string]any{"productId": payload.ProductID}))
			return
		}

		uniqueKey := cart.BuildUniqueKey(product.ID, payload.Options)
		if err := session.AddItem(*product, uniqueKey, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionView(session))
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartItemUpdate sets a line's quantity. Zero or less removes the line.
func CartItemUpdate(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Get(chi.URLParam(r, "sessionKey"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := session.UpdateQuantity(chi.URLParam(r, "uniqueKey"), payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionView(session))
	}
}

// CartItemRemove drops a cart line.
func CartItemRemove(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Get(chi.URLParam(r, "sessionKey"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := session.RemoveItem(chi.URLParam(r, "uniqueKey")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionView(session))
	}
}
