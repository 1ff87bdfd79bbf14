package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adityarahmanda/kopitera-backend/api/responses"
	"github.com/adityarahmanda/kopitera-backend/api/validators"
	"github.com/adityarahmanda/kopitera-backend/internal/checkout"
	"github.com/adityarahmanda/kopitera-backend/internal/orders"
	pkgerrors "github.com/adityarahmanda/kopitera-backend/pkg/errors"
	"github.com/adityarahmanda/kopitera-backend/pkg/logger"
)

// confirmationReader loads the persisted order snapshot for the confirmation
// page.
type confirmationReader interface {
	LoadCompletedOrder(ctx context.Context, sessionKey string) (*orders.CheckoutOrder, error)
}

type createSessionRequest struct {
	SessionKey string `json:"sessionKey" validate:"omitempty,max=64"`
}

type createSessionResponse struct {
	sessionView
	Resumed bool `json:"resumed"`
}

// SessionCreate opens a checkout session. Passing a known key returns the
// live session; passing an unknown key re-hydrates persisted state under it.
func SessionCreate(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createSessionRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		session, resumed, err := svc.CreateSession(r.Context(), payload.SessionKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, createSessionResponse{
			sessionView: newSessionView(session),
			Resumed:     resumed,
		})
	}
}

// SessionFetch returns the session's current state.
func SessionFetch(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Get(chi.URLParam(r, "sessionKey"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionView(session))
	}
}

// PaymentEnter freezes the pricing snapshot and advances to the payment step.
func PaymentEnter(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Get(chi.URLParam(r, "sessionKey"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := session.EnterPayment(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionView(session))
	}
}

// PaymentBack returns from the payment step to the order step.
func PaymentBack(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Get(chi.URLParam(r, "sessionKey"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := session.BackToOrder(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionView(session))
	}
}

type notesRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

// NotesUpdate stores free-form order notes on the session.
func NotesUpdate(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Get(chi.URLParam(r, "sessionKey"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload notesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := session.SetNotes(payload.Notes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionView(session))
	}
}

// Confirmation returns the persisted order snapshot. It survives repeated
// reads; a session that never completed an order gets a 404.
func Confirmation(svc *checkout.Service, snapshots confirmationReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionKey := chi.URLParam(r, "sessionKey")
		if _, err := svc.Get(sessionKey); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := snapshots.LoadCompletedOrder(r.Context(), sessionKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order snapshot"))
			return
		}
		if order == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no completed order for this session"))
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// NewOrder returns a confirmed session to the order step for the next
// purchase.
func NewOrder(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Get(chi.URLParam(r, "sessionKey"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := session.StartNewOrder(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionView(session))
	}
}
