package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adityarahmanda/kopitera-backend/api/responses"
	"github.com/adityarahmanda/kopitera-backend/api/validators"
	"github.com/adityarahmanda/kopitera-backend/internal/orders"
	"github.com/adityarahmanda/kopitera-backend/internal/payment"
	"github.com/adityarahmanda/kopitera-backend/pkg/enums"
	"github.com/adityarahmanda/kopitera-backend/pkg/logger"
)

type payCustomer struct {
	Name  string `json:"name,omitempty" validate:"omitempty,max=100"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type payRequest struct {
	PaymentMethod string       `json:"paymentMethod" validate:"required"`
	Customer      *payCustomer `json:"customer,omitempty"`
}

type payResponse struct {
	PaymentMethod string                `json:"paymentMethod"`
	Completed     bool                  `json:"completed"`
	Order         *orders.CheckoutOrder `json:"order,omitempty"`
	AttemptID     string                `json:"attemptId,omitempty"`
	OrderNumber   string                `json:"orderNumber,omitempty"`
	Token         string                `json:"token,omitempty"`
	RedirectURL   string                `json:"redirectUrl,omitempty"`
}

// PaymentPay starts the payment for the frozen totals. Cash completes in the
// response; gateway methods return the popup token and an attempt id for the
// callback.
func PaymentPay(dispatcher *payment.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload payRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var customer payment.Customer
		if payload.Customer != nil {
			customer = payment.Customer{
				Name:  payload.Customer.Name,
				Email: payload.Customer.Email,
				Phone: payload.Customer.Phone,
			}
		}
		result, err := dispatcher.Pay(r.Context(), chi.URLParam(r, "sessionKey"), enums.PaymentMethod(payload.PaymentMethod), customer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := payResponse{PaymentMethod: result.Method.String()}
		if result.Order != nil {
			resp.Completed = true
			resp.Order = result.Order
			resp.OrderNumber = result.Order.OrderNumber
		}
		if result.Attempt != nil {
			resp.AttemptID = result.Attempt.ID
			resp.OrderNumber = result.Attempt.OrderNumber
			resp.Token = result.Attempt.Token
			resp.RedirectURL = result.Attempt.RedirectURL
		}
		responses.WriteSuccess(w, resp)
	}
}

type resolveRequest struct {
	AttemptID     string `json:"attemptId" validate:"required"`
	Outcome       string `json:"outcome" validate:"required,oneof=success pending error closed"`
	TransactionID string `json:"transactionId,omitempty"`
	PaymentType   string `json:"paymentType,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
}

type resolveResponse struct {
	Outcome   string                `json:"outcome"`
	Completed bool                  `json:"completed"`
	Notice    string                `json:"notice,omitempty"`
	Order     *orders.CheckoutOrder `json:"order,omitempty"`
}

// GatewayResolve reports the popup outcome for the session's open attempt.
func GatewayResolve(dispatcher *payment.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload resolveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := dispatcher.Resolve(r.Context(), chi.URLParam(r, "sessionKey"), payload.AttemptID, payment.Resolution{
			Outcome:       enums.GatewayOutcome(payload.Outcome),
			TransactionID: payload.TransactionID,
			PaymentType:   payload.PaymentType,
			StatusMessage: payload.StatusMessage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolveResponse{
			Outcome:   result.Outcome.String(),
			Completed: result.Completed,
			Notice:    result.Notice,
			Order:     result.Order,
		})
	}
}

// GatewayStatus re-checks a pending attempt against the gateway and settles
// it when the charge went through.
func GatewayStatus(dispatcher *payment.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := dispatcher.Status(r.Context(), chi.URLParam(r, "sessionKey"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolveResponse{
			Outcome:   result.Outcome.String(),
			Completed: result.Completed,
			Notice:    result.Notice,
			Order:     result.Order,
		})
	}
}
