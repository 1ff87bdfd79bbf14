package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adityarahmanda/kopitera-backend/api/controllers"
	"github.com/adityarahmanda/kopitera-backend/api/middleware"
	"github.com/adityarahmanda/kopitera-backend/internal/catalog"
	"github.com/adityarahmanda/kopitera-backend/internal/checkout"
	"github.com/adityarahmanda/kopitera-backend/internal/continuity"
	"github.com/adityarahmanda/kopitera-backend/internal/payment"
	"github.com/adityarahmanda/kopitera-backend/pkg/config"
	"github.com/adityarahmanda/kopitera-backend/pkg/logger"
	pkgredis "github.com/adityarahmanda/kopitera-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *pkgredis.Client,
	catalogClient *catalog.Client,
	checkoutService *checkout.Service,
	continuityStore *continuity.Store,
	dispatcher *payment.Dispatcher,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/checkout/sessions", func(r chi.Router) {
		r.Post("/", controllers.SessionCreate(checkoutService, logg))

		r.Route("/{sessionKey}", func(r chi.Router) {
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Get("/", controllers.SessionFetch(checkoutService, logg))
			r.Put("/notes", controllers.NotesUpdate(checkoutService, logg))

			r.Route("/items", func(r chi.Router) {
				r.Post("/", controllers.CartItemAdd(checkoutService, catalogClient, logg))
				r.Patch("/{uniqueKey}", controllers.CartItemUpdate(checkoutService, logg))
				r.Delete("/{uniqueKey}", controllers.CartItemRemove(checkoutService, logg))
			})

			r.Route("/promotions", func(r chi.Router) {
				r.Get("/", controllers.PromotionList(checkoutService, logg))
				r.Post("/{promotionId}/toggle", controllers.PromotionToggle(checkoutService, logg))
			})

			r.Post("/payment", controllers.PaymentEnter(checkoutService, logg))
			r.Post("/payment/back", controllers.PaymentBack(checkoutService, logg))
			r.Post("/pay", controllers.PaymentPay(dispatcher, logg))

			r.Route("/gateway", func(r chi.Router) {
				r.Post("/resolve", controllers.GatewayResolve(dispatcher, logg))
				r.Get("/status", controllers.GatewayStatus(dispatcher, logg))
			})

			r.Get("/confirmation", controllers.Confirmation(checkoutService, continuityStore, logg))
			r.Post("/new-order", controllers.NewOrder(checkoutService, logg))
		})
	})

	return r
}
