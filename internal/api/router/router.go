package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/identity"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Options struct {
	Verifier identity.ITokenVerifier
	Sellers  *config.SellerConfig
	Limiter  ratelimit.ILimiter
	Metrics  *metrics.Metrics
	Logger   *zerolog.Logger
}

func SetupRouter(server *api.Server, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(opts.Logger, opts.Metrics))
	r.Use(m.RecoverMiddleware)
	r.Use(m.AuthPayloadMiddleware(opts.Verifier))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.ErrorJSON(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.ErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.SuccessJSON(w, "ok", nil)
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	seller := m.SellerMiddleware(opts.Sellers)

	// API 路由
	r.Route("/api", func(r chi.Router) {
		r.Use(m.RateLimitMiddleware(opts.Limiter, opts.Metrics))

		r.Route("/product", func(r chi.Router) {
			r.Get("/list", server.ProductHandler.List)
			r.Get("/{id}", server.ProductHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(m.AuthMiddleware, seller)
				r.Post("/add", server.ProductHandler.Add)
				r.Get("/seller-list", server.ProductHandler.SellerList)
				r.Put("/seller-list", server.ProductHandler.Update)
				r.Delete("/seller-list", server.ProductHandler.Delete)
			})
		})

		r.Route("/order", func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Post("/create", server.OrderHandler.Create)
			r.Get("/list", server.OrderHandler.List)
			r.Post("/razorpay", server.OrderHandler.CreateRazorpayOrder)
			r.Post("/verify-payment", server.OrderHandler.VerifyPayment)
			r.Post("/update-payment", server.OrderHandler.UpdatePayment)
			r.With(seller).Get("/seller-orders", server.OrderHandler.SellerOrders)
			r.With(seller).Put("/seller-orders", server.OrderHandler.UpdateSellerOrder)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Get("/data", server.UserHandler.Data)
			r.Post("/add-address", server.UserHandler.AddAddress)
			r.Get("/get-address", server.UserHandler.GetAddresses)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Get("/get", server.CartHandler.Get)
			r.Post("/update", server.CartHandler.Update)
			r.Patch("/item", server.CartHandler.UpdateItem)
		})
	})

	// 在設置完所有路由後記錄路由樹
	if opts.Logger != nil {
		_ = chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			opts.Logger.Debug().Str("method", method).Str("route", route).Msg("route registered")
			return nil
		})
	}
	return r
}
