package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouterConfig struct {
	Catalog        ProductCatalog
	Products       ProductStore
	Sessions       Sessions
	Logger         *zap.Logger
	RequestTimeout time.Duration
	AllowedOrigins []string
	CheckoutLimit  rate.Limit
	CheckoutBurst  int
}

func NewRouter(cfg RouterConfig) http.Handler {
	productHandler := NewProductHandler(cfg.Catalog, cfg.Products, cfg.RequestTimeout, cfg.Logger)
	cartHandler := NewCartHandler(cfg.Sessions, cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(cfg.Sessions, cfg.RequestTimeout, cfg.Logger)
	limiter := NewSessionRateLimiter(cfg.CheckoutLimit, cfg.CheckoutBurst)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.GetAllProducts)
			r.Post("/", productHandler.UpsertProduct)
			r.Post("/refresh", productHandler.Refresh)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{productId}", cartHandler.UpdateQuantity)
			r.Delete("/items/{productId}", cartHandler.RemoveItem)
			r.Post("/discount", cartHandler.ApplyDiscount)
			r.Delete("/discount", cartHandler.ClearDiscount)
		})

		r.Get("/customer", checkoutHandler.GetCustomer)
		r.Put("/customer", checkoutHandler.UpdateCustomer)

		r.Route("/checkout", func(r chi.Router) {
			r.With(limiter.Limit).Post("/", checkoutHandler.Checkout)
			r.Get("/preview", checkoutHandler.Preview)
			r.Get("/receipt.pdf", checkoutHandler.ReceiptPDF)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", SessionHeader},
		ExposedHeaders:   []string{SessionHeader},
		AllowCredentials: true,
	})

	return otelhttp.NewHandler(c.Handler(r), "pos-api")
}
