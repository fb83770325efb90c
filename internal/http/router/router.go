package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/inventory-dashboard/internal/http/handlers"
	mw "github.com/rogerio-castellano/inventory-dashboard/internal/http/middleware"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/rogerio-castellano/inventory-dashboard/docs"
)

func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(mw.RequestID, mw.Logging, mw.RateLimit)

	r.Get("/healthz", handlers.HealthHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Post("/login", handlers.LoginHandler)
	r.Post("/register", handlers.RegisterHandler)

	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate)

		r.Post("/logout", handlers.LogoutHandler)
		r.Get("/me", handlers.MeHandler)

		r.Get("/categories", handlers.GetCategoriesHandler)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(models.RoleAdmin))
			r.Post("/categories", handlers.CreateCategoryHandler)
			r.Put("/categories/{id}", handlers.UpdateCategoryHandler)
			r.Delete("/categories/{id}", handlers.DeleteCategoryHandler)
		})

		r.Get("/products", handlers.GetProductsHandler)
		r.Post("/products", handlers.CreateProductHandler)
		r.Post("/products/import", handlers.ImportProductsHandler)
		r.Get("/products/view", handlers.GetProductViewHandler)
		r.Get("/products/view/export", handlers.ExportProductViewHandler)
		r.Get("/products/{id}", handlers.GetProductByIDHandler)
		r.Put("/products/{id}", handlers.UpdateProductHandler)
		r.Delete("/products/{id}", handlers.DeleteProductHandler)
		r.Post("/products/{id}/adjust", handlers.AdjustQuantityHandler)
		r.Get("/products/{id}/history", handlers.GetStockHistoryHandler)

		r.Get("/metrics/dashboard", handlers.GetDashboardMetricsHandler)
		r.Get("/live", handlers.LiveHandler)
	})

	return r
}
