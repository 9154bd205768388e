package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", handler.ListProducts)
		r.Get("/products/{id}", handler.GetProduct)
		r.Get("/products/code/{code}", handler.GetProductByCode)
		r.Post("/products", handler.CreateProduct)
		r.Put("/products/{id}", handler.UpdateProduct)
		r.Delete("/products/{id}", handler.DeleteProduct)

		r.Get("/sales", handler.ListSales)
		r.Get("/sales/total", handler.SalesTotal)
		r.Post("/sales", handler.CreateSale)
		r.Get("/sales/{id}/lines", handler.GetSaleLines)
		r.Put("/sales/{id}/lines", handler.UpdateSaleLines)
		r.Delete("/sales/{id}", handler.DeleteSale)

		r.Get("/register", handler.RegisterState)
		r.Post("/register/lines", handler.RegisterStageLine)
		r.Patch("/register/lines/{index}", handler.RegisterSetQuantity)
		r.Delete("/register/lines/{index}", handler.RegisterRemoveLine)
		r.Delete("/register", handler.RegisterCancel)
		r.Post("/register/commit", handler.RegisterCommit)

		r.Get("/exports/products", handler.ExportProducts)
		r.Get("/exports/sales", handler.ExportSales)
	})

	return r
}
