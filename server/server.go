package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ray-remotestate/pizzeria/handlers"
	"github.com/ray-remotestate/pizzeria/middlewares"
	"github.com/ray-remotestate/pizzeria/models"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

func SetupRoutes(h *handlers.Handler) *Server {
	router := mux.NewRouter()
	router.Use(middlewares.LoggingMiddleware, middlewares.MetricsMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.HandleFunc("/login", handlers.Login).Methods("POST")
	router.HandleFunc("/refresh", handlers.RefreshToken).Methods("POST")
	router.HandleFunc("/logout", handlers.Logout).Methods("POST")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/categories", h.ListCategories).Methods("GET")
	api.HandleFunc("/products", h.ListProducts).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}", h.GetProduct).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}/configurator", h.GetConfigurator).Methods("GET")

	api.HandleFunc("/cart/{session}", h.GetCart).Methods("GET")
	api.HandleFunc("/cart/{session}", h.ClearCart).Methods("DELETE")
	api.HandleFunc("/cart/{session}/items", h.AddCartItem).Methods("POST")
	api.HandleFunc("/cart/{session}/items", h.UpdateCartItem).Methods("PUT")
	api.HandleFunc("/cart/{session}/items", h.RemoveCartItem).Methods("DELETE")
	api.HandleFunc("/cart/{session}/checkout", h.CheckoutCart).Methods("POST")

	api.HandleFunc("/orders", h.CreateOrder).Methods("POST")
	api.HandleFunc("/chat", h.Chat).Methods("POST")

	// admin n staff
	adminStaff := api.PathPrefix("/admin").Subrouter()
	adminStaff.Use(middlewares.AuthMiddleware, middlewares.RoleBasedMiddleware(models.RoleAdmin, models.RoleStaff))

	adminStaff.HandleFunc("/orders", h.ListOrders).Methods("GET")
	adminStaff.HandleFunc("/orders/{id}", h.GetOrder).Methods("GET")
	adminStaff.HandleFunc("/orders/{id}/status", h.UpdateOrderStatus).Methods("PATCH")

	// admin only
	adminOnly := middlewares.RoleBasedMiddleware(models.RoleAdmin)
	adminStaff.Handle("/staff", adminOnly(http.HandlerFunc(handlers.CreateStaff))).Methods("POST")
	adminStaff.Handle("/staff", adminOnly(http.HandlerFunc(handlers.ListStaff))).Methods("GET")

	return &Server{
		Router: router,
	}
}

func (svr *Server) Run(port string) error {
	svr.server = &http.Server{
		Addr:              port,
		Handler:           svr.Router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	if svr.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
