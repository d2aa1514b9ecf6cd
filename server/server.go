package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/homeplate/handlers"
	"github.com/ray-remotestate/homeplate/middlewares"
	"github.com/ray-remotestate/homeplate/models"
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

func SetupRoutes() *Server {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")
	router.HandleFunc("/register", handlers.Register).Methods("POST")
	router.HandleFunc("/login", handlers.Login).Methods("POST")
	router.HandleFunc("/refresh", handlers.RefreshToken).Methods("POST")

	authRoutes := router.PathPrefix("/api").Subrouter()
	authRoutes.Use(middlewares.AuthMiddleware)

	authRoutes.HandleFunc("/logout", handlers.Logout).Methods("POST")

	// catalog
	authRoutes.HandleFunc("/meals", handlers.ListMeals).Methods("GET")
	authRoutes.HandleFunc("/meals/{id}", handlers.GetMeal).Methods("GET")

	chefMeals := authRoutes.PathPrefix("/meals").Subrouter()
	chefMeals.Use(middlewares.RoleBasedMiddleware(models.RoleChef, models.RoleAdmin))
	chefMeals.HandleFunc("", handlers.CreateMeal).Methods("POST")
	chefMeals.HandleFunc("/{id}", handlers.UpdateMeal).Methods("PATCH")

	// cart; /cart/clear is registered before /cart/{itemId}
	authRoutes.HandleFunc("/cart", handlers.GetCart).Methods("GET")
	authRoutes.HandleFunc("/cart", handlers.AddToCart).Methods("POST")
	authRoutes.HandleFunc("/cart/clear", handlers.ClearCart).Methods("DELETE")
	authRoutes.HandleFunc("/cart/{itemId}", handlers.UpdateCartItemQuantity).Methods("PATCH")
	authRoutes.HandleFunc("/cart/{itemId}", handlers.DeleteCartItem).Methods("DELETE")

	// orders
	authRoutes.HandleFunc("/orders", handlers.Checkout).Methods("POST")
	authRoutes.HandleFunc("/orders/my", handlers.GetMyOrders).Methods("GET")
	authRoutes.HandleFunc("/orders/chef/{chefId}", handlers.GetChefOrders).Methods("GET")
	authRoutes.HandleFunc("/orders/status/{orderId}", handlers.UpdateOrderStatus).Methods("PATCH")

	// payments
	authRoutes.HandleFunc("/payments/create-intent", handlers.CreatePaymentIntent).Methods("POST")
	authRoutes.HandleFunc("/payments/success", handlers.ConfirmPayment).Methods("POST")

	// admin only
	admin := authRoutes.NewRoute().Subrouter()
	admin.Use(middlewares.RoleBasedMiddleware(models.RoleAdmin))
	admin.HandleFunc("/orders", handlers.ListAllOrders).Methods("GET")
	admin.HandleFunc("/stats", handlers.GetStats).Methods("GET")

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
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
