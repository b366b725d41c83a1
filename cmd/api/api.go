package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"mogges/docs" //this is required to generate swagger docs
	"mogges/internal/auth"
	"mogges/internal/chat"
	"mogges/internal/domain/accesscontrol"
	"mogges/internal/domain/storage"
	"mogges/internal/mailer"
	"mogges/internal/ratelimiter"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	assistant     *chat.Assistant

	// background tasks still running
	wg sync.WaitGroup
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	frontendURL string
	corsOrigins []string
	mail        mailConfig
	auth        authConfig
	chat        chat.AnthropicConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleTime  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Use(app.AuthTokenMiddleware)

		r.Get("/", app.rootHandler)
		r.Get("/health", app.healthCheckHandler)

		docsURL := fmt.Sprintf("%s/api/swagger/doc.json", app.config.apiURL)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public routes
		r.With(app.RateLimiterMiddleware).Post("/login", app.loginHandler)
		r.With(app.RateLimiterMiddleware).Post("/register", app.registerUserHandler)
		r.Post("/logout", app.logoutHandler)
		r.Get("/check-auth", app.checkAuthHandler)
		r.With(app.RateLimiterMiddleware).Post("/chat", app.chatHandler)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", app.listProductsHandler)
			r.Get("/{productID}", app.getProductHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.RequireRole(accesscontrol.RoleAdmin))
				r.Post("/", app.createProductHandler)
				r.Put("/{productID}", app.updateProductHandler)
				r.Delete("/{productID}", app.deleteProductHandler)
				r.Post("/{productID}/image", app.uploadProductImageHandler)
			})
		})

		r.With(app.RequireRole(accesscontrol.RoleAdmin)).Get("/users", app.listUsersHandler)

		r.Route("/admin", func(r chi.Router) {
			r.With(app.RequireRole(accesscontrol.RoleMaster)).Put("/update-role", app.updateRoleHandler)
			r.With(app.RequireRole(accesscontrol.RoleMaster)).Delete("/delete-user/{userID}", app.deleteUserHandler)
			r.With(app.RequireRole(accesscontrol.RoleAdmin)).Post("/create-user", app.createUserHandler)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(app.RequireAuthenticated)
			r.Get("/", app.getCartHandler)
			r.Post("/", app.setCartItemHandler)
			r.Delete("/", app.clearCartHandler)
			r.Post("/sync", app.syncCartHandler)
			r.Delete("/{productID}", app.removeCartItemHandler)
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(app.RequireAuthenticated).Get("/mine", app.myOrdersHandler)
			r.With(app.RequireAuthenticated).Post("/checkout", app.checkoutHandler)

			r.With(app.RequireRole(accesscontrol.RoleEmployee)).Get("/", app.listOrdersHandler)
			r.With(app.RequireRole(accesscontrol.RoleEmployee)).Get("/{orderID}", app.getOrderHandler)
			r.With(app.RequireRole(accesscontrol.RoleAdmin)).Put("/{orderID}/status", app.updateOrderStatusHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/api"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		err := srv.Shutdown(ctx)
		app.wg.Wait()
		shutdown <- err
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
