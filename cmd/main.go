package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/api"
	"github.com/RoyceAzure/lab/ordertracker/internal/api/handler"
	"github.com/RoyceAzure/lab/ordertracker/internal/api/router"
	"github.com/RoyceAzure/lab/ordertracker/internal/appcontext"
	"github.com/RoyceAzure/lab/ordertracker/internal/config"
	"github.com/go-chi/chi/v5"
)

func main() {
	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		log.Fatal(err)
		return
	}

	// 初始化 handler
	server := api.NewServer(
		handler.NewAuthHandler(app.AuthService),
		handler.NewProductHandler(app.ProductService),
		handler.NewOrderHandler(app.OrderService),
		handler.NewRealtimeHandler(app.AuthService, app.Hub, app.Logger),
	)

	// 設置路由
	r := router.SetupRouter(server, router.Dependencies{
		TokenMaker:  app.TokenMaker,
		AuthService: app.AuthService,
		Permissions: app.Permissions,
		Limiter:     app.Limiter,
		Metrics:     app.Metrics,
		Logger:      app.Logger,
		Cache:       app.Cache,
	})
	_ = chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		app.Logger.Debug().Str("method", method).Str("route", route).Msg("route registered")
		return nil
	})

	// 設定服務器參數
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutDownCompleted := make(chan struct{}, 1)
	// 監聽退出訊號
	go func() {
		<-sigChan
		log.Println("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Printf("Application shutdown error: %v", err)
		}

		shutDownCompleted <- struct{}{}
	}()

	// 啟動服務
	log.Printf("Server starting on %s", srv.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	<-shutDownCompleted
	log.Printf("closed completed")
}
