package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/homeplate/cache"
	"github.com/ray-remotestate/homeplate/config"
	"github.com/ray-remotestate/homeplate/database"
	"github.com/ray-remotestate/homeplate/payments"
	"github.com/ray-remotestate/homeplate/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.Init()

	if err := database.ConnectAndMigrate(); err != nil {
		logrus.Panicf("failed to initialize database, error: %v", err)
	}
	logrus.Println("migration is successful")

	if err := cache.Init(config.RedisAddr); err != nil {
		logrus.WithError(err).Warn("redis unavailable, caching disabled")
	}

	payments.Init(config.PaymentGatewayURL, config.PaymentGatewayKey)

	svr := server.SetupRoutes()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := svr.Run(":" + config.ServerPort); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Panic("server stopped unexpectedly")
		}
	}()
	logrus.Printf("listening on :%s", config.ServerPort)

	<-done
	logrus.Info("shutting down...")

	var result *multierror.Error
	result = multierror.Append(result, svr.Shutdown(shutdownTimeout))
	result = multierror.Append(result, database.ShutdownDatabase())
	result = multierror.Append(result, cache.Close())
	if err := result.ErrorOrNil(); err != nil {
		logrus.WithError(err).Error("shutdown finished with errors")
		return
	}

	logrus.Info("system is shut ..zzz")
}
