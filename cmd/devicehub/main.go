// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	devicehub "github.com/DeviceHubLabs/devicehub"
	"github.com/DeviceHubLabs/devicehub/devices"
	devapi "github.com/DeviceHubLabs/devicehub/devices/api"
	devhttpapi "github.com/DeviceHubLabs/devicehub/devices/api/http"
	"github.com/DeviceHubLabs/devicehub/devices/events"
	devmongodb "github.com/DeviceHubLabs/devicehub/devices/mongodb"
	"github.com/DeviceHubLabs/devicehub/logger"
	"github.com/DeviceHubLabs/devicehub/pkg/cache"
	redisclient "github.com/DeviceHubLabs/devicehub/pkg/clients/redis"
	"github.com/DeviceHubLabs/devicehub/pkg/cron"
	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/DeviceHubLabs/devicehub/pkg/jwt"
	"github.com/DeviceHubLabs/devicehub/pkg/servers"
	httpserver "github.com/DeviceHubLabs/devicehub/pkg/servers/http"
	"github.com/DeviceHubLabs/devicehub/pkg/uuid"
	"github.com/DeviceHubLabs/devicehub/sweep"
	"github.com/DeviceHubLabs/devicehub/users"
	usersapi "github.com/DeviceHubLabs/devicehub/users/api"
	"github.com/DeviceHubLabs/devicehub/users/bcrypt"
	usersmongodb "github.com/DeviceHubLabs/devicehub/users/mongodb"
	"github.com/DeviceHubLabs/devicehub/ws"
	wsapi "github.com/DeviceHubLabs/devicehub/ws/api"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/go-zoo/bone"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

const (
	svcName       = "devicehub"
	stopWaitTime  = 5 * time.Second
	forceStopTime = 10 * time.Second

	defLogLevel      = "error"
	defHTTPPort      = "8180"
	defServerCert    = ""
	defServerKey     = ""
	defMongoURL      = "mongodb://localhost:27017"
	defMongoDB       = "devicehub"
	defCacheURL      = ""
	defCachePass     = ""
	defCacheDB       = "0"
	defSecret        = "devicehub-secret"
	defTokenDuration = "24h"
	defInactiveHours = "24"
	defSweepEnabled  = "true"

	envLogLevel      = "DH_LOG_LEVEL"
	envHTTPPort      = "DH_HTTP_PORT"
	envServerCert    = "DH_SERVER_CERT"
	envServerKey     = "DH_SERVER_KEY"
	envMongoURL      = "DH_MONGO_URL"
	envMongoDB       = "DH_MONGO_DB"
	envCacheURL      = "DH_CACHE_URL"
	envCachePass     = "DH_CACHE_PASS"
	envCacheDB       = "DH_CACHE_DB"
	envSecret        = "DH_JWT_SECRET"
	envTokenDuration = "DH_TOKEN_DURATION"
	envInactiveHours = "DH_DEVICE_INACTIVE_THRESHOLD_HOURS"
	envSweepEnabled  = "DH_SWEEP_ENABLED"
)

type config struct {
	logLevel      string
	httpPort      string
	serverCert    string
	serverKey     string
	mongoURL      string
	mongoDB       string
	cacheURL      string
	cachePass     string
	cacheDB       string
	secret        string
	tokenDuration time.Duration
	inactiveAfter time.Duration
	sweepEnabled  bool
}

func main() {
	cfg := loadConfig()

	logger, err := logger.New(os.Stdout, cfg.logLevel)
	if err != nil {
		log.Fatalf(err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	store := connectToCache(cfg, logger)

	db, disconnect := connectToMongoDB(cfg, logger)
	defer disconnect()

	tokenizer := jwt.New(cfg.secret, cfg.tokenDuration)
	idProvider := uuid.New()

	usersSvc := users.New(usersmongodb.NewUserRepository(db), bcrypt.New(), tokenizer, store, idProvider, logger)
	usersSvc = usersapi.LoggingMiddleware(usersSvc, logger)
	usersSvc = usersapi.MetricsMiddleware(
		usersSvc,
		kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "users",
			Subsystem: "api",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, []string{"method"}),
		kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "users",
			Subsystem: "api",
			Name:      "request_latency_microseconds",
			Help:      "Total duration of requests in microseconds.",
		}, []string{"method"}),
	)

	wsSvc := ws.New(logger)
	wsSvc = wsapi.LoggingMiddleware(wsSvc, logger)

	devicesSvc := devices.New(usersSvc, devmongodb.NewDeviceRepository(db), devmongodb.NewLogRepository(db), store, idProvider, logger)
	devicesSvc = events.NewCoordinatorMiddleware(devicesSvc, store, wsSvc, usersSvc, logger)
	devicesSvc = devapi.LoggingMiddleware(devicesSvc, logger)
	devicesSvc = devapi.MetricsMiddleware(
		devicesSvc,
		kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "devices",
			Subsystem: "api",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, []string{"method"}),
		kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "devices",
			Subsystem: "api",
			Name:      "request_latency_microseconds",
			Help:      "Total duration of requests in microseconds.",
		}, []string{"method"}),
	)

	schedules := cron.NewScheduleManager()
	sweeper := sweep.New(devicesSvc, schedules, cfg.inactiveAfter, logger)
	if cfg.sweepEnabled {
		if err := sweeper.Start(); err != nil {
			logger.Error(fmt.Sprintf("Failed to start inactive device sweep: %s", err))
			os.Exit(1)
		}
	}

	mux := bone.New()
	usersapi.MakeHandler(mux, usersSvc, logger)
	wsapi.MakeHandler(mux, wsSvc, usersSvc, logger)
	handler := devhttpapi.MakeHandler(mux, devicesSvc, store, wsSvc, logger)

	g.Go(func() error {
		return httpserver.Start(ctx, handler, servers.Config{
			ServerName:   svcName,
			ServerCert:   cfg.serverCert,
			ServerKey:    cfg.serverKey,
			Port:         cfg.httpPort,
			StopWaitTime: stopWaitTime,
		}, logger)
	})

	g.Go(func() error {
		if sig := errors.SignalHandler(ctx); sig != nil {
			cancel()
			logger.Info(fmt.Sprintf("%s service shutdown by signal: %s", svcName, sig))
			// A shutdown stage that hangs must not keep the process alive.
			go func() {
				time.Sleep(forceStopTime)
				logger.Error(fmt.Sprintf("%s service did not stop within %s, forcing exit", svcName, forceStopTime))
				os.Exit(1)
			}()
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sweeper.Stop()
		schedules.Stop()
		wsSvc.CloseAll()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service terminated: %s", svcName, err))
	}
}

func loadConfig() config {
	tokenDuration, err := time.ParseDuration(devicehub.Env(envTokenDuration, defTokenDuration))
	if err != nil {
		log.Fatalf("Invalid %s value: %s", envTokenDuration, err)
	}

	hours, err := strconv.Atoi(devicehub.Env(envInactiveHours, defInactiveHours))
	if err != nil || hours <= 0 {
		log.Fatalf("Invalid %s value", envInactiveHours)
	}

	sweepEnabled, err := strconv.ParseBool(devicehub.Env(envSweepEnabled, defSweepEnabled))
	if err != nil {
		log.Fatalf("Invalid %s value: %s", envSweepEnabled, err)
	}

	return config{
		logLevel:      devicehub.Env(envLogLevel, defLogLevel),
		httpPort:      devicehub.Env(envHTTPPort, defHTTPPort),
		serverCert:    devicehub.Env(envServerCert, defServerCert),
		serverKey:     devicehub.Env(envServerKey, defServerKey),
		mongoURL:      devicehub.Env(envMongoURL, defMongoURL),
		mongoDB:       devicehub.Env(envMongoDB, defMongoDB),
		cacheURL:      devicehub.Env(envCacheURL, defCacheURL),
		cachePass:     devicehub.Env(envCachePass, defCachePass),
		cacheDB:       devicehub.Env(envCacheDB, defCacheDB),
		secret:        devicehub.Env(envSecret, defSecret),
		tokenDuration: tokenDuration,
		inactiveAfter: time.Duration(hours) * time.Hour,
		sweepEnabled:  sweepEnabled,
	}
}

// connectToCache builds the cache store. A missing cache URL is not fatal:
// the store runs in degraded mode and every read falls through to MongoDB.
func connectToCache(cfg config, logger logger.Logger) cache.Store {
	if cfg.cacheURL == "" {
		logger.Warn("Cache URL not configured, running without cache")
		return cache.NewStore(nil, logger)
	}

	client, err := redisclient.Connect(cfg.cacheURL, cfg.cachePass, cfg.cacheDB)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to setup cache client: %s", err))
		os.Exit(1)
	}

	return cache.NewStore(client, logger)
}

func connectToMongoDB(cfg config, logger logger.Logger) (*mongo.Database, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.mongoURL))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to connect to MongoDB: %s", err))
		os.Exit(1)
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Error(fmt.Sprintf("Failed to ping MongoDB: %s", err))
		os.Exit(1)
	}

	disconnect := func() {
		ctx, cancel := context.WithTimeout(context.Background(), stopWaitTime)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Error(fmt.Sprintf("Failed to disconnect MongoDB: %s", err))
		}
	}

	return client.Database(cfg.mongoDB), disconnect
}
