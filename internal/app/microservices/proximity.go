package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Temutjin2k/campus-radar/config"
	"github.com/Temutjin2k/campus-radar/internal/adapter/http/handler"
	"github.com/Temutjin2k/campus-radar/internal/adapter/http/server"
	mongorepo "github.com/Temutjin2k/campus-radar/internal/adapter/mongo"
	repo "github.com/Temutjin2k/campus-radar/internal/adapter/postgres"
	broker "github.com/Temutjin2k/campus-radar/internal/adapter/rabbit"
	"github.com/Temutjin2k/campus-radar/internal/service/auth"
	"github.com/Temutjin2k/campus-radar/internal/service/location"
	"github.com/Temutjin2k/campus-radar/internal/service/privacy"
	"github.com/Temutjin2k/campus-radar/internal/service/profile"
	"github.com/Temutjin2k/campus-radar/pkg/cache"
	"github.com/Temutjin2k/campus-radar/pkg/clock"
	"github.com/Temutjin2k/campus-radar/pkg/logger"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-radar/pkg/mongo"
	"github.com/Temutjin2k/campus-radar/pkg/postgres"
	"github.com/Temutjin2k/campus-radar/pkg/rabbit"
	redispkg "github.com/Temutjin2k/campus-radar/pkg/redis"
	"github.com/Temutjin2k/campus-radar/pkg/trm"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ProximityService runs location, privacy and profile projection behind one HTTP API.
type ProximityService struct {
	postgresDB *postgres.PostgreDB
	mongoDB    *mongo.MongoDB
	redis      *redis.Client
	rabbit     *rabbit.RabbitMQ
	httpServer *server.API

	cfg config.Config
	log logger.Logger
}

func NewProximity(ctx context.Context, cfg config.Config, log logger.Logger) (*ProximityService, error) {
	ctx = wrap.WithAction(ctx, "init_proximity_service")
	s := &ProximityService{cfg: cfg, log: log}

	var err error
	s.postgresDB, err = postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	s.mongoDB, err = mongo.New(ctx, cfg.Mongo)
	if err != nil {
		log.Error(ctx, "Failed to connect to mongo", err)
		s.close(ctx)
		return nil, err
	}

	locationRepo := mongorepo.NewLocationRepo(s.mongoDB.DB, cfg.Mongo.Collection)
	if err := locationRepo.EnsureIndexes(ctx); err != nil {
		log.Error(ctx, "Failed to create location indexes", err)
		s.close(ctx)
		return nil, err
	}

	// the cache tolerates a missing redis, so does startup
	var remote redis.UniversalClient
	if cfg.Redis.Addr != "" {
		s.redis, err = redispkg.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn(ctx, "redis unavailable, using in-process cache only", "addr", cfg.Redis.Addr, "error", err.Error())
			s.redis = nil
		} else {
			remote = s.redis
		}
	}

	clk := clock.Real{}
	tiered, err := cache.NewTiered(remote, cache.Options{
		LocalSize:   cfg.Cache.LocalSize,
		LocalMaxTTL: cfg.Cache.LocalMaxTTL,
		Timeout:     cfg.Cache.Timeout,
		Clock:       clk,
	}, log)
	if err != nil {
		log.Error(ctx, "Failed to setup cache", err)
		s.close(ctx)
		return nil, err
	}

	var publisher location.Publisher
	if cfg.RabbitMQ.Enabled {
		s.rabbit, err = rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
		if err != nil {
			log.Error(ctx, "Failed to connect to rabbitmq", err)
			s.close(ctx)
			return nil, err
		}
		if err := s.rabbit.DeclareTopicExchange(ctx, cfg.RabbitMQ.Exchange); err != nil {
			log.Error(ctx, "Failed to declare location exchange", err)
			s.close(ctx)
			return nil, err
		}
		publisher = broker.NewLocationProducer(s.rabbit, cfg.RabbitMQ.Exchange)
	}

	var graph privacy.RelationshipGraph = privacy.NoConnections{}
	if cfg.Privacy.FriendsOnlyEnabled {
		graph = repo.NewConnectionRepo(s.postgresDB.Pool)
	}

	buildings := location.NewBuildingResolver(cfg.Location.BuildingResolver, location.DefaultBuildings)

	locationService := location.New(
		locationRepo,
		repo.NewLocationHistoryRepo(s.postgresDB.Pool),
		buildings,
		publisher,
		tiered,
		clk,
		location.Config{
			UpdateCooldown: cfg.Location.UpdateCooldown,
			MaxRadius:      cfg.Location.MaxRadiusMeters,
			HistoryLimit:   cfg.Location.HistoryLimit,
			StoreTimeout:   cfg.Database.QueryTimeout,
			LocationTTL:    cfg.Cache.LocationTTL,
			NearbyTTL:      cfg.Cache.NearbyTTL,
			PublishTimeout: cfg.RabbitMQ.PublishTimeout,
		},
		log,
	)

	privacyService := privacy.New(
		repo.NewPrivacyRepo(s.postgresDB.Pool),
		locationService,
		graph,
		tiered,
		trm.New(s.postgresDB.Pool),
		privacy.Config{
			SettingsTTL:  cfg.Cache.PrivacySettingsTTL,
			DecisionTTL:  cfg.Cache.PrivacyDecisionTTL,
			StoreTimeout: cfg.Database.QueryTimeout,
		},
		log,
	)

	profileService := profile.New(
		privacyService,
		repo.NewUserRepo(s.postgresDB.Pool),
		locationService,
		buildings,
		clk,
		log,
	)

	s.httpServer, err = server.New(cfg, server.Services{
		Location: locationService,
		Privacy:  privacyService,
		Profile:  profileService,
		Tokens:   auth.NewTokenService(cfg.Auth.JWTSecret, clk),
		Checks:   s.healthChecks(),
	}, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		s.close(ctx)
		return nil, err
	}

	return s, nil
}

func (s *ProximityService) healthChecks() map[string]handler.Pinger {
	checks := map[string]handler.Pinger{
		"postgres": s.postgresDB.Pool.Ping,
		"mongo": func(ctx context.Context) error {
			return s.mongoDB.Client.Ping(ctx, readpref.Primary())
		},
	}
	if s.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return s.redis.Ping(ctx).Err()
		}
	}
	return checks
}

func (s *ProximityService) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	s.httpServer.Run(ctx, errCh)
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "proximity service closed")
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "proximity service started", "port", s.cfg.Server.Port)

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (s *ProximityService) close(ctx context.Context) {
	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.rabbit != nil {
		if err := s.rabbit.Close(ctx); err != nil {
			s.log.Warn(ctx, "Failed to close rabbitmq connection", "error", err.Error())
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.Warn(ctx, "Failed to close redis client", "error", err.Error())
		}
	}

	if s.mongoDB != nil {
		if err := s.mongoDB.Close(ctx); err != nil {
			s.log.Warn(ctx, "Failed to disconnect from mongo", "error", err.Error())
		}
	}

	if s.postgresDB != nil {
		s.postgresDB.Close()
	}
}
