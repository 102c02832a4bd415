// @title                       GTA Cheats API
// @version                     1.0
// @description                 Cheat catalog, favorites with a free-tier quota, badges and a live favorites stream.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cheatvault/gta-cheats-api/internal/api"
	"github.com/cheatvault/gta-cheats-api/internal/api/handler"
	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
	"github.com/cheatvault/gta-cheats-api/internal/core/service"
	"github.com/cheatvault/gta-cheats-api/internal/infrastructure/db/seed"
	redisstore "github.com/cheatvault/gta-cheats-api/internal/infrastructure/db/redis"
	"github.com/cheatvault/gta-cheats-api/internal/infrastructure/lock"
	"github.com/cheatvault/gta-cheats-api/internal/infrastructure/queue"
	"github.com/cheatvault/gta-cheats-api/internal/jobs"
	"github.com/cheatvault/gta-cheats-api/internal/pkg/config"
	"github.com/cheatvault/gta-cheats-api/pkg/logger"
)

const (
	serviceName     = "gta-cheats-api"
	bootTimeout     = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		// The logger may not be initialised when config loading fails.
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("service stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	// --- Change feed hub ---
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := queue.NewHub(cfg.FeedWorkers, logger.Component("hub"))
	hub.Start(hubCtx)
	defer hub.Close()

	// --- Data gateway ---
	bootCtx, cancelBoot := context.WithTimeout(ctx, bootTimeout)
	defer cancelBoot()

	gw, err := openGateway(bootCtx, cfg, hub, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		gw.close(closeCtx)
	}()

	if cfg.SeedCheats {
		if err := gw.cheats.Seed(bootCtx, seed.Cheats()); err != nil {
			return err
		}
	}
	if err := gw.badges.EnsureCatalog(bootCtx, domain.DefaultBadges(cfg.FreeLikeLimit)); err != nil {
		return err
	}

	checks := map[string]handler.Check{cfg.StoreDriver: gw.check}

	// --- Per-user lock ---
	var locker ports.UserLocker = lock.NewLocal(cfg.Lock.Wait)
	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(bootCtx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		locker = redisstore.NewLocker(rdb, cfg.Lock.TTL, cfg.Lock.Wait, logger.Component("locker"))
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using Redis like locks")
	}

	// --- Services ---
	authService := service.NewAuthService(gw.users, cfg.JWTSecret, cfg.TokenTTL)
	premiumService := service.NewPremiumService(gw.subscriptions, log)
	badgeService := service.NewBadgeService(gw.badges, log)
	likeService := service.NewLikeService(gw.likes, gw.cheats, premiumService, badgeService, locker, cfg.FreeLikeLimit, log)
	favoritesService := service.NewFavoritesService(gw.likes, premiumService, cfg.FreeLikeLimit)
	auditor := jobs.NewMeteredAuditor(service.NewQuotaAuditService(gw.likes, premiumService, cfg.FreeLikeLimit, log))

	if cfg.Admin.Email != "" {
		if err := authService.EnsureAdmin(bootCtx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email); err != nil {
			return err
		}
	}
	cancelBoot()

	// --- Background work ---
	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	var feeds errgroup.Group
	if gw.feed != nil {
		feeds.Go(func() error { return gw.feed(feedCtx) })
	}

	scheduler, err := jobs.NewScheduler(cfg.QuotaAuditSchedule, auditor, logger.Component("jobs"))
	if err != nil {
		return err
	}
	scheduler.Start()

	// --- HTTP ---
	streamsCtx, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()
	viewLog := logger.Component("favorites-view")
	statusLog := logger.Component("like-status-view")

	e := api.NewRouter(api.Deps{
		Ctx:            streamsCtx,
		Logger:         log,
		JWTSecret:      cfg.JWTSecret,
		FreeLikeLimit:  cfg.FreeLikeLimit,
		AllowedOrigins: cfg.AllowedOrigins,
		Auth:           authService,
		Cheats:         service.NewCheatService(gw.cheats),
		Likes:          likeService,
		Badges:         badgeService,
		Premium:        premiumService,
		Favorites:      favoritesService,
		Auditor:        auditor,
		NewStream: func(userID string) handler.FavoritesStream {
			return service.NewFavoritesView(favoritesService, hub, userID, viewLog)
		},
		NewLikeStream: func(userID string, cheatID int64) handler.LikeStatusStream {
			return service.NewLikeStatusView(likeService, hub, userID, cheatID, statusLog)
		},
		Checks: checks,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	// --- Graceful shutdown: HTTP, streams, cron, feed readers, hub ---
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	stopStreams()
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown")
	}
	stopFeed()
	if err := feeds.Wait(); err != nil {
		log.Error().Err(err).Msg("change feed stopped with error")
	}
	stopHub()
	hub.Close()

	log.Info().Msg("shutdown complete")
	return nil
}
