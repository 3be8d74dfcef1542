package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"hotel_search/internal/adapters/amadeus"
	server "hotel_search/internal/adapters/http_server"
	"hotel_search/internal/adapters/observability"
	redisad "hotel_search/internal/adapters/redis"
	"hotel_search/internal/app"
	"hotel_search/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// deps
	tokens := amadeus.NewTokenManager(cfg.AuthURL, cfg.ClientID, cfg.ClientSecret, cfg.HTTPTimeout)
	client := amadeus.New(cfg.AmadeusBase, cfg.HTTPTimeout, cfg.AmadeusRPS)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	deny := app.DefaultDenylist()
	deny.Vendors = cfg.VendorDenylist
	filter := app.NewListingFilter(deny)

	svc := app.NewSearchService(tokens, client, filter, cache, cfg.CacheTTL)

	// http
	srv := server.New(cfg.RequestTimeout)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(server.NewHandlers(svc))

	log.Info().Str("addr", cfg.HTTPAddr).Str("base", cfg.AmadeusBase).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
