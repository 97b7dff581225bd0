package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"proxydeck/internal/card"
	"proxydeck/internal/config"
	"proxydeck/internal/httpx"
	"proxydeck/internal/proxy"
)

// multipartOverhead is the slack allowed on top of MaxUploadBytes for
// multipart boundaries and headers.
const multipartOverhead = 64 << 10

type routes struct {
	cards *card.HTTPHandler
	decks *proxy.HTTPHandler
	ready func(context.Context) error
}

func newRouter(rt routes, apiKey string) *http.ServeMux {
	v1 := http.NewServeMux()
	v1.HandleFunc("GET /v1/cards", rt.cards.Many)
	v1.HandleFunc("GET /v1/cards/{name}", rt.cards.List)
	v1.HandleFunc("GET /v1/cards/{name}/newest", rt.cards.Newest)
	v1.HandleFunc("GET /v1/cards/{name}/oldest", rt.cards.Oldest)
	v1.HandleFunc("GET /v1/cards/{name}/image/{policy}", rt.cards.Image)
	v1.HandleFunc("POST /v1/decks", rt.decks.Create)
	v1.HandleFunc("GET /v1/decks/{id}", rt.decks.Get)
	v1.HandleFunc("GET /v1/decks/{id}/decklist", rt.decks.Decklist)
	v1.HandleFunc("GET /v1/decks/{id}/images/{key}", rt.decks.Image)

	router := http.NewServeMux()
	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.ready(ctx); err != nil {
			http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("/v1/", httpx.APIKeyMiddleware(apiKey)(v1))
	return router
}

func newServer(ctx context.Context, cfg config.Config, logger *zap.Logger, rt routes) (http.Handler, error) {
	limiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	if err := limiter.TrustProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	return httpx.Chain(newRouter(rt, cfg.APIKey),
		httpx.RecoveryMiddleware(logger),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSOrigins),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxUploadBytes+multipartOverhead),
	), nil
}
