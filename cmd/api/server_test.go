package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"proxydeck/internal/card"
	"proxydeck/internal/config"
	"proxydeck/internal/decklist"
	"proxydeck/internal/httpx"
	"proxydeck/internal/imagefetch"
	"proxydeck/internal/platform/mtgapi"
	"proxydeck/internal/proxy"
	"proxydeck/internal/storage"
)

func fakeUpstream(t *testing.T) *mtgapi.Client {
	t.Helper()
	db := map[string][]int{"Ponder": {139512, 244313}, "Swamp": {574}}

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := strings.CutPrefix(r.URL.Path, "/img/"); ok {
			w.Header().Set("Content-Type", "image/png")
			_, _ = io.WriteString(w, "png:"+id)
			return
		}
		if r.URL.Path == fmt.Sprintf("/v1/cards/%d", mtgapi.PingMultiverseID) {
			_ = json.NewEncoder(w).Encode(mtgapi.CardResponse{Card: &mtgapi.Card{
				Name:         "Ping",
				MultiverseID: mtgapi.PingMultiverseID,
				ImageURL:     srv.URL + "/img/ping",
			}})
			return
		}
		name := strings.Trim(r.URL.Query().Get("name"), `"`)
		cards := []mtgapi.Card{}
		for _, id := range db[name] {
			cards = append(cards, mtgapi.Card{
				Name:         name,
				MultiverseID: mtgapi.MultiverseID(id),
				ImageURL:     fmt.Sprintf("%s/img/%d", srv.URL, id),
			})
		}
		_ = json.NewEncoder(w).Encode(mtgapi.CardsResponse{Cards: cards})
	}))
	t.Cleanup(srv.Close)
	return mtgapi.NewClient(mtgapi.Config{Domain: srv.URL, Version: "v1", Resource: "cards", Timeout: 5 * time.Second})
}

func newTestServer(t *testing.T, apiKey string, ready func(context.Context) error) http.Handler {
	t.Helper()
	client := fakeUpstream(t)
	cfg := config.Default()
	cfg.APIKey = apiKey
	cfg.RateLimitRPS = 1000
	cfg.RateLimitBurst = 1000

	allocator := storage.NewAllocator(t.TempDir())
	resolver := card.NewResolver(client, 2)
	fetcher := imagefetch.NewFetcher(client)
	svc := proxy.NewService(allocator, decklist.FileIngestor{}, resolver, fetcher, nil,
		proxy.Config{Concurrency: 2, Policy: card.PolicyNewest}, zap.NewNop())

	if ready == nil {
		ready = client.Ping
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	srv, err := newServer(ctx, cfg, zap.NewNop(), routes{
		cards: card.NewHTTPHandler(resolver, fetcher, allocator),
		decks: proxy.NewHTTPHandler(svc, cfg.MaxUploadBytes),
		ready: ready,
	})
	require.NoError(t, err)
	return srv
}

func decklistUpload(t *testing.T, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="decklist"; filename="deck.txt"`)
	h.Set("Content-Type", "text/plain")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = io.WriteString(part, body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/v1/decks", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t, "secret", nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := newTestServer(t, "", func(context.Context) error { return errors.New("upstream down") })
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream down")
}

func TestAPIKeyGuardsV1Only(t *testing.T) {
	srv := newTestServer(t, "secret", nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cards/Ponder", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/cards/Ponder", nil)
	req.Header.Set(httpx.APIKeyHeader, "secret")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []card.CardDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
}

func TestRouting(t *testing.T) {
	srv := newTestServer(t, "", nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/v1/cards/Ponder/newest", http.StatusOK},
		{http.MethodGet, "/v1/cards/Ponder/oldest", http.StatusOK},
		{http.MethodGet, "/v1/cards/Nothing", http.StatusNotFound},
		{http.MethodGet, "/v1/cards?names=Ponder,Swamp", http.StatusOK},
		{http.MethodGet, "/v1/cards/Ponder/image/newest", http.StatusOK},
		{http.MethodGet, "/v1/decks/not-a-uuid", http.StatusBadRequest},
		{http.MethodDelete, "/v1/cards/Ponder", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v2/cards/Ponder", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestBuildDeckAndFetchArtifacts(t *testing.T) {
	srv := newTestServer(t, "", nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, decklistUpload(t, "4 Ponder\nbanana\n10 Swamp\n"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data proxy.BuildResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Data.Complete)
	require.Len(t, created.Data.Deck.Cards, 2)
	assert.Equal(t, "244313", created.Data.Deck.Cards[0].PrintingKey)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, created.Data.Deck.Cards[0].ImageURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png:244313", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/decks/"+created.Data.UploadID+"/decklist", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4 Ponder\n10 Swamp\n", rec.Body.String())
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://***@localhost:5432/proxydeck", redactDSN("postgres://user:pw@localhost:5432/proxydeck"))
	assert.Equal(t, "host=localhost", redactDSN("host=localhost"))
	assert.Equal(t, "postgres://localhost/db", redactDSN("postgres://localhost/db"))
}

func TestNewServer_RejectsBadTrustedProxy(t *testing.T) {
	cfg := config.Default()
	cfg.TrustedProxies = []string{"not-an-ip"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := newServer(ctx, cfg, zap.NewNop(), routes{})
	assert.Error(t, err)
}

