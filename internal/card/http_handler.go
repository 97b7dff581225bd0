package card

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"proxydeck/internal/httpx"
	"proxydeck/internal/storage"
)

// MaxNames caps how many names one multi-name lookup accepts.
const MaxNames = 50

type HTTPHandler struct {
	resolver  *Resolver
	fetcher   ImageFetcher
	allocator ScratchAllocator
}

func NewHTTPHandler(resolver *Resolver, fetcher ImageFetcher, allocator ScratchAllocator) *HTTPHandler {
	return &HTTPHandler{resolver: resolver, fetcher: fetcher, allocator: allocator}
}

// NameDetails is one entry of a multi-name lookup.
type NameDetails struct {
	Name      string       `json:"name"`
	Printings []CardDetail `json:"printings"`
}

// List handles GET /v1/cards/{name}
// @Summary List every printing of a card
// @Tags cards
// @Produce json
// @Param name path string true "Card name"
// @Success 200 {object} httpx.SuccessResponse{data=[]CardDetail}
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/cards/{name} [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Card name is required", nil)
		return
	}

	printings, err := h.resolver.Resolve(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(printings) == 0 {
		writeError(w, r, ErrNotFound)
		return
	}
	httpx.JSONSuccess(w, r, NewDetails(printings), map[string]interface{}{"total": len(printings)})
}

// Newest handles GET /v1/cards/{name}/newest
// @Summary Newest printing of a card
// @Tags cards
// @Produce json
// @Param name path string true "Card name"
// @Success 200 {object} httpx.SuccessResponse{data=CardDetail}
// @Router /v1/cards/{name}/newest [get]
func (h *HTTPHandler) Newest(w http.ResponseWriter, r *http.Request) {
	h.choose(w, r, PolicyNewest)
}

// Oldest handles GET /v1/cards/{name}/oldest
// @Summary Oldest printing of a card
// @Tags cards
// @Produce json
// @Param name path string true "Card name"
// @Success 200 {object} httpx.SuccessResponse{data=CardDetail}
// @Router /v1/cards/{name}/oldest [get]
func (h *HTTPHandler) Oldest(w http.ResponseWriter, r *http.Request) {
	h.choose(w, r, PolicyOldest)
}

func (h *HTTPHandler) choose(w http.ResponseWriter, r *http.Request, policy Policy) {
	p, err := h.resolver.Choose(r.Context(), r.PathValue("name"), policy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, NewDetail(p), nil)
}

// Many handles GET /v1/cards?names=a,b
// @Summary List printings for several cards
// @Tags cards
// @Produce json
// @Param names query string true "Comma separated card names"
// @Success 200 {object} httpx.SuccessResponse{data=[]NameDetails}
// @Router /v1/cards [get]
func (h *HTTPHandler) Many(w http.ResponseWriter, r *http.Request) {
	var names []string
	for _, n := range strings.Split(r.URL.Query().Get("names"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 || len(names) > MaxNames {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid names parameter", []httpx.ErrorDetail{
			{Field: "names", Message: "between 1 and 50 comma separated names are required"},
		})
		return
	}

	results, err := h.resolver.ResolveMany(r.Context(), names)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]NameDetails, 0, len(results))
	for _, res := range results {
		out = append(out, NameDetails{Name: res.Name, Printings: NewDetails(res.Printings)})
	}
	httpx.JSONSuccess(w, r, out, nil)
}

// Image handles GET /v1/cards/{name}/image/{policy}
// @Summary Download the image of the newest or oldest printing
// @Tags cards
// @Produce png
// @Param name path string true "Card name"
// @Param policy path string true "newest or oldest"
// @Success 200 {file} binary
// @Router /v1/cards/{name}/image/{policy} [get]
func (h *HTTPHandler) Image(w http.ResponseWriter, r *http.Request) {
	policy := Policy(r.PathValue("policy"))
	if policy != PolicyNewest && policy != PolicyOldest {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Policy must be newest or oldest", nil)
		return
	}

	p, err := h.resolver.Choose(r.Context(), r.PathValue("name"), policy)
	if err != nil {
		writeError(w, r, err)
		return
	}

	handle, err := h.allocator.Allocate(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer os.RemoveAll(handle.Path)

	path, err := h.fetcher.Fetch(r.Context(), p, handle)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadGateway, "IMAGE_DOWNLOAD_FAILED", "Failed to download card image", nil)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="`+p.Key()+`.png"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "CARD_NOT_FOUND", "Card not found", nil)
	case errors.Is(err, ErrNoPrinting):
		httpx.JSONError(w, r, http.StatusNotFound, "NO_IMAGE", "No printing of this card has an image", nil)
	case errors.Is(err, ErrUpstream):
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "Card data source unavailable", nil)
	case errors.Is(err, storage.ErrExhausted):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "No storage available", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
