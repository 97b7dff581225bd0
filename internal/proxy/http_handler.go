package proxy

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"proxydeck/internal/decklist"
	"proxydeck/internal/httpx"
	"proxydeck/internal/storage"
)

// FormField is the multipart field carrying the decklist.
const FormField = "decklist"

type HTTPHandler struct {
	svc       *Service
	maxUpload int64
}

func NewHTTPHandler(svc *Service, maxUploadBytes int64) *HTTPHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &HTTPHandler{svc: svc, maxUpload: maxUploadBytes}
}

type CardView struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	PrintingKey string `json:"printing_key"`
	ImageURL    string `json:"image_url"`
}

type DeckView struct {
	Name  string     `json:"name"`
	Cards []CardView `json:"cards"`
}

type BuildResponse struct {
	UploadID string    `json:"upload_id"`
	Complete bool      `json:"complete"`
	Deck     DeckView  `json:"deck"`
	Failures []Failure `json:"failures"`
}

func NewBuildResponse(res *Result) BuildResponse {
	cards := make([]CardView, 0, len(res.Deck.Cards))
	for _, c := range res.Deck.Cards {
		cards = append(cards, CardView{
			Name:        c.Name,
			Quantity:    c.Quantity,
			PrintingKey: c.PrintingKey,
			ImageURL:    fmt.Sprintf("/v1/decks/%s/images/%s", res.UploadID, c.PrintingKey),
		})
	}
	return BuildResponse{
		UploadID: res.UploadID,
		Complete: res.Complete(),
		Deck:     DeckView{Name: res.Deck.Name, Cards: cards},
		Failures: res.Failures,
	}
}

// Create handles POST /v1/decks
// @Summary Build a proxy deck from a decklist upload
// @Tags decks
// @Accept multipart/form-data
// @Produce json
// @Param decklist formData file true "Plain text decklist"
// @Success 201 {object} httpx.SuccessResponse{data=BuildResponse}
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /v1/decks [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUpload + 1<<16); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_UPLOAD", "Expected a multipart form with a decklist file", nil)
		return
	}
	file, header, err := r.FormFile(FormField)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_UPLOAD", "Missing decklist file", []httpx.ErrorDetail{
			{Field: FormField, Message: "decklist is required"},
		})
		return
	}
	defer file.Close()

	upload := Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	if err := ValidateUpload(upload, h.maxUpload); err != nil {
		var uerr *UploadError
		errors.As(err, &uerr)
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_UPLOAD", "Invalid decklist upload", uerr.Details)
		return
	}

	res, err := h.svc.Build(r.Context(), upload.DeckName(), file)
	if err != nil {
		switch {
		case errors.Is(err, decklist.ErrNoCards):
			httpx.JSONError(w, r, http.StatusUnprocessableEntity, "NO_VALID_CARDS", "The decklist contains no valid card lines", nil)
		case errors.Is(err, storage.ErrExhausted):
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "No storage available, try again", nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccessCreated(w, r, NewBuildResponse(res))
}

// Get handles GET /v1/decks/{id}
// @Summary Ledger record of a deck build
// @Tags decks
// @Produce json
// @Param id path string true "Upload id"
// @Success 200 {object} httpx.SuccessResponse{data=Run}
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/decks/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLookupError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, run, nil)
}

// Decklist handles GET /v1/decks/{id}/decklist
// @Summary Normalized decklist of an upload
// @Tags decks
// @Produce plain
// @Param id path string true "Upload id"
// @Success 200 {string} string
// @Router /v1/decks/{id}/decklist [get]
func (h *HTTPHandler) Decklist(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.DecklistPath(r.PathValue("id"))
	if err != nil {
		writeLookupError(w, r, err)
		return
	}
	http.ServeFile(w, r, path)
}

// Image handles GET /v1/decks/{id}/images/{key}
// @Summary Stored card image of an upload
// @Tags decks
// @Produce png
// @Param id path string true "Upload id"
// @Param key path string true "Printing key"
// @Success 200 {file} binary
// @Router /v1/decks/{id}/images/{key} [get]
func (h *HTTPHandler) Image(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.ImagePath(r.PathValue("id"), r.PathValue("key"))
	if err != nil {
		writeLookupError(w, r, err)
		return
	}
	http.ServeFile(w, r, path)
}

func writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidID):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Upload id must be a UUID", nil)
	case errors.Is(err, ErrRunNotFound), errors.Is(err, ErrImageNotFound), errors.Is(err, fs.ErrNotExist):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
