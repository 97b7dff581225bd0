package proxy

import (
	"time"

	"proxydeck/internal/decklist"
)

// ProxyCard is a deck card whose image is stored on disk.
type ProxyCard struct {
	decklist.Card
	PrintingKey string `json:"printing_key"`
	ImagePath   string `json:"-"`
}

type ProxyDeck struct {
	Name  string      `json:"name"`
	Cards []ProxyCard `json:"cards"`
}

type Reason string

const (
	ReasonNotFound  Reason = "not_found"
	ReasonNoImage   Reason = "no_image"
	ReasonUpstream  Reason = "upstream"
	ReasonDownload  Reason = "download"
	ReasonCancelled Reason = "cancelled"
)

// Failure explains why one deck card has no image.
type Failure struct {
	Card    decklist.Card `json:"card"`
	Reason  Reason        `json:"reason"`
	Message string        `json:"message"`
}

// Result is the outcome of one pipeline run. A partial deck is returned
// together with the failures of the missing cards.
type Result struct {
	UploadID  string    `json:"upload_id"`
	Requested int       `json:"requested"`
	Deck      ProxyDeck `json:"deck"`
	Failures  []Failure `json:"failures"`
}

// Complete reports whether every requested card has an image.
func (r *Result) Complete() bool {
	return len(r.Failures) == 0 && len(r.Deck.Cards) == r.Requested
}

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusPartial   = "PARTIAL"
	StatusFailed    = "FAILED"
)

// Run is the ledger record of one pipeline run.
type Run struct {
	ID            string     `json:"id"`
	DeckName      string     `json:"deck_name"`
	Status        string     `json:"status"`
	CardsTotal    int        `json:"cards_total"`
	CardsResolved int        `json:"cards_resolved"`
	ImagesFetched int        `json:"images_fetched"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Failures      []Failure  `json:"failures"`
}
