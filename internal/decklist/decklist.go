package decklist

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinQuantity = 1
	MaxQuantity = 75
)

var (
	ErrNoCards         = errors.New("decklist contains no valid cards")
	ErrInvalidQuantity = errors.New("card quantity out of range")
	ErrEmptyName       = errors.New("card name is empty")
)

// Card is one decklist entry. Quantity is always within [MinQuantity, MaxQuantity].
type Card struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// NewCard builds a Card, refusing quantities outside the accepted bound.
func NewCard(name string, quantity int) (Card, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Card{}, ErrEmptyName
	}
	if quantity < MinQuantity || quantity > MaxQuantity {
		return Card{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	return Card{Name: name, Quantity: quantity}, nil
}

// Line returns the canonical "<quantity> <name>" form.
func (c Card) Line() string {
	return fmt.Sprintf("%d %s", c.Quantity, c.Name)
}

// Deck is an ordered list of cards named after its source (upload id or file name).
type Deck struct {
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
}

// Total returns the summed quantity of every card.
func (d Deck) Total() int {
	n := 0
	for _, c := range d.Cards {
		n += c.Quantity
	}
	return n
}
