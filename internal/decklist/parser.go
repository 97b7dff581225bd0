package decklist

import (
	"strconv"
	"strings"
)

const minLineFields = 2

// quantitySuffixes are tried in order against the quantity field, e.g. "4x" or "4,".
var quantitySuffixes = []string{"x", ","}

// ParseLine parses one "<quantity> <card name>" line. It returns the card, the
// normalized line and true when the line is accepted. Rejected lines return
// false and are not an error.
func ParseLine(line string) (Card, string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Card{}, "", false
	}

	fields := strings.Fields(trimmed)
	if len(fields) < minLineFields {
		return Card{}, "", false
	}

	quantity, ok := parseQuantity(fields[0])
	if !ok {
		return Card{}, "", false
	}

	// Strip the quantity field's characters from the front so only the name remains.
	name := strings.TrimSpace(strings.TrimLeft(trimmed, fields[0]))

	card, err := NewCard(name, quantity)
	if err != nil {
		return Card{}, "", false
	}
	return card, card.Line(), true
}

func parseQuantity(field string) (int, bool) {
	if n, err := strconv.Atoi(field); err == nil {
		return n, true
	}
	for _, suffix := range quantitySuffixes {
		stripped, found := strings.CutSuffix(field, suffix)
		if !found || stripped == "" {
			continue
		}
		if n, err := strconv.Atoi(stripped); err == nil {
			return n, true
		}
	}
	return 0, false
}
