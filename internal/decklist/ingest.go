package decklist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// FileName is the name of the normalized decklist inside a storage directory.
const FileName = "decklist.txt"

// Ingest reads r line by line, keeps every accepted line as a Card and writes
// its normalized form to w in input order. It returns ErrNoCards when no line
// was accepted.
func Ingest(name string, r io.Reader, w io.Writer) (Deck, error) {
	deck := Deck{Name: name}
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)

	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			if card, normalized, ok := ParseLine(line); ok {
				deck.Cards = append(deck.Cards, card)
				if _, err := writer.WriteString(normalized + "\n"); err != nil {
					return Deck{}, fmt.Errorf("write normalized line: %w", err)
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return Deck{}, fmt.Errorf("read decklist: %w", readErr)
		}
	}

	if err := writer.Flush(); err != nil {
		return Deck{}, fmt.Errorf("flush normalized decklist: %w", err)
	}
	if len(deck.Cards) == 0 {
		return Deck{}, ErrNoCards
	}
	return deck, nil
}

// IngestFile runs Ingest with a file sink at path. The file is synced and
// closed before IngestFile returns, whatever the outcome.
func IngestFile(name string, r io.Reader, path string) (deck Deck, err error) {
	f, err := os.Create(path)
	if err != nil {
		return Deck{}, fmt.Errorf("create decklist file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			deck, err = Deck{}, fmt.Errorf("close decklist file: %w", closeErr)
		}
	}()

	deck, err = Ingest(name, r, f)
	if err != nil {
		return Deck{}, err
	}
	if err := f.Sync(); err != nil {
		return Deck{}, fmt.Errorf("sync decklist file: %w", err)
	}
	return deck, nil
}

// ReadFile parses a previously persisted decklist without writing anything.
func ReadFile(name, path string) (Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return Deck{}, fmt.Errorf("open decklist file: %w", err)
	}
	defer f.Close()
	return Ingest(name, f, io.Discard)
}

// FileIngestor ingests uploads into a decklist file on disk.
type FileIngestor struct{}

func (FileIngestor) IngestFile(name string, r io.Reader, path string) (Deck, error) {
	return IngestFile(name, r, path)
}
