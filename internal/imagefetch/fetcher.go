package imagefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"proxydeck/internal/card"
	"proxydeck/internal/storage"
)

// Extension of every stored image.
const Extension = ".png"

var (
	ErrNoImage  = errors.New("printing has no image")
	ErrDownload = errors.New("image download failed")
)

// Source opens an image stream for a URL.
type Source interface {
	OpenImage(ctx context.Context, url string) (io.ReadCloser, error)
}

// Fetcher downloads printing images into storage handles. Two fetches for
// the same printing key into the same handle must not run concurrently.
type Fetcher struct {
	source Source
}

func NewFetcher(source Source) *Fetcher {
	return &Fetcher{source: source}
}

// Path is where the image of p lives inside h.
func Path(h storage.Handle, p card.Printing) string {
	return h.File(p.Key() + Extension)
}

// Fetch replaces any existing image for p in h with freshly downloaded
// bytes and returns its path. On failure no file exists at the path.
func (f *Fetcher) Fetch(ctx context.Context, p card.Printing, h storage.Handle) (string, error) {
	if !p.HasImage() {
		return "", fmt.Errorf("%w: %s (%s)", ErrNoImage, p.Name, p.Set)
	}

	target := Path(h, p)
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("remove stale image %s: %w", target, err)
	}

	body, err := f.source.OpenImage(ctx, p.ImageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDownload, p.ImageURL, err)
	}
	defer body.Close()

	if err := writeAtomic(h.Path, p.Key(), target, body); err != nil {
		return "", err
	}

	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("%w: %s not written: %w", ErrDownload, target, err)
	}
	return target, nil
}

func writeAtomic(dir, key, target string, body io.Reader) (err error) {
	tmp, err := os.CreateTemp(dir, key+"-*.part")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, body); err != nil {
		return fmt.Errorf("%w: copy: %w", ErrDownload, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync image: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close image: %w", err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename image: %w", err)
	}
	return nil
}
