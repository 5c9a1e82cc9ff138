package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
)

// PNGComposer writes a single painted page as PNG. Used for raster sessions.
type PNGComposer struct{}

func (PNGComposer) Extension() string {
	return ".png"
}

func (PNGComposer) Compose(ctx context.Context, pages []Page) ([]byte, error) {
	if len(pages) != 1 {
		return nil, fmt.Errorf("png export takes exactly one page, got %d", len(pages))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, Paint(pages[0])); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
