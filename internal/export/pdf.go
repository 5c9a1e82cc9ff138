package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/kpauljoseph/pagemark/pkg/logger"
)

// PDFComposer builds a PDF with one full-bleed image page per painted page.
type PDFComposer struct {
	logger *logger.Logger
}

func NewPDFComposer(log *logger.Logger) *PDFComposer {
	if log == nil {
		log = logger.Discard()
	}
	return &PDFComposer{logger: log}
}

func (c *PDFComposer) Extension() string {
	return ".pdf"
}

func (c *PDFComposer) Compose(ctx context.Context, pages []Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to compose")
	}

	readers := make([]io.Reader, 0, len(pages))
	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, Paint(p)); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}
		c.logger.Trace("Encoded page %d (%d bytes)", i+1, buf.Len())
		readers = append(readers, &buf)
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Full

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, readers, imp, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to build PDF: %w", err)
	}
	c.logger.Debug("Composed PDF with %d pages (%d bytes)", len(pages), out.Len())
	return out.Bytes(), nil
}
