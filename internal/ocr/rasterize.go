package ocr

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
)

// Rasterizer converts a PDF file into one encoded image per page.
type Rasterizer interface {
	Rasterize(pdfPath string, dpi int) ([][]byte, error)
}

// fitzRasterizer renders pages with MuPDF via go-fitz and encodes them as
// JPEG, the format the OCR model consumes.
type fitzRasterizer struct {
	quality int
}

// NewFitzRasterizer returns the default MuPDF-backed rasterizer.
func NewFitzRasterizer() Rasterizer {
	return &fitzRasterizer{quality: 90}
}

func (r *fitzRasterizer) Rasterize(pdfPath string, dpi int) ([][]byte, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := make([][]byte, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.quality}); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}
