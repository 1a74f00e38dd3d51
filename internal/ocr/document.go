package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// OCRDocument extracts text from a PDF file on disk. Each page is
// rasterized at 300 DPI — a resolution that balances OCR accuracy against
// payload size — and sent to the OCR model one page at a time. Pages are
// processed sequentially on purpose: the model server has limited
// concurrent-request capacity and per-page fan-out would also unbound
// memory use.
//
// Per-page results are concatenated as "=== Page N ===" sections. A page
// whose OCR call fails or yields no text is omitted; partial results are
// acceptable. An error is returned only when the PDF cannot be rasterized
// at all. A PDF with zero pages yields an empty string, not an error —
// "no text found" and "infrastructure failure" are distinct outcomes.
func (c *Client) OCRDocument(ctx context.Context, pdfPath string) (string, error) {
	if !c.enabled {
		return "", ErrDisabled
	}

	pages, err := c.rasterizer.Rasterize(pdfPath, 300)
	if err != nil {
		c.metrics.runFinished(false)
		return "", fmt.Errorf("rasterize pdf: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"path":  pdfPath,
		"pages": len(pages),
	}).Info("starting document OCR")

	var sections []string
	for i, image := range pages {
		pageNum := i + 1

		text, err := c.OCRImage(ctx, image)
		if err != nil {
			c.log.WithError(err).WithField("page", pageNum).Warn("page OCR failed, skipping")
			c.metrics.pageFinished(false)
			continue
		}
		c.metrics.pageFinished(true)

		if text == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("=== Page %d ===\n%s", pageNum, text))
	}

	result := strings.Join(sections, "\n\n")
	c.metrics.runFinished(true)

	c.log.WithFields(logrus.Fields{
		"path":  pdfPath,
		"chars": len(result),
	}).Info("document OCR finished")

	return result, nil
}
