// Package convert holds the external collaborators the conversion handlers
// delegate to: a PDF engine, an image codec, office document converters and
// a Ghostscript process runner. Handlers treat them as black boxes behind
// small interfaces.
package convert

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFEngine manipulates PDF documents on disk
type PDFEngine interface {
	// Rotate adds angle degrees to every page's current rotation, mod 360
	Rotate(ctx context.Context, inPath, outPath string, angle int) error

	// Split writes a document containing only the given 0-based pages, in
	// the given order. Out-of-range indices are silently skipped. Returns
	// the number of pages kept.
	Split(ctx context.Context, inPath, outPath string, pages []int) (int, error)

	// Merge concatenates the input documents in the exact order supplied
	Merge(ctx context.Context, inPaths []string, outPath string) error

	// Compress rewrites the document with optimized object streams and
	// recompressed embedded images
	Compress(ctx context.Context, inPath, outPath string) error

	// PageCount returns the number of pages in the document
	PageCount(ctx context.Context, inPath string) (int, error)
}

// PDFCPUEngine implements PDFEngine with the pdfcpu library
type PDFCPUEngine struct {
	conf *model.Configuration
}

var _ PDFEngine = (*PDFCPUEngine)(nil)

// NewPDFCPUEngine creates a pdfcpu-backed PDF engine with relaxed validation,
// matching the tolerance of the tools this service replaces
func NewPDFCPUEngine() *PDFCPUEngine {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPUEngine{conf: conf}
}

func (e *PDFCPUEngine) Rotate(ctx context.Context, inPath, outPath string, angle int) error {
	if err := api.RotateFile(inPath, outPath, angle, nil, e.conf); err != nil {
		return fmt.Errorf("rotate failed: %w", err)
	}
	return nil
}

func (e *PDFCPUEngine) Split(ctx context.Context, inPath, outPath string, pages []int) (int, error) {
	count, err := e.PageCount(ctx, inPath)
	if err != nil {
		return 0, err
	}

	selected := make([]string, 0, len(pages))
	for _, p := range pages {
		if p < 0 || p >= count {
			continue
		}
		selected = append(selected, strconv.Itoa(p+1))
	}
	if len(selected) == 0 {
		return 0, nil
	}

	if err := api.CollectFile(inPath, outPath, selected, e.conf); err != nil {
		return 0, fmt.Errorf("split failed: %w", err)
	}

	return len(selected), nil
}

func (e *PDFCPUEngine) Merge(ctx context.Context, inPaths []string, outPath string) error {
	if err := api.MergeCreateFile(inPaths, outPath, false, e.conf); err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}
	return nil
}

func (e *PDFCPUEngine) Compress(ctx context.Context, inPath, outPath string) error {
	if err := api.OptimizeFile(inPath, outPath, e.conf); err != nil {
		return fmt.Errorf("compress failed: %w", err)
	}
	return nil
}

func (e *PDFCPUEngine) PageCount(ctx context.Context, inPath string) (int, error) {
	count, err := api.PageCountFile(inPath)
	if err != nil {
		return 0, fmt.Errorf("page count failed: %w", err)
	}
	return count, nil
}

// ParsePageRanges parses a 1-based page selection like "1,3-5" into 0-based
// indices, preserving order. Indices past the end of the document are not an
// error here; the engine drops them.
func ParsePageRanges(spec string) ([]int, error) {
	var pages []int

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty page selection in %q", spec)
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			a, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
			b, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
			if a < 1 || b < a {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
			for p := a; p <= b; p++ {
				pages = append(pages, p-1)
			}
			continue
		}

		p, err := strconv.Atoi(part)
		if err != nil || p < 1 {
			return nil, fmt.Errorf("invalid page number %q", part)
		}
		pages = append(pages, p-1)
	}

	return pages, nil
}

// NormalizeRotation returns the effective page rotation after applying angle
// to the current rotation
func NormalizeRotation(current, angle int) int {
	r := (current + angle) % 360
	if r < 0 {
		r += 360
	}
	return r
}
