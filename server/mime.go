package server

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// contentTypes is the fixed extension table for download responses
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
}

// ContentTypeForName returns the MIME type for a known extension
func ContentTypeForName(name string) (string, bool) {
	ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]
	return ct, ok
}

// sniffContentType detects the content type from the stream head when the
// extension table misses, returning the type and a reader that replays the
// consumed bytes. Falls back to a generic binary type.
func sniffContentType(r io.Reader) (string, io.Reader) {
	head, err := io.ReadAll(io.LimitReader(r, 3072))
	if err != nil {
		return "application/octet-stream", io.MultiReader(bytes.NewReader(head), r)
	}

	return mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), r)
}
