package server

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SanitizeName strips path separators, traversal sequences and surrounding
// whitespace from a client-supplied name. Anything left must be safe to join
// under the store root.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.TrimSpace(name)
	return name
}

// BuildArtifactName generates a store name of the form
// {prefix}_{unix-ts}_{uuid-fragment}_{sanitized-base}{ext}. The uuid
// fragment keeps names unique when identical filenames arrive within the
// same second.
func BuildArtifactName(prefix, originalName, ext string) string {
	base := strings.TrimSuffix(SanitizeName(originalName), filepath.Ext(originalName))
	if base == "" {
		base = "file"
	}

	fragment := uuid.New().String()[:8]

	return fmt.Sprintf("%s_%d_%s_%s%s", prefix, time.Now().Unix(), fragment, base, ext)
}

// DownloadPath returns the externally visible address for an artifact.
// The address is a pure function of the name.
func DownloadPath(name string) string {
	return path.Join("/download", SanitizeName(name))
}
