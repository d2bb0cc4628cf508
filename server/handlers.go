package server

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saqibaltaf27/Convertly/server/convert"
)

// Extension allow-lists per operation
var (
	allowedPDF   = map[string]bool{".pdf": true}
	allowedWord  = map[string]bool{".doc": true, ".docx": true}
	allowedExcel = map[string]bool{".xls": true, ".xlsx": true}
	allowedImage = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true,
		".webp": true, ".tiff": true, ".bmp": true,
	}
)

// upload is a single multipart file read into memory
type upload struct {
	originalName string
	data         []byte
}

// respondArtifact replies with the success payload for a written artifact.
// The artifact is fully stored before this is called: write-then-respond.
func (s *ConversionServerImpl) respondArtifact(c *gin.Context, operation, name string, extra gin.H) {
	body := gin.H{
		"status":       "success",
		"download_url": DownloadPath(name),
	}
	for k, v := range extra {
		body[k] = v
	}

	conversionsTotal.WithLabelValues(operation, "success").Inc()
	c.JSON(http.StatusOK, body)
}

// respondError is the single boundary translating failures to HTTP. No raw
// internal error reaches the client uninterpreted.
func (s *ConversionServerImpl) respondError(c *gin.Context, operation string, err error) {
	apiErr := AsError(err)

	s.logger.Error("request failed",
		zap.String("operation", operation),
		zap.Int("status", apiErr.HTTPStatus()),
		zap.Error(apiErr))

	conversionsTotal.WithLabelValues(operation, "error").Inc()
	c.JSON(apiErr.HTTPStatus(), gin.H{"error": apiErr.Error()})
}

// readUpload reads one multipart file and validates its extension
func readUpload(c *gin.Context, field string, allowed map[string]bool) (upload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return upload{}, BadRequest("No file uploaded")
	}

	return readFileHeader(fileHeader, allowed)
}

func readFileHeader(fileHeader *multipart.FileHeader, allowed map[string]bool) (upload, error) {
	name := SanitizeName(fileHeader.Filename)
	if name == "" {
		return upload{}, BadRequest("No file uploaded")
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !allowed[ext] {
		return upload{}, BadRequest("Unsupported file type %q", ext)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return upload{}, IOFailed(err)
	}
	defer func() { _ = file.Close() }()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		return upload{}, IOFailed(err)
	}

	return upload{originalName: name, data: buf.Bytes()}, nil
}

// saveUpload writes the raw upload into the store before processing, so
// inputs fall under the same retention policy as outputs
func (s *ConversionServerImpl) saveUpload(c *gin.Context, up upload) {
	name := BuildArtifactName("upload", up.originalName, strings.ToLower(filepath.Ext(up.originalName)))
	if _, err := s.store.Put(c.Request.Context(), name, bytes.NewReader(up.data)); err != nil {
		// retention of the input is best effort; the conversion proceeds
		s.logger.Warn("failed to store upload", zap.String("name", name), zap.Error(err))
	}
}

// tempFile writes data to a scratch file and returns its path with a cleanup func
func tempFile(data []byte, ext string) (string, func(), error) {
	f, err := os.CreateTemp("", "convertly-*"+ext)
	if err != nil {
		return "", nil, IOFailed(err)
	}

	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, IOFailed(err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, IOFailed(err)
	}

	return path, cleanup, nil
}

// tempPath reserves a scratch output path for an engine call
func tempPath(ext string) (string, func(), error) {
	f, err := os.CreateTemp("", "convertly-out-*"+ext)
	if err != nil {
		return "", nil, IOFailed(err)
	}
	path := f.Name()
	_ = f.Close()
	return path, func() { _ = os.Remove(path) }, nil
}

// storeFile moves a finished scratch file into the artifact store
func (s *ConversionServerImpl) storeFile(c *gin.Context, name, path string) (Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, IOFailed(err)
	}

	artifact, err := s.store.Put(c.Request.Context(), name, bytes.NewReader(data))
	if err != nil {
		return Artifact{}, IOFailed(err)
	}

	return artifact, nil
}

// handleCompressPDF recompresses a PDF. Without target_kb it uses the
// in-process engine; with target_kb it delegates to Ghostscript at a
// quality tier derived from the target size.
func (s *ConversionServerImpl) handleCompressPDF(c *gin.Context) {
	const op = "compress-pdf"

	up, err := readUpload(c, "file", allowedPDF)
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	s.saveUpload(c, up)

	inPath, cleanupIn, err := tempFile(up.data, ".pdf")
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	defer cleanupIn()

	outPath, cleanupOut, err := tempPath(".pdf")
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	defer cleanupOut()

	if raw := c.PostForm("target_kb"); raw != "" {
		targetKB, convErr := strconv.Atoi(raw)
		if convErr != nil || targetKB < 1 {
			s.respondError(c, op, BadRequest("target_kb must be a positive integer"))
			return
		}
		if err := s.gs.CompressToTarget(c.Request.Context(), inPath, outPath, targetKB); err != nil {
			if err == convert.ErrGhostscriptMissing {
				s.respondError(c, op, EnvironmentError(err.Error(), nil))
				return
			}
			s.respondError(c, op, ConversionFailed(err))
			return
		}
	} else {
		if err := s.pdf.Compress(c.Request.Context(), inPath, outPath); err != nil {
			s.respondError(c, op, ConversionFailed(err))
			return
		}
	}

	name := BuildArtifactName("compressed", up.originalName, ".pdf")
	artifact, err := s.storeFile(c, name, outPath)
	if err != nil {
		s.respondError(c, op, err)
		return
	}

	sizeKB := math.Round(float64(artifact.Size)/1024*100) / 100
	s.respondArtifact(c, op, artifact.Name, gin.H{"compressed_size_kb": sizeKB})
}

// handlePDFEditor dispatches on the action form field
func (s *ConversionServerImpl) handlePDFEditor(c *gin.Context) {
	const op = "pdf-editor"

	action := strings.ToLower(c.PostForm("action"))
	switch action {
	case "rotate":
		s.editRotate(c)
	case "split":
		s.editSplit(c)
	case "merge":
		s.editMerge(c)
	default:
		s.respondError(c, op, BadRequest("action must be one of: rotate, split, merge"))
	}
}

func (s *ConversionServerImpl) editRotate(c *gin.Context) {
	const op = "pdf-editor"

	up, err := readUpload(c, "file", allowedPDF)
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	s.saveUpload(c, up)

	angle, convErr := strconv.Atoi(c.DefaultPostForm("angle", "90"))
	if convErr != nil {
		s.respondError(c, op, BadRequest("angle must be an integer"))
		return
	}

	inPath, cleanupIn, err := tempFile(up.data, ".pdf")
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	defer cleanupIn()

	outPath, cleanupOut, err := tempPath(".pdf")
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	defer cleanupOut()

	if err := s.pdf.Rotate(c.Request.Context(), inPath, outPath, angle); err != nil {
		s.respondError(c, op, ConversionFailed(err))
		return
	}

	name := BuildArtifactName("edited", up.originalName, ".pdf")
	artifact, err := s.storeFile(c, name, outPath)
	if err != nil {
		s.respondError(c, op, err)
		return
	}

	s.respondArtifact(c, op, artifact.Name, nil)
}

func (s *ConversionServerImpl) editSplit(c *gin.Context) {
	const op = "pdf-editor"

	up, err := readUpload(c, "file", allowedPDF)
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	s.saveUpload(c, up)

	pagesSpec := c.PostForm("pages")
	if pagesSpec == "" {
		s.respondError(c, op, BadRequest("Provide pages parameter, e.g. pages=1,3-5"))
		return
	}

	pages, parseErr := convert.ParsePageRanges(pagesSpec)
	if parseErr != nil {
		s.respondError(c, op, BadRequest("%s", parseErr.Error()))
		return
	}

	inPath, cleanupIn, err := tempFile(up.data, ".pdf")
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	defer cleanupIn()

	outPath, cleanupOut, err := tempPath(".pdf")
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	defer cleanupOut()

	kept, splitErr := s.pdf.Split(c.Request.Context(), inPath, outPath, pages)
	if splitErr != nil {
		s.respondError(c, op, ConversionFailed(splitErr))
		return
	}
	if kept == 0 {
		// an empty selection would produce a useless document
		s.respondError(c, op, BadRequest("no pages matched the selection %q", pagesSpec))
		return
	}

	name := BuildArtifactName("edited", up.originalName, ".pdf")
	artifact, err := s.storeFile(c, name, outPath)
	if err != nil {
		s.respondError(c, op, err)
		return
	}

	s.respondArtifact(c, op, artifact.Name, nil)
}

func (s *ConversionServerImpl) editMerge(c *gin.Context) {
	const op = "pdf-editor"

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		s.respondError(c, op, BadRequest("No files provided for merge"))
		return
	}

	fileHeaders := form.File["files"]
	inPaths := make([]string, 0, len(fileHeaders))

	for _, fileHeader := range fileHeaders {
		up, readErr := readFileHeader(fileHeader, allowedPDF)
		if readErr != nil {
			s.respondError(c, op, readErr)
			return
		}

		inPath, cleanup, tmpErr := tempFile(up.data, ".pdf")
		if tmpErr != nil {
			s.respondError(c, op, tmpErr)
			return
		}
		defer cleanup()

		inPaths = append(inPaths, inPath)
	}

	outPath, cleanupOut, err := tempPath(".pdf")
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	defer cleanupOut()

	// concatenation order follows the order files were supplied
	if err := s.pdf.Merge(c.Request.Context(), inPaths, outPath); err != nil {
		s.respondError(c, op, ConversionFailed(err))
		return
	}

	name := BuildArtifactName("merged", fmt.Sprintf("%d_files.pdf", len(inPaths)), ".pdf")
	artifact, err := s.storeFile(c, name, outPath)
	if err != nil {
		s.respondError(c, op, err)
		return
	}

	s.respondArtifact(c, op, artifact.Name, nil)
}

// handleWordToExcel flattens every table in a Word document into one sheet
func (s *ConversionServerImpl) handleWordToExcel(c *gin.Context) {
	const op = "word-to-excel"

	up, err := readUpload(c, "file", allowedWord)
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	s.saveUpload(c, up)

	var out bytes.Buffer
	if err := s.office.WordToExcel(up.data, &out); err != nil {
		s.respondError(c, op, ConversionFailed(err))
		return
	}

	name := BuildArtifactName("converted", up.originalName, ".xlsx")
	artifact, err := s.store.Put(c.Request.Context(), name, &out)
	if err != nil {
		s.respondError(c, op, IOFailed(err))
		return
	}

	s.respondArtifact(c, op, artifact.Name, nil)
}

// handleExcelToWord renders the first sheet of a workbook as paragraphs
func (s *ConversionServerImpl) handleExcelToWord(c *gin.Context) {
	const op = "excel-to-word"

	up, err := readUpload(c, "file", allowedExcel)
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	s.saveUpload(c, up)

	var out bytes.Buffer
	if err := s.office.ExcelToWord(up.data, &out); err != nil {
		s.respondError(c, op, ConversionFailed(err))
		return
	}

	name := BuildArtifactName("converted", up.originalName, ".docx")
	artifact, err := s.store.Put(c.Request.Context(), name, &out)
	if err != nil {
		s.respondError(c, op, IOFailed(err))
		return
	}

	s.respondArtifact(c, op, artifact.Name, nil)
}

// handleImageCompress re-encodes an image as JPEG with an optional
// aspect-preserving downscale
func (s *ConversionServerImpl) handleImageCompress(c *gin.Context) {
	const op = "image-compress"

	up, err := readUpload(c, "file", allowedImage)
	if err != nil {
		s.respondError(c, op, err)
		return
	}

	opts := convert.ImageOptions{Quality: s.config.ConvertConfig.ImageQuality}

	if raw := c.PostForm("quality"); raw != "" {
		quality, convErr := strconv.Atoi(raw)
		if convErr != nil || quality < 1 || quality > 95 {
			s.respondError(c, op, BadRequest("quality must be an integer between 1 and 95"))
			return
		}
		opts.Quality = quality
	}

	for param, target := range map[string]*int{"max_width": &opts.MaxWidth, "max_height": &opts.MaxHeight} {
		if raw := c.PostForm(param); raw != "" {
			value, convErr := strconv.Atoi(raw)
			if convErr != nil || value < 1 {
				s.respondError(c, op, BadRequest("%s must be a positive integer", param))
				return
			}
			*target = value
		}
	}

	var out bytes.Buffer
	if err := s.images.Compress(bytes.NewReader(up.data), &out, opts); err != nil {
		s.respondError(c, op, ConversionFailed(err))
		return
	}

	name := BuildArtifactName("compressed", up.originalName, ".jpg")
	artifact, err := s.store.Put(c.Request.Context(), name, &out)
	if err != nil {
		s.respondError(c, op, IOFailed(err))
		return
	}

	s.respondArtifact(c, op, artifact.Name, nil)
}

// handlePDFToWord extracts per-page text into a Word document
func (s *ConversionServerImpl) handlePDFToWord(c *gin.Context) {
	const op = "pdf-to-word"

	up, err := readUpload(c, "file", allowedPDF)
	if err != nil {
		s.respondError(c, op, err)
		return
	}
	s.saveUpload(c, up)

	var out bytes.Buffer
	if err := s.office.PDFToWord(up.data, &out); err != nil {
		s.respondError(c, op, ConversionFailed(err))
		return
	}

	name := BuildArtifactName("converted", up.originalName, ".docx")
	artifact, err := s.store.Put(c.Request.Context(), name, &out)
	if err != nil {
		s.respondError(c, op, IOFailed(err))
		return
	}

	s.respondArtifact(c, op, artifact.Name, nil)
}

// handleDownload streams an artifact back as an attachment
func (s *ConversionServerImpl) handleDownload(c *gin.Context) {
	name := SanitizeName(c.Param("name"))
	ctx := c.Request.Context()

	artifact, err := s.store.Stat(ctx, name)
	if err != nil {
		if err == ErrNotFound || err == ErrInvalidName {
			downloadsTotal.WithLabelValues("not_found").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		downloadsTotal.WithLabelValues("error").Inc()
		s.logger.Error("failed to stat artifact", zap.String("name", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	reader, err := s.store.Open(ctx, name)
	if err != nil {
		// the sweeper may have raced us between Stat and Open
		if err == ErrNotFound {
			downloadsTotal.WithLabelValues("not_found").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		downloadsTotal.WithLabelValues("error").Inc()
		s.logger.Error("failed to open artifact", zap.String("name", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			s.logger.Error("failed to close artifact reader", zap.Error(closeErr))
		}
	}()

	contentType, known := ContentTypeForName(name)
	body := io.Reader(reader)
	if !known {
		contentType, body = sniffContentType(reader)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	downloadsTotal.WithLabelValues("success").Inc()
	c.DataFromReader(http.StatusOK, artifact.Size, contentType, body, nil)
}
