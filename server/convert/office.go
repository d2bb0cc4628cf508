package convert

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// cellDelimiter joins cell values when a spreadsheet row becomes a paragraph
const cellDelimiter = "\t"

// pageSeparator marks a page boundary in extracted PDF text
const pageSeparator = "--- page break ---"

// OfficeConverter converts between document formats. Inputs are whole
// uploaded blobs; output is streamed to w.
type OfficeConverter interface {
	// WordToExcel flattens every table in the document into one sheet,
	// row by row, with one blank row between tables
	WordToExcel(doc []byte, w io.Writer) error

	// ExcelToWord reads the first sheet only; each row becomes one
	// paragraph with cell values joined by the delimiter
	ExcelToWord(doc []byte, w io.Writer) error

	// PDFToWord extracts text per page, splitting paragraphs on blank
	// lines, and appends a page separator after every page
	PDFToWord(doc []byte, w io.Writer) error
}

// DocumentConverter implements OfficeConverter with go-docx, excelize and
// ledongthuc/pdf
type DocumentConverter struct{}

var _ OfficeConverter = (*DocumentConverter)(nil)

// NewDocumentConverter creates the office converter
func NewDocumentConverter() *DocumentConverter {
	return &DocumentConverter{}
}

// WordToExcel flattens every table found into one sheet
func (c *DocumentConverter) WordToExcel(doc []byte, w io.Writer) error {
	parsed, err := docx.Parse(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return fmt.Errorf("failed to read word document: %w", err)
	}

	workbook := excelize.NewFile()
	defer func() { _ = workbook.Close() }()

	sheet := workbook.GetSheetName(0)
	row := 1

	for _, item := range parsed.Document.Body.Items {
		table, ok := item.(*docx.Table)
		if !ok {
			continue
		}

		for _, tableRow := range table.TableRows {
			for col, tableCell := range tableRow.TableCells {
				cellRef, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return fmt.Errorf("failed to address cell: %w", err)
				}
				if err := workbook.SetCellValue(sheet, cellRef, cellText(tableCell)); err != nil {
					return fmt.Errorf("failed to write cell: %w", err)
				}
			}
			row++
		}
		row++ // blank row between tables
	}

	if err := workbook.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

// ExcelToWord renders the first sheet as one paragraph per row
func (c *DocumentConverter) ExcelToWord(doc []byte, w io.Writer) error {
	workbook, err := excelize.OpenReader(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("failed to read workbook: %w", err)
	}
	defer func() { _ = workbook.Close() }()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	out := docx.New().WithDefaultTheme()
	for _, row := range rows {
		out.AddParagraph().AddText(strings.Join(row, cellDelimiter))
	}

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write word document: %w", err)
	}

	return nil
}

// PDFToWord extracts per-page text into a word document
func (c *DocumentConverter) PDFToWord(doc []byte, w io.Writer) error {
	reader, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return fmt.Errorf("failed to read pdf: %w", err)
	}

	out := docx.New().WithDefaultTheme()

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if !page.V.IsNull() {
			text, err := page.GetPlainText(nil)
			if err != nil {
				return fmt.Errorf("failed to extract text from page %d: %w", i, err)
			}
			for _, para := range SplitParagraphs(text) {
				out.AddParagraph().AddText(para)
			}
		}
		// the separator is appended whether or not the page had text
		out.AddParagraph().AddText(pageSeparator)
	}

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write word document: %w", err)
	}

	return nil
}

// SplitParagraphs splits extracted page text on blank-line boundaries,
// dropping empty segments
func SplitParagraphs(text string) []string {
	var paragraphs []string
	for _, segment := range strings.Split(text, "\n\n") {
		segment = strings.TrimSpace(segment)
		if segment != "" {
			paragraphs = append(paragraphs, segment)
		}
	}
	return paragraphs
}

// cellText flattens a table cell's paragraphs into one value
func cellText(cell *docx.WTableCell) string {
	parts := make([]string, 0, len(cell.Paragraphs))
	for _, para := range cell.Paragraphs {
		parts = append(parts, para.String())
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
