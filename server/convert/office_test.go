package convert

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	docx "github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "single paragraph", text: "hello world", want: []string{"hello world"}},
		{name: "blank line boundary", text: "first\n\nsecond", want: []string{"first", "second"}},
		{name: "surrounding whitespace trimmed", text: "  a  \n\n  b  ", want: []string{"a", "b"}},
		{name: "empty segments dropped", text: "a\n\n\n\nb", want: []string{"a", "b"}},
		{name: "empty input", text: "", want: nil},
		{name: "only whitespace", text: "  \n\n  ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitParagraphs(tt.text))
		})
	}
}

// minimalDocx builds an OOXML word document containing the given tables,
// each table a slice of rows, each row a slice of cell texts.
func minimalDocx(t *testing.T, tables [][][]string) []byte {
	t.Helper()

	var body strings.Builder
	for _, table := range tables {
		body.WriteString("<w:tbl>")
		for _, row := range table {
			body.WriteString("<w:tr>")
			for _, cell := range row {
				fmt.Fprintf(&body, "<w:tc><w:p><w:r><w:t>%s</w:t></w:r></w:p></w:tc>", cell)
			}
			body.WriteString("</w:tr>")
		}
		body.WriteString("</w:tbl>")
	}

	document := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s</w:body></w:document>`, body.String())

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": document,
	}

	for name, content := range files {
		fw, err := zw.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestDocumentConverter_WordToExcel(t *testing.T) {
	converter := NewDocumentConverter()

	input := minimalDocx(t, [][][]string{
		{
			{"name", "qty"},
			{"apple", "3"},
		},
		{
			{"total"},
		},
	})

	var out bytes.Buffer
	require.NoError(t, converter.WordToExcel(input, &out))

	workbook, err := excelize.OpenReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	defer func() { _ = workbook.Close() }()

	rows, err := workbook.GetRows(workbook.GetSheetName(0))
	require.NoError(t, err)

	// 2 rows from the first table, one blank separator row, 1 row from the second
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"name", "qty"}, rows[0])
	assert.Equal(t, []string{"apple", "3"}, rows[1])
	assert.Empty(t, rows[2])
	assert.Equal(t, []string{"total"}, rows[3])
}

func TestDocumentConverter_WordToExcel_NoTables(t *testing.T) {
	converter := NewDocumentConverter()

	var out bytes.Buffer
	require.NoError(t, converter.WordToExcel(minimalDocx(t, nil), &out))

	workbook, err := excelize.OpenReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	defer func() { _ = workbook.Close() }()

	rows, err := workbook.GetRows(workbook.GetSheetName(0))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDocumentConverter_WordToExcel_Garbage(t *testing.T) {
	converter := NewDocumentConverter()

	var out bytes.Buffer
	err := converter.WordToExcel([]byte("not a docx"), &out)
	assert.Error(t, err)
}

func TestDocumentConverter_ExcelToWord(t *testing.T) {
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	require.NoError(t, workbook.SetCellValue(sheet, "A1", "alpha"))
	require.NoError(t, workbook.SetCellValue(sheet, "B1", "beta"))
	require.NoError(t, workbook.SetCellValue(sheet, "A2", "gamma"))

	var input bytes.Buffer
	require.NoError(t, workbook.Write(&input))
	require.NoError(t, workbook.Close())

	converter := NewDocumentConverter()

	var out bytes.Buffer
	require.NoError(t, converter.ExcelToWord(input.Bytes(), &out))

	parsed, err := docx.Parse(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)

	var texts []string
	for _, item := range parsed.Document.Body.Items {
		if para, ok := item.(*docx.Paragraph); ok {
			texts = append(texts, para.String())
		}
	}

	require.Len(t, texts, 2)
	assert.Equal(t, "alpha"+cellDelimiter+"beta", texts[0])
	assert.Equal(t, "gamma", texts[1])
}

func TestDocumentConverter_ExcelToWord_Garbage(t *testing.T) {
	converter := NewDocumentConverter()

	var out bytes.Buffer
	err := converter.ExcelToWord([]byte("not a workbook"), &out)
	assert.Error(t, err)
}

func TestDocumentConverter_PDFToWord_Garbage(t *testing.T) {
	converter := NewDocumentConverter()

	var out bytes.Buffer
	err := converter.PDFToWord([]byte("not a pdf"), &out)
	assert.Error(t, err)
}
