package clomap

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// ExtractQuestions reads question text out of an uploaded file, dispatching
// on the file extension. PDF goes through a separate model transcription
// call; everything else is parsed locally. The result is always tagged —
// a bad, empty or corrupt file is reported, never raised.
func (p *Pipeline) ExtractQuestions(ctx context.Context, filename string, data []byte) Extraction {
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	var err error
	switch ext {
	case ".txt":
		text = string(data)
	case ".csv":
		text = extractCSV(data)
	case ".xlsx", ".xls":
		text, err = extractXLSX(data)
	case ".docx", ".doc":
		text, err = extractDOCX(data)
	case ".pdf":
		text, err = p.gen.GenerateWithDocument(ctx, transcriptionPrompt, data, "application/pdf")
	default:
		// Unknown extension: best-effort raw text read.
		text = string(data)
	}

	if err != nil {
		return Extraction{Err: fmt.Sprintf("could not read %s: %v", filename, err)}
	}

	text = normalizeText(text)
	if text == "" {
		return Extraction{Err: fmt.Sprintf("no question text found in %s", filename)}
	}

	return Extraction{Success: true, Text: text}
}

// extractCSV keeps the first column of every line, strips surrounding
// quote characters and drops empty results.
func extractCSV(data []byte) string {
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		first := line
		if i := strings.Index(line, ","); i >= 0 {
			first = line[:i]
		}
		first = strings.Trim(strings.TrimSpace(first), `"'`)
		if first != "" {
			lines = append(lines, first)
		}
	}
	return strings.Join(lines, "\n")
}

// extractXLSX reads the first column of the first sheet.
func extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	var lines []string
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(row[0])
		if cell != "" {
			lines = append(lines, cell)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// extractDOCX pulls paragraph text out of the WordprocessingML body. A
// .docx is a zip archive; the text lives in w:t runs inside w:p
// paragraphs in word/document.xml.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("open document body: %w", err)
			}
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("document body not found")
	}
	defer doc.Close()

	var b strings.Builder
	dec := xml.NewDecoder(doc)
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

// normalizeText trims, strips a UTF-8 BOM and applies NFC so text from
// different producers compares and displays consistently.
func normalizeText(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = norm.NFC.String(s)
	return strings.TrimSpace(s)
}
