package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// LoadDocuments reads a catalog or supplementary document into one logical
// document per row/page/sheet, with provenance in the metadata. The primary
// format is the CSV product catalog; spreadsheets and manuals are also
// accepted.
func LoadDocuments(ctx context.Context, filePath string) ([]schema.Document, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".csv":
		return loadCSV(ctx, filePath)
	case ".xlsx":
		return loadXLSX(filePath)
	case ".ods":
		return loadODS(filePath)
	case ".pdf":
		return loadPDF(filePath)
	case ".docx":
		return loadDOCX(filePath)
	case ".txt":
		return loadText(filePath)
	case ".md":
		return loadMarkdown(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

// loadCSV turns each catalog row into one document. Column names stay in the
// content as "header: value" lines, matching how the index was built.
func loadCSV(ctx context.Context, filePath string) ([]schema.Document, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs, err := documentloaders.NewCSV(f).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load CSV: %w", err)
	}
	for i := range docs {
		docs[i].Metadata = provenance(filePath, i+1)
	}
	return docs, nil
}

func loadXLSX(filePath string) ([]schema.Document, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var docs []schema.Document
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("## Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		docs = append(docs, schema.Document{
			PageContent: text.String(),
			Metadata:    provenance(filePath, sheetNum+1),
		})
	}
	return docs, nil
}

func loadODS(filePath string) ([]schema.Document, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []schema.Document
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("## Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		docs = append(docs, schema.Document{
			PageContent: text.String(),
			Metadata:    provenance(filePath, sheetNum+1),
		})
	}
	return docs, nil
}

func loadPDF(filePath string) ([]schema.Document, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var docs []schema.Document
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		docs = append(docs, schema.Document{
			PageContent: pageText,
			Metadata:    provenance(filePath, i),
		})
	}
	return docs, nil
}

func loadDOCX(filePath string) ([]schema.Document, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	return []schema.Document{{
		PageContent: content,
		Metadata:    provenance(filePath, 1),
	}}, nil
}

func loadText(filePath string) ([]schema.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []schema.Document{{
		PageContent: string(data),
		Metadata:    provenance(filePath, 1),
	}}, nil
}

// loadMarkdown renders GFM before indexing so tables and lists survive as
// visible text.
func loadMarkdown(filePath string) ([]schema.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert(data, &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	content := strings.TrimSpace(buf.String())
	if content == "" {
		return nil, nil
	}
	return []schema.Document{{
		PageContent: content,
		Metadata:    provenance(filePath, 1),
	}}, nil
}

func provenance(filePath string, row int) map[string]any {
	return map[string]any{
		"source": filepath.Base(filePath),
		"row":    row,
	}
}
