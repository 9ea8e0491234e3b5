package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
	"github.com/meridianhomes/homechat/pkg/applog"
)

var logger = applog.NewLogger("Extract")

var ErrUnsupportedFormat = errors.New("unsupported document format")

// LoadDocuments extracts plain text from every supported file under
// dataDir, in sorted filename order. A file that fails extraction is
// logged and skipped; it never fails the batch.
func LoadDocuments(dataDir string) ([]chunkmodel.Document, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var documents []chunkmodel.Document
	for _, name := range names {
		doc, err := File(filepath.Join(dataDir, name))
		if err != nil {
			if !errors.Is(err, ErrUnsupportedFormat) {
				logger.Error("Skipping document, extraction failed", "file", name, "error", err)
			}
			continue
		}
		logger.Info("Loaded document", "source", name)
		documents = append(documents, doc)
	}
	return documents, nil
}

// File extracts the plain text of one source file.
func File(path string) (chunkmodel.Document, error) {
	var text string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = extractPDF(path)
	case ".docx", ".txt", ".rtf", ".odt":
		text, err = cat.File(path)
	default:
		return chunkmodel.Document{}, ErrUnsupportedFormat
	}
	if err != nil {
		return chunkmodel.Document{}, err
	}

	return chunkmodel.Document{
		Source:  filepath.Base(path),
		RawText: strings.TrimSpace(text),
	}, nil
}

func extractPDF(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// protectExtract guards against the pdf library hanging on a malformed page.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(10 * time.Second):
		return "", errors.New("page extraction timeout")
	}
}
