package services

import (
	"context"
	"fmt"
	"strings"

	"github/itish2003/pdfchat/models"

	"go.uber.org/zap"
)

var fileRule = strings.Repeat("=", 60)

// PDFExtractor turns an upload batch into one labeled text corpus.
type PDFExtractor struct {
	reader PageReader
	log    *zap.Logger
}

func NewPDFExtractor(reader PageReader, log *zap.Logger) *PDFExtractor {
	return &PDFExtractor{reader: reader, log: log}
}

// Extract reads every document in order. A document that cannot be read is
// replaced by an inline error marker and the rest of the batch continues.
func (e *PDFExtractor) Extract(ctx context.Context, docs []models.RawDocument) models.ExtractedCorpus {
	corpus := models.ExtractedCorpus{Documents: len(docs)}
	parts := make([]string, 0, len(docs))

	for _, doc := range docs {
		var (
			text string
			err  error
		)
		if err = ctx.Err(); err == nil {
			text, err = e.extractDocument(doc)
		}
		if err != nil {
			exErr := &ExtractionError{File: doc.Name, Err: err}
			e.log.Warn("EXTRACTOR: skipping unreadable document", zap.String("file", doc.Name), zap.Error(err))
			corpus.Failed = append(corpus.Failed, doc.Name)
			parts = append(parts, fmt.Sprintf("\n[%s]\n", exErr.Error()))
			continue
		}
		parts = append(parts, text)
	}

	corpus.Text = strings.Join(parts, "\n")
	e.log.Info("EXTRACTOR: extracted corpus",
		zap.Int("documents", len(docs)),
		zap.Int("failed", len(corpus.Failed)),
		zap.Int("characters", len(corpus.Text)),
	)
	return corpus
}

// extractDocument returns the banner-framed text of one document. The opened
// document is closed before returning, whatever the outcome.
func (e *PDFExtractor) extractDocument(doc models.RawDocument) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	pdfDoc, err := e.reader.Open(doc.Bytes)
	if err != nil {
		return "", err
	}
	defer pdfDoc.Close()

	numPages, err := pdfDoc.NumPages()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\nFILE: %s\n%s\n", fileRule, doc.Name, fileRule)
	for i := 1; i <= numPages; i++ {
		pageText, err := pdfDoc.PageText(i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n--- Page %d ---\n", i)
		sb.WriteString(NormalizeText(pageText))
	}
	return sb.String(), nil
}
