package services

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"go.uber.org/zap"
)

const (
	ReaderUniPDF     = "unipdf"
	ReaderLedongthuc = "ledongthuc"
)

// PDFDocument is an opened PDF. Pages are numbered from 1.
type PDFDocument interface {
	NumPages() (int, error)
	PageText(n int) (string, error)
	Close() error
}

// PageReader opens raw PDF bytes for page-by-page text extraction.
type PageReader interface {
	Name() string
	Open(data []byte) (PDFDocument, error)
}

var (
	licenseOnce   sync.Once
	licenseErr    error
	setMeteredKey = license.SetMeteredKey
)

// NewPageReader returns the reader selected in configuration. UniPDF needs a
// metered license key; without one the ledongthuc reader is used instead.
func NewPageReader(kind, licenseKey string, log *zap.Logger) (PageReader, error) {
	switch strings.ToLower(kind) {
	case "", ReaderUniPDF:
		if licenseKey == "" {
			log.Warn("EXTRACTOR: no UniDoc license key set, falling back to ledongthuc reader")
			return LedongthucReader{}, nil
		}
		licenseOnce.Do(func() {
			licenseErr = setMeteredKey(licenseKey)
		})
		if licenseErr != nil {
			return nil, fmt.Errorf("failed to set UniDoc license key: %w", licenseErr)
		}
		return UniPDFReader{}, nil
	case ReaderLedongthuc:
		return LedongthucReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported pdf reader: %s", kind)
	}
}

// UniPDFReader extracts text with UniPDF.
type UniPDFReader struct{}

func (UniPDFReader) Name() string { return ReaderUniPDF }

func (UniPDFReader) Open(data []byte) (PDFDocument, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	encrypted, err := pdfReader.IsEncrypted()
	if err != nil {
		return nil, err
	}
	if encrypted {
		// Many PDFs are "encrypted" with an empty user password.
		ok, err := pdfReader.Decrypt([]byte(""))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("document is password protected")
		}
	}
	return &uniPDFDocument{reader: pdfReader}, nil
}

type uniPDFDocument struct {
	reader *model.PdfReader
}

func (d *uniPDFDocument) NumPages() (int, error) {
	return d.reader.GetNumPages()
}

func (d *uniPDFDocument) PageText(n int) (string, error) {
	page, err := d.reader.GetPage(n)
	if err != nil {
		return "", err
	}
	ex, err := extractor.New(page)
	if err != nil {
		return "", err
	}
	return ex.ExtractText()
}

func (d *uniPDFDocument) Close() error {
	d.reader = nil
	return nil
}

// LedongthucReader extracts text with github.com/ledongthuc/pdf. It needs
// no license and is the fallback reader.
type LedongthucReader struct{}

func (LedongthucReader) Name() string { return ReaderLedongthuc }

func (LedongthucReader) Open(data []byte) (PDFDocument, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}
	return &ledongthucDocument{reader: reader}, nil
}

type ledongthucDocument struct {
	reader *pdf.Reader
}

func (d *ledongthucDocument) NumPages() (int, error) {
	return d.reader.NumPage(), nil
}

func (d *ledongthucDocument) PageText(n int) (string, error) {
	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func (d *ledongthucDocument) Close() error {
	d.reader = nil
	return nil
}
