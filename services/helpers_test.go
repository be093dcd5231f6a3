package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github/itish2003/pdfchat/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeReader treats document bytes as pages separated by form feeds.
// "corrupt" fails to open and "panic" makes the parser panic.
type fakeReader struct {
	mu     sync.Mutex
	opened int
	closed int
}

func (r *fakeReader) Name() string { return "fake" }

func (r *fakeReader) Open(data []byte) (PDFDocument, error) {
	switch string(data) {
	case "corrupt":
		return nil, errors.New("not a PDF file: invalid header")
	case "panic":
		panic("unexpected EOF in xref table")
	}
	r.mu.Lock()
	r.opened++
	r.mu.Unlock()
	return &fakeDocument{reader: r, pages: strings.Split(string(data), "\f")}, nil
}

func (r *fakeReader) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opened, r.closed
}

type fakeDocument struct {
	reader *fakeReader
	pages  []string
}

func (d *fakeDocument) NumPages() (int, error) { return len(d.pages), nil }

func (d *fakeDocument) PageText(n int) (string, error) {
	text := d.pages[n-1]
	if text == "BADPAGE" {
		return "", errors.New("invalid content stream")
	}
	return text, nil
}

func (d *fakeDocument) Close() error {
	d.reader.mu.Lock()
	d.reader.closed++
	d.reader.mu.Unlock()
	return nil
}

func pages(p ...string) []byte {
	return []byte(strings.Join(p, "\f"))
}

func newTestConfigurator(t *testing.T) *BackendConfigurator {
	t.Helper()
	return NewBackendConfigurator(DefaultCredentials{}, t.TempDir())
}

func openAIParams() models.BackendParams {
	return models.BackendParams{Kind: "openai", ModelName: "gpt-x", APIKey: "sk-test"}
}

func newTestOrchestrator(t *testing.T, reader PageReader, engine Engine) *SessionOrchestrator {
	t.Helper()
	log := zap.NewNop()
	return NewSessionOrchestrator(NewPDFExtractor(reader, log), newTestConfigurator(t), engine, log)
}

// buildPDF writes a minimal uncompressed PDF with one Helvetica text line
// per page.
func buildPDF(t *testing.T, pageTexts ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	var kids []string
	for i := range pageTexts {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pageTexts)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pageTexts {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	require.Greater(t, buf.Len(), 100)
	return buf.Bytes()
}
