package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github/itish2003/pdfchat/models"
)

// DocumentDirectory is a server-side folder of PDFs.
type DocumentDirectory struct {
	Dir string // absolute path
}

func NewDocumentDirectory(path string) (*DocumentDirectory, error) {
	if path == "" {
		return nil, fmt.Errorf("document directory not set")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for %s: %w", path, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", absPath)
	}
	return &DocumentDirectory{Dir: absPath}, nil
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// sanitizeFilename ensures the filename is a PDF inside the directory.
func (d *DocumentDirectory) sanitizeFilename(filename string) (string, error) {
	if !isPDF(filename) {
		return "", fmt.Errorf("filename must end with .pdf")
	}
	// filepath.Base drops any "../" components.
	cleanPath := filepath.Join(d.Dir, filepath.Base(filename))
	if !strings.HasPrefix(cleanPath, d.Dir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid filename, attempts to escape document directory")
	}
	return cleanPath, nil
}

// ListPDFs returns the PDF file names in the directory, sorted by name.
func (d *DocumentDirectory) ListPDFs() ([]string, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && isPDF(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// ReadDocuments loads the named files in the given order.
func (d *DocumentDirectory) ReadDocuments(names []string) ([]models.RawDocument, error) {
	docs := make([]models.RawDocument, 0, len(names))
	for _, name := range names {
		path, err := d.sanitizeFilename(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, models.RawDocument{Name: filepath.Base(path), Bytes: data})
	}
	return docs, nil
}

// Fingerprint hashes the names and contents of all PDFs in the directory.
func (d *DocumentDirectory) Fingerprint() (string, error) {
	names, err := d.ListPDFs()
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, name := range names {
		fileHash, err := calculateFileHash(filepath.Join(d.Dir, name))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s:%s\n", name, fileHash)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
