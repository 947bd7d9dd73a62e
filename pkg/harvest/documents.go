package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"ads-harvest/pkg/content"
	"ads-harvest/pkg/domain"
	"ads-harvest/pkg/trailer"

	"github.com/rs/zerolog"
)

// ErrNoDocumentURL is reported for records whose row had no identifier.
var ErrNoDocumentURL = errors.New("record has no document url")

// Downloader streams a document body into w.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// DocumentResult is the outcome of reading one document's trailer page.
// Metadata is nil when Err is set.
type DocumentResult struct {
	Record   domain.DocumentRecord
	Metadata *domain.DocumentMetadata
	Err      error
}

// DocumentProcessor downloads a record's PDF to a temporary file and
// extracts the metadata printed on its last page.
type DocumentProcessor struct {
	Downloader Downloader
	Reader     content.Reader
	Extractor  trailer.Extractor
	TempDir    string // "" uses os.TempDir
	Logger     zerolog.Logger
}

// NewDocumentProcessor returns a processor using the PDF reader and the
// default trailer layout.
func NewDocumentProcessor(d Downloader, tempDir string, log zerolog.Logger) *DocumentProcessor {
	return &DocumentProcessor{
		Downloader: d,
		Reader:     content.NewPDFReader(),
		Extractor:  trailer.New(),
		TempDir:    tempDir,
		Logger:     log,
	}
}

// Process handles a single record. Failures are returned on the result so
// the caller can continue with the next record.
func (p *DocumentProcessor) Process(ctx context.Context, rec domain.DocumentRecord) DocumentResult {
	res := DocumentResult{Record: rec}
	if rec.URL == nil {
		res.Err = ErrNoDocumentURL
		return res
	}

	md, err := p.process(ctx, *rec.URL)
	if err != nil {
		res.Err = fmt.Errorf("document %s: %w", rec.Key(), err)
		return res
	}
	res.Metadata = &md

	p.Logger.Debug().Str("id", rec.Key()).Int("pages", md.Pages).Msg("Document metadata extracted")
	return res
}

func (p *DocumentProcessor) process(ctx context.Context, url string) (domain.DocumentMetadata, error) {
	f, err := os.CreateTemp(p.TempDir, "ads-*.pdf")
	if err != nil {
		return domain.DocumentMetadata{}, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := p.Downloader.Download(ctx, url, f); err != nil {
		_ = f.Close()
		return domain.DocumentMetadata{}, err
	}
	if err := f.Close(); err != nil {
		return domain.DocumentMetadata{}, fmt.Errorf("close temp file: %w", err)
	}

	pages, lines, err := p.Reader.LastPage(path)
	if err != nil {
		return domain.DocumentMetadata{}, err
	}
	return p.Extractor.Extract(pages, lines), nil
}
