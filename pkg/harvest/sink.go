package harvest

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"ads-harvest/pkg/domain"
)

// Sink persists harvested records and document metadata.
type Sink interface {
	SaveRecord(ctx context.Context, rec domain.DocumentRecord) error
	SaveMetadata(ctx context.Context, id string, md domain.DocumentMetadata) error
}

// JSONSink writes one JSON object per line: records as they are, metadata
// wrapped with the record id.
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSink returns a sink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONSink{enc: enc}
}

// SaveRecord implements Sink.
func (s *JSONSink) SaveRecord(_ context.Context, rec domain.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(rec)
}

type metadataLine struct {
	ID       string                  `json:"id"`
	Metadata domain.DocumentMetadata `json:"metadata"`
}

// SaveMetadata implements Sink.
func (s *JSONSink) SaveMetadata(_ context.Context, id string, md domain.DocumentMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(metadataLine{ID: id, Metadata: md})
}
