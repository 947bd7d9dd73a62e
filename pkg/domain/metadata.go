package domain

// Metadata keys produced by the trailer extractor.
const (
	KeyInWork      = "inwerk"
	KeyDate        = "datum"
	KeyRecordGroup = "teilbestand"
	KeyDelivery    = "ablieferung"
	KeySession     = "session"
	KeySitting     = "sitzung"
	KeySignature   = "signatur"
	KeyDocumentNo  = "doknr"
)

// DocumentMetadata holds the bibliographic fields read from the last page of
// a document PDF. Every known key is present in Fields; nil marks a label
// that was not found.
type DocumentMetadata struct {
	Pages  int                `bson:"seiten" json:"seiten"`
	Fields map[string]*string `bson:"fields" json:"fields"`
}

// NewDocumentMetadata returns metadata with every key initialised to absent.
func NewDocumentMetadata(pages int, keys ...string) DocumentMetadata {
	fields := make(map[string]*string, len(keys))
	for _, k := range keys {
		fields[k] = nil
	}
	return DocumentMetadata{Pages: pages, Fields: fields}
}

// Get returns the value stored under key and whether it is present.
func (m DocumentMetadata) Get(key string) (string, bool) {
	v := m.Fields[key]
	if v == nil {
		return "", false
	}
	return *v, true
}
