package domain

import "time"

// DocumentRecord is one result row of an archive search.
//
// Optional fields are pointers: nil means the listing had no value for the
// column, which is different from a value that happens to be an empty string.
type DocumentRecord struct {
	// ID is the archive's document identifier (result column 12).
	ID *string `bson:"id" json:"id"`

	// URL is the PDF download URL, derived from ID.
	URL *string `bson:"url" json:"url"`

	Title    *string `bson:"titel" json:"titel"`
	DocType  *string `bson:"doktyp" json:"doktyp"`
	Year     *string `bson:"jahr" json:"jahr"`
	Volume   *string `bson:"band" json:"band"`
	PageFrom *string `bson:"seitevon" json:"seitevon"`
	PageTo   *string `bson:"seitebis" json:"seitebis"`
	Period   *string `bson:"zeitraum" json:"zeitraum"`
	Booklet  *string `bson:"heft" json:"heft"`
	Category *string `bson:"kategorie" json:"kategorie"`
	Council  *string `bson:"rat" json:"rat"`
	FileNo   *string `bson:"geschaeftsnr" json:"geschaeftsnr"`
	Author   *string `bson:"autor" json:"autor"`
	Language *string `bson:"sprache" json:"sprache"`

	// RunID and RetrievedAt are stamped by the harvester, not by the parser.
	RunID       string    `bson:"run_id,omitempty" json:"run_id,omitempty"`
	RetrievedAt time.Time `bson:"retrieved_at,omitempty" json:"retrieved_at,omitzero"`
}

// Key returns the record identifier or "" when the row carried none.
func (r DocumentRecord) Key() string {
	return Deref(r.ID)
}

// Optional returns nil for an empty string and a pointer to s otherwise.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Document is a stored record together with its trailer metadata, if the
// document stage has run for it.
type Document struct {
	DocumentRecord `bson:",inline"`
	Metadata       *DocumentMetadata `bson:"metadata,omitempty" json:"metadata,omitempty"`
}
