package query

import (
	"net/url"
	"strconv"
	"strings"

	"ads-harvest/pkg/dates"
)

// DefaultBaseURL is the archive's public endpoint.
const DefaultBaseURL = "http://www.amtsdruckschriften.bar.admin.ch/"

// fieldParam describes one entry of the archive's fields[n] parameter list.
// Order in fieldParams is the order the service expects.
type fieldParam struct {
	name   string
	value  func(SearchCriteria) string
	encode bool
}

var fieldParams = []fieldParam{
	{name: "b_band_nr", value: func(c SearchCriteria) string { return c.VolumeNo }},
	{name: "a_heft_nr", value: func(c SearchCriteria) string { return c.BookletNo }},
	{name: "t_textkategorie_abk", value: func(c SearchCriteria) string { return c.Category }},
	{name: "a_anlass_ort_de", value: func(c SearchCriteria) string { return c.Council }},
	{name: "t_geschaefts_nr", value: func(c SearchCriteria) string { return c.FileNo }},
	{name: "t_autor", value: func(c SearchCriteria) string { return c.Author }, encode: true},
	{name: "t_texteinheit", value: func(c SearchCriteria) string { return c.RefNo }},
	{name: "t_sprache", value: func(c SearchCriteria) string { return "*" + c.Lang + "*" }},
}

// Builder turns (interval, criteria) pairs into export URLs.
type Builder struct {
	BaseURL string
}

// NewBuilder creates a builder for the given base URL. An empty base selects DefaultBaseURL.
func NewBuilder(baseURL string) *Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Builder{BaseURL: baseURL}
}

// Build returns the export URL for one interval. Free-text fields are
// form-encoded; every other scalar is embedded verbatim, and empty fields
// are sent as empty parameters rather than omitted.
func (b *Builder) Build(iv dates.Interval, c SearchCriteria) string {
	var sb strings.Builder
	sb.WriteString(b.BaseURL)
	sb.WriteString("export.do?context=results&searchMode=advanced")

	param(&sb, "queryString", url.QueryEscape(c.SearchString))
	param(&sb, "queryType", c.QueryType)
	param(&sb, "titleWeight", c.TitleWeight)
	param(&sb, "title", url.QueryEscape(c.TitleString))

	// The service expects the parameter even when no type is selected.
	if len(c.DocTypes) == 0 {
		param(&sb, "selectedDruckschrifttypen", "")
	}
	for _, t := range c.DocTypes {
		param(&sb, "selectedDruckschrifttypen", t)
	}

	param(&sb, "daterange_from", iv.From.String())
	param(&sb, "daterange_to", iv.To.String())

	for i, f := range fieldParams {
		prefix := "fields[" + strconv.Itoa(i) + "]"
		v := f.value(c)
		if f.encode {
			v = url.QueryEscape(v)
		}
		param(&sb, prefix+".name", f.name)
		param(&sb, prefix+".value", v)
	}

	sb.WriteString("#resultlist")
	return sb.String()
}

// BuildAll builds one URL per interval, preserving interval order.
func (b *Builder) BuildAll(ivs []dates.Interval, c SearchCriteria) []string {
	out := make([]string, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, b.Build(iv, c))
	}
	return out
}

// DocumentURL returns the PDF download URL for a document identifier.
func (b *Builder) DocumentURL(id string) string {
	return DocumentURL(b.BaseURL, id)
}

// DocumentURL returns the PDF download URL for id below baseURL.
func DocumentURL(baseURL, id string) string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + "viewOrigDoc.do?id=" + url.QueryEscape(id) + "&action=download"
}

func param(sb *strings.Builder, name, value string) {
	sb.WriteByte('&')
	sb.WriteString(name)
	sb.WriteByte('=')
	sb.WriteString(value)
}
