package harvest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"ads-harvest/pkg/dates"
	"ads-harvest/pkg/domain"
	"ads-harvest/pkg/httpclient"
	"ads-harvest/pkg/query"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = "http://archive.test/"

// resultPage renders a result page with one docsRow per id.
func resultPage(ids ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><table>`)
	for _, id := range ids {
		sb.WriteString(`<tr class="docsRow">`)
		for i := 0; i < 17; i++ {
			v := ""
			switch i {
			case 0:
				v = "Titel " + id
			case 12:
				v = id
			}
			fmt.Fprintf(&sb, "<td>%s</td>", v)
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString(`</table></body></html>`)
	return sb.String()
}

// mockFetcher serves pages by the daterange_from parameter of the URL.
type mockFetcher struct {
	pages map[string]string // daterange_from -> body
	fail  map[string]error
	calls []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.calls = append(m.calls, url)
	for from, err := range m.fail {
		if strings.Contains(url, "daterange_from="+from+"&") {
			return nil, err
		}
	}
	for from, body := range m.pages {
		if strings.Contains(url, "daterange_from="+from+"&") {
			return []byte(body), nil
		}
	}
	return []byte(resultPage()), nil
}

func newTestHarvester(f Fetcher) *Harvester {
	return NewHarvester(testBase, f, zerolog.Nop())
}

func TestSearch_ConcatenatesIntervalsInOrder(t *testing.T) {
	f := &mockFetcher{pages: map[string]string{
		"15.01.1990": resultPage("1", "2"),
		"01.02.1990": resultPage("3"),
		"01.03.1990": resultPage("4"),
	}}

	res, err := newTestHarvester(f).Search(context.Background(),
		dates.MustParseDate("15.01.1990"), dates.MustParseDate("10.03.1990"), query.DefaultCriteria())
	require.NoError(t, err)
	require.Len(t, res.Intervals, 3)
	require.Len(t, f.calls, 3)

	var ids []string
	for _, rec := range res.Records() {
		ids = append(ids, rec.Key())
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
	assert.NoError(t, res.Err())
	assert.Equal(t, "10.03.1990", res.Intervals[2].Interval.To.String())
}

func TestSearch_FailedIntervalDoesNotAbort(t *testing.T) {
	fetchErr := &httpclient.FetchError{URL: "x", StatusCode: 500, Err: httpclient.ErrUnexpectedStatus}
	f := &mockFetcher{
		pages: map[string]string{
			"01.01.1990": resultPage("1"),
			"01.03.1990": resultPage("3"),
		},
		fail: map[string]error{"01.02.1990": fetchErr},
	}

	res, err := newTestHarvester(f).Search(context.Background(),
		dates.MustParseDate("01.01.1990"), dates.MustParseDate("31.03.1990"), query.DefaultCriteria())
	require.NoError(t, err)

	assert.Len(t, res.Records(), 2)
	assert.Equal(t, 1, res.Failed())
	assert.Empty(t, res.Intervals[1].Records)

	var fe *httpclient.FetchError
	require.ErrorAs(t, res.Err(), &fe)
	assert.Equal(t, 500, fe.StatusCode)
}

func TestSearch_InvalidRangeMakesNoRequest(t *testing.T) {
	f := &mockFetcher{}

	_, err := newTestHarvester(f).Search(context.Background(),
		dates.MustParseDate("01.02.1990"), dates.MustParseDate("01.01.1990"), query.DefaultCriteria())
	assert.ErrorIs(t, err, dates.ErrMalformedInterval)
	assert.Empty(t, f.calls)
}

func TestSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &mockFetcher{}

	res, err := newTestHarvester(f).Search(ctx,
		dates.MustParseDate("01.01.1990"), dates.MustParseDate("28.02.1990"), query.DefaultCriteria())
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.Failed())
	assert.Empty(t, f.calls)
}

// mockDownloader writes a fixed body or fails.
type mockDownloader struct {
	body string
	err  error
	urls []string
}

func (m *mockDownloader) Download(_ context.Context, url string, w io.Writer) (int64, error) {
	m.urls = append(m.urls, url)
	if m.err != nil {
		return 0, m.err
	}
	n, err := io.WriteString(w, m.body)
	return int64(n), err
}

// mockReader returns a trailer page for any file.
type mockReader struct {
	pages int
	lines []string
	err   error
}

func (m *mockReader) LastPage(string) (int, []string, error) {
	return m.pages, m.lines, m.err
}

func trailerLines() []string {
	return []string{
		"Schweizerisches Bundesarchiv", "", "", "", "", "", "",
		"Datum", "", "12.05.1987",
		"Signatur", "", "E1001#1000/1#42*",
	}
}

func newTestProcessor(d Downloader, r *mockReader, dir string) *DocumentProcessor {
	p := NewDocumentProcessor(d, dir, zerolog.Nop())
	p.Reader = r
	return p
}

func TestProcess_ExtractsTrailer(t *testing.T) {
	d := &mockDownloader{body: "%PDF-1.4"}
	p := newTestProcessor(d, &mockReader{pages: 7, lines: trailerLines()}, t.TempDir())

	rec := domain.DocumentRecord{ID: domain.Optional("42"), URL: domain.Optional(query.DocumentURL(testBase, "42"))}
	res := p.Process(context.Background(), rec)
	require.NoError(t, res.Err)
	require.NotNil(t, res.Metadata)

	assert.Equal(t, 7, res.Metadata.Pages)
	date, ok := res.Metadata.Get(domain.KeyDate)
	assert.True(t, ok)
	assert.Equal(t, "12.05.1987", date)
	sig, _ := res.Metadata.Get(domain.KeySignature)
	assert.Equal(t, "E1001#1000/1#42*", sig)
	_, ok = res.Metadata.Get(domain.KeySession)
	assert.False(t, ok)
	assert.Equal(t, []string{testBase + "viewOrigDoc.do?id=42&action=download"}, d.urls)
}

func TestProcess_RemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	p := newTestProcessor(&mockDownloader{body: "x"}, &mockReader{pages: 1}, dir)

	p.Process(context.Background(), domain.DocumentRecord{ID: domain.Optional("1"), URL: domain.Optional("u")})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcess_Errors(t *testing.T) {
	toolErr := errors.New("broken xref")

	t.Run("no url", func(t *testing.T) {
		p := newTestProcessor(&mockDownloader{}, &mockReader{}, t.TempDir())
		res := p.Process(context.Background(), domain.DocumentRecord{})
		assert.ErrorIs(t, res.Err, ErrNoDocumentURL)
		assert.Nil(t, res.Metadata)
	})

	t.Run("download fails", func(t *testing.T) {
		p := newTestProcessor(&mockDownloader{err: httpclient.ErrUnexpectedStatus}, &mockReader{}, t.TempDir())
		res := p.Process(context.Background(), domain.DocumentRecord{ID: domain.Optional("1"), URL: domain.Optional("u")})
		assert.ErrorIs(t, res.Err, httpclient.ErrUnexpectedStatus)
	})

	t.Run("reader fails", func(t *testing.T) {
		p := newTestProcessor(&mockDownloader{body: "x"}, &mockReader{err: toolErr}, t.TempDir())
		res := p.Process(context.Background(), domain.DocumentRecord{ID: domain.Optional("1"), URL: domain.Optional("u")})
		assert.ErrorIs(t, res.Err, toolErr)
		assert.Contains(t, res.Err.Error(), "document 1")
	})
}

// memorySink records what it was given and can fail for chosen ids.
type memorySink struct {
	records  []domain.DocumentRecord
	metadata map[string]domain.DocumentMetadata
	failIDs  map[string]bool
}

func newMemorySink() *memorySink {
	return &memorySink{metadata: map[string]domain.DocumentMetadata{}, failIDs: map[string]bool{}}
}

func (s *memorySink) SaveRecord(_ context.Context, rec domain.DocumentRecord) error {
	if s.failIDs[rec.Key()] {
		return errors.New("write refused")
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *memorySink) SaveMetadata(_ context.Context, id string, md domain.DocumentMetadata) error {
	s.metadata[id] = md
	return nil
}

func newTestRunner(f Fetcher, docs *DocumentProcessor, sink Sink) *Runner {
	r := NewRunner(newTestHarvester(f), docs, sink, zerolog.Nop())
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	r.newID = func() string { return "run-1" }
	return r
}

func TestRun_SavesRecordsAndMetadata(t *testing.T) {
	f := &mockFetcher{pages: map[string]string{"01.01.1990": resultPage("1", "2")}}
	docs := newTestProcessor(&mockDownloader{body: "x"}, &mockReader{pages: 3, lines: trailerLines()}, t.TempDir())
	sink := newMemorySink()

	sum, err := newTestRunner(f, docs, sink).Run(context.Background(), Request{
		From:     dates.MustParseDate("01.01.1990"),
		To:       dates.MustParseDate("31.01.1990"),
		Criteria: query.DefaultCriteria(),
	})
	require.NoError(t, err)
	require.NoError(t, sum.Err)

	assert.Equal(t, "run-1", sum.RunID)
	assert.Equal(t, 2, sum.Records)
	assert.Equal(t, 2, sum.SavedRecords)
	assert.Equal(t, 2, sum.Documents)
	assert.Zero(t, sum.FailedDocuments)

	require.Len(t, sink.records, 2)
	assert.Equal(t, "run-1", sink.records[0].RunID)
	assert.False(t, sink.records[0].RetrievedAt.IsZero())
	assert.Equal(t, 3, sink.metadata["2"].Pages)
}

func TestRun_ContinuesPastItemFailures(t *testing.T) {
	f := &mockFetcher{
		pages: map[string]string{"01.01.1990": resultPage("1", "2", "3")},
		fail:  map[string]error{"01.02.1990": httpclient.ErrUnexpectedStatus},
	}
	sink := newMemorySink()
	sink.failIDs["2"] = true

	sum, err := newTestRunner(f, nil, sink).Run(context.Background(), Request{
		From:     dates.MustParseDate("01.01.1990"),
		To:       dates.MustParseDate("28.02.1990"),
		Criteria: query.DefaultCriteria(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Intervals)
	assert.Equal(t, 1, sum.FailedIntervals)
	assert.Equal(t, 3, sum.Records)
	assert.Equal(t, 2, sum.SavedRecords)
	assert.Zero(t, sum.Documents)
	assert.ErrorIs(t, sum.Err, httpclient.ErrUnexpectedStatus)
	assert.Contains(t, sum.Err.Error(), "save record 2")
}

func TestRun_UnsavedRecordSkipsDocument(t *testing.T) {
	f := &mockFetcher{pages: map[string]string{"01.01.1990": resultPage("1", "2", "3")}}
	d := &mockDownloader{body: "x"}
	docs := newTestProcessor(d, &mockReader{pages: 3, lines: trailerLines()}, t.TempDir())
	sink := newMemorySink()
	sink.failIDs["2"] = true

	sum, err := newTestRunner(f, docs, sink).Run(context.Background(), Request{
		From:     dates.MustParseDate("01.01.1990"),
		To:       dates.MustParseDate("31.01.1990"),
		Criteria: query.DefaultCriteria(),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Records)
	assert.Equal(t, 2, sum.SavedRecords)
	assert.Equal(t, 2, sum.Documents)
	assert.Zero(t, sum.FailedDocuments)
	assert.Len(t, d.urls, 2)
	assert.Contains(t, sum.Err.Error(), "save record 2")

	_, ok := sink.metadata["2"]
	assert.False(t, ok)
	assert.Contains(t, sink.metadata, "1")
	assert.Contains(t, sink.metadata, "3")
}

func TestRun_InvalidRange(t *testing.T) {
	sum, err := newTestRunner(&mockFetcher{}, nil, newMemorySink()).Run(context.Background(), Request{
		From: dates.MustParseDate("01.02.1990"),
		To:   dates.MustParseDate("01.01.1990"),
	})
	assert.ErrorIs(t, err, dates.ErrMalformedInterval)
	assert.Nil(t, sum)
}

func TestJSONSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONSink(&buf)

	rec := domain.DocumentRecord{ID: domain.Optional("7"), Title: domain.Optional("A & B")}
	require.NoError(t, sink.SaveRecord(context.Background(), rec))
	md := domain.NewDocumentMetadata(4, domain.KeyDate)
	require.NoError(t, sink.SaveMetadata(context.Background(), "7", md))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"id":"7"`)
	assert.Contains(t, lines[0], `"titel":"A & B"`)
	assert.Contains(t, lines[0], `"url":null`)
	assert.NotContains(t, lines[0], "retrieved_at")
	assert.Contains(t, lines[1], `"seiten":4`)
	assert.Contains(t, lines[1], `"datum":null`)

	buf.Reset()
	rec.RetrievedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sink.SaveRecord(context.Background(), rec))
	assert.Contains(t, buf.String(), `"retrieved_at":"2024-03-01T12:00:00Z"`)
}

func TestRun_SkipsProcessedDocuments(t *testing.T) {
	f := &mockFetcher{pages: map[string]string{"01.01.1990": resultPage("1", "2")}}
	d := &mockDownloader{body: "x"}
	docs := newTestProcessor(d, &mockReader{pages: 2, lines: trailerLines()}, t.TempDir())
	sink := newMemorySink()

	r := newTestRunner(f, docs, sink)
	r.Processed = map[string]bool{"1": true}

	sum, err := r.Run(context.Background(), Request{
		From:     dates.MustParseDate("01.01.1990"),
		To:       dates.MustParseDate("31.01.1990"),
		Criteria: query.DefaultCriteria(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, sum.SavedRecords)
	assert.Equal(t, 1, sum.Documents)
	assert.Equal(t, 1, sum.SkippedDocuments)
	assert.Len(t, d.urls, 1)
	_, ok := sink.metadata["1"]
	assert.False(t, ok)
}
