package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultPrefsCookie is the archive GUI preference cookie. It selects the
// result columns the parser expects, 50 documents per page and relevance
// ordering.
const DefaultPrefsCookie = `ADSGUI_Prefs="result.fields.selected=[a_druckschrifttyp_de%a_jahr%b_band_nr%t_seite_von%t_seite_bis%a_publikations_date%a_heft_nr%t_textkategorie_de%a_anlass_ort_kurz_de%t_geschaefts_nr%t_autor%t_texteinheit_id%t_sprache%false]:detail.docMarkupStyle=color:result.docsPerPage=50:detail.bestHitAutoJump=false:detail.documentFontSize=small:result.sortBy=relevance:result.maxDocs=100:search.advanced.titleWeight=on:result.resultsFontSize=x-small:result.sortOrder=asc"`

// DefaultAcceptLanguage makes the archive render German labels.
const DefaultAcceptLanguage = "de-CH"

// ErrUnexpectedStatus is wrapped by FetchError for non-200 responses.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Doer is the subset of *http.Client used by HTTPClient.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the request headers sent to the archive.
type Config struct {
	AcceptLanguage string
	Cookie         string
	UserAgent      string
	Timeout        time.Duration // 0 means no client timeout
}

// DefaultConfig returns the header configuration the archive export expects.
func DefaultConfig() Config {
	return Config{
		AcceptLanguage: DefaultAcceptLanguage,
		Cookie:         DefaultPrefsCookie,
		Timeout:        60 * time.Second,
	}
}

// FetchError reports a failed request for one URL.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %v: %d", e.URL, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPClient wraps an http.Client and applies the archive headers to every request.
type HTTPClient struct {
	client Doer
	cfg    Config
}

// NewClient creates a new HTTP client with the given header configuration.
func NewClient(cfg Config) *HTTPClient {
	client := &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return NewClientWithDoer(client, cfg)
}

// NewClientWithDoer creates a client on top of an existing Doer (used in tests).
func NewClientWithDoer(doer Doer, cfg Config) *HTTPClient {
	return &HTTPClient{client: doer, cfg: cfg}
}

// Do executes an HTTP request with the configured headers.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get is a convenience method for GET requests.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Fetch returns the body of url. Transport failures and non-200 responses
// are returned as *FetchError.
func (c *HTTPClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return body, nil
}

// Download streams the body of url into w and returns the number of bytes written.
func (c *HTTPClient) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	resp, err := c.open(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to copy response body: %w", err)}
	}
	return n, nil
}

func (c *HTTPClient) open(ctx context.Context, url string) (*http.Response, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatus}
	}
	return resp, nil
}

// setHeaders sets the archive preference headers
func (c *HTTPClient) setHeaders(req *http.Request) {
	if c.cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.cfg.AcceptLanguage)
	}
	if c.cfg.Cookie != "" {
		req.Header.Set("Cookie", c.cfg.Cookie)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}
