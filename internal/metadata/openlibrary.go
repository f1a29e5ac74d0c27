package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public OpenLibrary API.
	DefaultBaseURL = "https://openlibrary.org"
	// DefaultTimeout bounds every catalog round trip.
	DefaultTimeout = 6 * time.Second
	// SearchLimit is the maximum number of candidates requested per search.
	SearchLimit = 10

	coverURLFormat = "https://covers.openlibrary.org/b/id/%d-M.jpg"
	userAgent      = "Bookshelf/1.0 (personal reading tracker)"
)

// SearchField restricts which catalog field a search query targets.
type SearchField string

const (
	FieldTitle  SearchField = "title"
	FieldAuthor SearchField = "author"
	FieldISBN   SearchField = "isbn"
	FieldAny    SearchField = "q"
)

// ParseSearchField maps a request value onto a SearchField, defaulting to FieldAny.
func ParseSearchField(value string) SearchField {
	switch f := SearchField(strings.ToLower(strings.TrimSpace(value))); f {
	case FieldTitle, FieldAuthor, FieldISBN, FieldAny:
		return f
	default:
		return FieldAny
	}
}

// Candidate is a catalog result mapped onto the book record shape.
type Candidate struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	CoverURL      string `json:"cover_url"`
	Pages         string `json:"pages"`
	CopyrightYear string `json:"copyright_year"`
	WorkKey       string `json:"work_key"`
}

// ClientOption configures an OpenLibraryClient.
type ClientOption func(*OpenLibraryClient)

// WithBaseURL points the client at a different API host.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *OpenLibraryClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *OpenLibraryClient) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRateLimit paces outbound requests. A non-positive rps disables pacing.
func WithRateLimit(rps float64) ClientOption {
	return func(c *OpenLibraryClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// OpenLibraryClient talks to the OpenLibrary search and works APIs.
type OpenLibraryClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewOpenLibraryClient creates a client with a 6 second timeout and one
// request per second pacing unless overridden.
func NewOpenLibraryClient(opts ...ClientOption) *OpenLibraryClient {
	c := &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL: DefaultBaseURL,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries the catalog and returns at most SearchLimit candidates.
func (c *OpenLibraryClient) Search(ctx context.Context, q string, field SearchField) ([]Candidate, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errors.New("empty search query")
	}
	if field == FieldISBN {
		q = normalizeISBN(q)
	}

	params := url.Values{}
	params.Set(string(field), q)
	params.Set("limit", strconv.Itoa(SearchLimit))
	searchURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())

	var result openLibrarySearchResult
	if err := c.getJSON(ctx, searchURL, &result); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	docs := result.Docs
	if len(docs) > SearchLimit {
		docs = docs[:SearchLimit]
	}

	candidates := make([]Candidate, 0, len(docs))
	for i := range docs {
		candidates = append(candidates, convertSearchDoc(&docs[i]))
	}
	return candidates, nil
}

// WorkDescription fetches a work and returns its description text.
func (c *OpenLibraryClient) WorkDescription(ctx context.Context, workKey string) (string, error) {
	path, err := workPath(workKey)
	if err != nil {
		return "", err
	}

	var work openLibraryWork
	if err := c.getJSON(ctx, c.baseURL+path+".json", &work); err != nil {
		return "", fmt.Errorf("fetch work: %w", err)
	}
	return work.Description.Text, nil
}

// getJSON bounds the limiter wait and the round trip together by the client timeout.
func (c *OpenLibraryClient) getJSON(ctx context.Context, rawURL string, target any) error {
	ctx, cancel := context.WithTimeout(ctx, c.httpClient.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// workPath turns "/works/OL45804W" or "OL45804W" into "/works/OL45804W".
func workPath(key string) (string, error) {
	key = strings.TrimSpace(key)
	key = strings.TrimSuffix(key, ".json")
	if key == "" {
		return "", errors.New("empty work key")
	}
	if !strings.HasPrefix(key, "/") {
		key = "/works/" + key
	}
	if !strings.HasPrefix(key, "/works/") || strings.ContainsAny(key[len("/works/"):], "/?#") {
		return "", fmt.Errorf("invalid work key: %q", key)
	}
	return key, nil
}

func convertSearchDoc(doc *openLibrarySearchDoc) Candidate {
	candidate := Candidate{
		Title:   doc.Title,
		Author:  strings.Join(doc.AuthorName, ", "),
		WorkKey: doc.Key,
	}

	if len(doc.ISBN) > 0 {
		candidate.ISBN = doc.ISBN[0]
	}
	if doc.CoverI != 0 {
		candidate.CoverURL = fmt.Sprintf(coverURLFormat, doc.CoverI)
	}
	if doc.NumberOfPagesMedian > 0 {
		candidate.Pages = strconv.Itoa(doc.NumberOfPagesMedian)
	}
	if doc.FirstPublishYear > 0 {
		candidate.CopyrightYear = strconv.Itoa(doc.FirstPublishYear)
	}

	return candidate
}

// normalizeISBN removes hyphens and spaces from ISBN.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	return strings.TrimSpace(isbn)
}

// OpenLibrary API response types (internal)

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    int      `json:"first_publish_year"`
	ISBN                []string `json:"isbn"`
	CoverI              int      `json:"cover_i"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
}

type openLibraryWork struct {
	Key         string      `json:"key"`
	Title       string      `json:"title"`
	Description description `json:"description"`
}

// description accepts both "text" and {"type": "/type/text", "value": "text"}.
type description struct {
	Text string
}

func (d *description) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		d.Text = plain
		return nil
	}

	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("description: %w", err)
	}
	d.Text = wrapped.Value
	return nil
}
