// Package quote supplies quotes for typing attempts.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Fallback is used whenever a source fails.
const Fallback = "Stay focused and keep typing."

// DefaultURL is the remote quote collection.
const DefaultURL = "https://dummyjson.com/quotes"

// DefaultTimeout bounds a single remote fetch.
const DefaultTimeout = 10 * time.Second

// Source returns one quote per call.
type Source interface {
	Quote(ctx context.Context) (string, error)
}

// Pick returns a quote from src, or Fallback with the cause when src fails.
func Pick(ctx context.Context, src Source) (string, error) {
	if src == nil {
		return Fallback, fmt.Errorf("no quote source")
	}
	q, err := src.Quote(ctx)
	if err != nil {
		return Fallback, err
	}
	if strings.TrimSpace(q) == "" {
		return Fallback, fmt.Errorf("quote source returned a blank quote")
	}
	return q, nil
}

type picker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newPicker() *picker {
	return &picker{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// intn is called from concurrent tea.Cmd goroutines.
func (p *picker) intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Intn(n)
}

// HTTPSource fetches a quote collection and picks one uniformly.
type HTTPSource struct {
	url    string
	client *http.Client
	pick   *picker
}

type quotesResponse struct {
	Quotes []struct {
		Quote  string `json:"quote"`
		Author string `json:"author"`
	} `json:"quotes"`
}

// NewHTTPSource returns a source reading from url. A non-positive timeout uses DefaultTimeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
		pick:   newPicker(),
	}
}

// Quote implements Source.
func (s *HTTPSource) Quote(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected quote status: %s", resp.Status)
	}

	var payload quotesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode quotes: %w", err)
	}
	quotes := make([]string, 0, len(payload.Quotes))
	for _, item := range payload.Quotes {
		if strings.TrimSpace(item.Quote) != "" {
			quotes = append(quotes, item.Quote)
		}
	}
	if len(quotes) == 0 {
		return "", fmt.Errorf("quote response has no usable quotes")
	}
	return quotes[s.pick.intn(len(quotes))], nil
}
