// Package seed bootstraps an empty task list with sample items fetched
// from a remote JSON API.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fentz26/tasklist/internal/models"
)

// DefaultEndpoint returns five sample to-dos.
const DefaultEndpoint = "https://jsonplaceholder.typicode.com/todos?_limit=5"

// DefaultClientTimeout bounds a seed request.
const DefaultClientTimeout = 10 * time.Second

// Item is one sample entry from the seed source.
type Item struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// FetchError reports a failed seed request. StatusCode is zero when the
// request never got a response.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch seed tasks: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch seed tasks: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Target is what the loader seeds.
type Target interface {
	NeedsSeed() bool
	Clear()
	Replace(tasks []models.Task) error
	Today() string
}

// Loader fetches sample items and installs them as the task collection.
type Loader struct {
	endpoint   string
	limit      int
	httpClient *http.Client
}

// New creates a loader for endpoint. limit caps how many items are kept;
// zero keeps everything the source returns.
func New(endpoint string, limit int, timeout time.Duration) *Loader {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}
	return &Loader{
		endpoint: endpoint,
		limit:    limit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the URL the loader fetches.
func (l *Loader) Endpoint() string {
	return l.endpoint
}

// Fetch retrieves the sample items.
func (l *Loader) Fetch(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(body))),
		}
	}

	var items []Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, &FetchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return items, nil
}

// ToTasks maps items to fresh tasks due today, at most limit of them.
// Blank titles and repeated ids are dropped rather than copied across:
// the store rejects empty text, and Replace refuses duplicate ids, so one
// bad item would otherwise sink the whole seed.
func (l *Loader) ToTasks(items []Item, today string) []models.Task {
	out := make([]models.Task, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, models.Task{
			ID:        it.ID,
			Text:      title,
			Date:      today,
			Completed: false,
		})
		if l.limit > 0 && len(out) == l.limit {
			break
		}
	}
	return out
}

// Bootstrap seeds target when it is empty or fully completed. It reports
// whether seeding happened. On failure the target is left empty and the
// error is returned; there is no retry.
func (l *Loader) Bootstrap(ctx context.Context, target Target) (bool, error) {
	if !target.NeedsSeed() {
		return false, nil
	}
	target.Clear()

	log.Printf("No active tasks found. Fetching sample tasks from %s", l.endpoint)
	items, err := l.Fetch(ctx)
	if err != nil {
		log.Printf("Seed load error: %v", err)
		return false, err
	}

	if err := target.Replace(l.ToTasks(items, target.Today())); err != nil {
		return false, fmt.Errorf("install seed tasks: %w", err)
	}
	return true, nil
}
