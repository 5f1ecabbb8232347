package poll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/colonyops/deskbell/internal/core/alert"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

// Source produces the current snapshot.
type Source interface {
	Fetch(ctx context.Context) (alert.Snapshot, error)
}

// HTTPOptions configures an HTTPSource.
type HTTPOptions struct {
	URL           string
	SessionCookie string
	Token         string
	Timeout       time.Duration
}

// HTTPSource polls the dashboard's notification endpoint.
type HTTPSource struct {
	opts   HTTPOptions
	client *http.Client
}

// NewHTTPSource creates an HTTPSource. A nil client uses one with
// opts.Timeout.
func NewHTTPSource(opts HTTPOptions, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPSource{opts: opts, client: client}
}

func (s *HTTPSource) Fetch(ctx context.Context) (alert.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.URL, nil)
	if err != nil {
		return alert.Snapshot{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.opts.SessionCookie != "" {
		req.Header.Set("Cookie", s.opts.SessionCookie)
	}
	if s.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.opts.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return alert.Snapshot{}, fmt.Errorf("fetch %s: %w", s.opts.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return alert.Snapshot{}, fmt.Errorf("read response: %w", err)
	}

	snap, decodeErr := Decode(body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr *APIError
		if errors.As(decodeErr, &apiErr) {
			return alert.Snapshot{}, fmt.Errorf("fetch %s: status %d: %w", s.opts.URL, resp.StatusCode, apiErr)
		}
		return alert.Snapshot{}, fmt.Errorf("fetch %s: status %d", s.opts.URL, resp.StatusCode)
	}
	if decodeErr != nil {
		return alert.Snapshot{}, decodeErr
	}
	return snap, nil
}

// FileSource reads a snapshot from a JSON file in the same format the
// dashboard serves.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the watched file.
func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Fetch(context.Context) (alert.Snapshot, error) {
	body, err := os.ReadFile(s.path)
	if err != nil {
		return alert.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(body)
}

// ReaderSource decodes a single snapshot from r. Later fetches return the
// same snapshot.
type ReaderSource struct {
	snap alert.Snapshot
}

// NewReaderSource reads r to the end and decodes it.
func NewReaderSource(r io.Reader) (*ReaderSource, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	snap, err := Decode(body)
	if err != nil {
		return nil, err
	}
	return &ReaderSource{snap: snap}, nil
}

func (s *ReaderSource) Fetch(context.Context) (alert.Snapshot, error) {
	return s.snap, nil
}
