package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"study-tracker/internal/models"
)

const (
	pollTimeout  = 55 * time.Second
	retryBackoff = 5 * time.Second
	writeTimeout = 15 * time.Second
	maxErrorBody = 512
)

// HTTPStore talks to a remote document collection over JSON/HTTP. The
// collection lives at <base>/v1/<identity>/sessions; subscription is a
// long-poll carrying a revision cursor, so each response is the full
// collection as of a revision later than the one asked for.
type HTTPStore struct {
	base     string
	identity string
	client   *http.Client
}

// NewHTTPStore returns a store for the given base URL and identity token.
func NewHTTPStore(base, identity string) *HTTPStore {
	return &HTTPStore{
		base:     base,
		identity: identity,
		client:   &http.Client{Timeout: pollTimeout + 10*time.Second},
	}
}

func (h *HTTPStore) collectionURL() string {
	return fmt.Sprintf("%s/v1/%s/sessions", h.base, url.PathEscape(h.identity))
}

// SetAll implements Store.
func (h *HTTPStore) SetAll(ctx context.Context, sessions []models.Session) error {
	if sessions == nil {
		sessions = []models.Session{}
	}
	return h.write(ctx, http.MethodPut, h.collectionURL(), sessions)
}

// Update implements Store.
func (h *HTTPStore) Update(ctx context.Context, id string, fields Fields) error {
	return h.write(ctx, http.MethodPatch, h.collectionURL()+"/"+url.PathEscape(id), fields)
}

// Delete implements Store.
func (h *HTTPStore) Delete(ctx context.Context, id string) error {
	return h.write(ctx, http.MethodDelete, h.collectionURL()+"/"+url.PathEscape(id), nil)
}

// Clear implements Store.
func (h *HTTPStore) Clear(ctx context.Context) error {
	return h.write(ctx, http.MethodDelete, h.collectionURL(), nil)
}

func (h *HTTPStore) write(ctx context.Context, method, u string, body any) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("remote %s %s: %s: %s", method, u, resp.Status, msg)
	}
	return nil
}

type pollResponse struct {
	Revision int64            `json:"revision"`
	Sessions []models.Session `json:"sessions"`
}

// Subscribe implements Store. The poll loop retries with a fixed backoff on
// network errors; errors are logged rather than closing the channel, since
// a flaky link should not tear down the subscription.
func (h *HTTPStore) Subscribe(ctx context.Context) (<-chan []models.Session, error) {
	ch := make(chan []models.Session, 1)
	go func() {
		defer close(ch)
		var rev int64 = -1
		for {
			snap, nextRev, err := h.poll(ctx, rev)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Remote poll error: %v", err)
				select {
				case <-time.After(retryBackoff):
					continue
				case <-ctx.Done():
					return
				}
			}
			rev = nextRev
			select {
			case ch <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (h *HTTPStore) poll(ctx context.Context, after int64) ([]models.Session, int64, error) {
	u := fmt.Sprintf("%s?after=%d&wait=%d", h.collectionURL(), after, int(pollTimeout.Seconds()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, 0, fmt.Errorf("remote poll: %s: %s", resp.Status, msg)
	}

	var pr pollResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, 0, err
	}
	if pr.Sessions == nil {
		pr.Sessions = []models.Session{}
	}
	return pr.Sessions, pr.Revision, nil
}
