package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/utils"
)

const maxErrorBodyBytes = 1024

// Client talks to the external full-text index. A nil Client means no index
// service is bound; callers treat every operation as a no-op in that case.
type Client interface {
	Index(ctx context.Context, index, id string, doc map[string]interface{}) error
	Delete(ctx context.Context, index, id string) error
	Query(ctx context.Context, index, query string, page, perPage int) ([]string, int, error)
}

type Config struct {
	URL     string
	Timeout time.Duration
}

func ConfigFromEnv(log *logger.Logger) Config {
	timeoutSec := utils.GetEnvAsInt("SEARCH_TIMEOUT_SECONDS", 10, log)
	return Config{
		URL:     strings.TrimSpace(utils.GetEnv("SEARCH_URL", "", log)),
		Timeout: time.Duration(timeoutSec) * time.Second,
	}
}

// NewFromEnv returns nil when no index endpoint is configured. That is the
// degraded mode: everything still works except full-text search.
func NewFromEnv(log *logger.Logger) Client {
	cfg := ConfigFromEnv(log)
	if cfg.URL == "" {
		log.Warn("No search index endpoint configured, search runs in degraded mode")
		return nil
	}
	return NewClient(log, cfg)
}

func NewClient(log *logger.Logger, cfg Config) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &httpClient{
		log:     log.With("client", "SearchClient"),
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type httpClient struct {
	log     *logger.Logger
	baseURL string
	http    *http.Client
}

type searchEnvelope struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *httpClient) Index(ctx context.Context, index, id string, doc map[string]interface{}) error {
	const op = "index"
	path := fmt.Sprintf("/%s/_doc/%s", url.PathEscape(index), url.PathEscape(id))
	return c.doJSON(ctx, op, http.MethodPut, path, doc, nil)
}

func (c *httpClient) Delete(ctx context.Context, index, id string) error {
	const op = "delete"
	path := fmt.Sprintf("/%s/_doc/%s", url.PathEscape(index), url.PathEscape(id))
	err := c.doJSON(ctx, op, http.MethodDelete, path, nil, nil)
	if err != nil {
		var statusErr *StatusError
		// Deleting a document that was never indexed is a no-op.
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
			return nil
		}
		return err
	}
	return nil
}

func (c *httpClient) Query(ctx context.Context, index, query string, page, perPage int) ([]string, int, error) {
	const op = "query"
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"*"},
			},
		},
		"from": (page - 1) * perPage,
		"size": perPage,
	}
	var envelope searchEnvelope
	path := fmt.Sprintf("/%s/_search", url.PathEscape(index))
	if err := c.doJSON(ctx, op, http.MethodPost, path, body, &envelope); err != nil {
		return nil, 0, err
	}
	ids := make([]string, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, envelope.Hits.Total.Value, nil
}

type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search %s failed: status=%d body=%s", e.Op, e.Status, e.Body)
}

func (c *httpClient) doJSON(ctx context.Context, op, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("search %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("search %s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("search %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("search %s: decode response: %w", op, err)
		}
	}
	return nil
}
