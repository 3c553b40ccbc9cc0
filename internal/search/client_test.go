package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/synthese-backend/internal/logger"
)

type fakeRoundTripper struct {
	requests []*http.Request
	bodies   []string
	status   int
	body     string
}

func (f *fakeRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	payload := ""
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		payload = string(raw)
	}
	f.bodies = append(f.bodies, payload)
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Header:     make(http.Header),
	}, nil
}

func newFakeClient(rt *fakeRoundTripper) Client {
	c := NewClient(logger.NewNop(), Config{URL: "http://index:9200/", Timeout: time.Second})
	c.(*httpClient).http = &http.Client{Transport: rt}
	return c
}

func TestClientIndexRequestShape(t *testing.T) {
	rt := &fakeRoundTripper{body: `{}`}
	c := newFakeClient(rt)

	err := c.Index(context.Background(), "articles", "abc", map[string]interface{}{"title": "Caffeine"})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if len(rt.requests) != 1 {
		t.Fatalf("requests: want=1 got=%d", len(rt.requests))
	}
	req := rt.requests[0]
	if req.Method != http.MethodPut {
		t.Fatalf("method: want=PUT got=%s", req.Method)
	}
	if req.URL.String() != "http://index:9200/articles/_doc/abc" {
		t.Fatalf("url: got=%s", req.URL.String())
	}
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(rt.bodies[0]), &doc); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if doc["title"] != "Caffeine" {
		t.Fatalf("doc title: want=%q got=%v", "Caffeine", doc["title"])
	}
}

func TestClientDeleteToleratesMissingDocument(t *testing.T) {
	rt := &fakeRoundTripper{status: http.StatusNotFound, body: `{"found":false}`}
	c := newFakeClient(rt)

	if err := c.Delete(context.Background(), "articles", "gone"); err != nil {
		t.Fatalf("Delete of missing doc: %v", err)
	}
}

func TestClientQueryPagination(t *testing.T) {
	rt := &fakeRoundTripper{body: `{
		"hits": {
			"total": {"value": 12},
			"hits": [{"_id": "one"}, {"_id": "two"}]
		}
	}`}
	c := newFakeClient(rt)

	ids, total, err := c.Query(context.Background(), "articles", "stimulant", 3, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if total != 12 {
		t.Fatalf("total: want=12 got=%d", total)
	}
	if len(ids) != 2 || ids[0] != "one" || ids[1] != "two" {
		t.Fatalf("ids: got=%v", ids)
	}

	var body map[string]interface{}
	if err := json.Unmarshal([]byte(rt.bodies[0]), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got := body["from"].(float64); got != 10 {
		t.Fatalf("from: want=10 got=%v", got)
	}
	if got := body["size"].(float64); got != 5 {
		t.Fatalf("size: want=5 got=%v", got)
	}
}

func TestClientSurfacesStatusErrors(t *testing.T) {
	rt := &fakeRoundTripper{status: http.StatusInternalServerError, body: `boom`}
	c := newFakeClient(rt)

	err := c.Index(context.Background(), "articles", "abc", map[string]interface{}{})
	if err == nil {
		t.Fatalf("Index: expected error")
	}
	statusErr, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("error type: want *StatusError got %T", err)
	}
	if statusErr.Status != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", statusErr.Status)
	}
	if statusErr.Body != "boom" {
		t.Fatalf("body: want=%q got=%q", "boom", statusErr.Body)
	}
}
