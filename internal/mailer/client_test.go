package mailer

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

type scriptedRoundTripper struct {
	statuses []int
	calls    int
	requests []*http.Request
	bodies   []string
}

func (s *scriptedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.requests = append(s.requests, req)
	payload := ""
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		payload = string(raw)
	}
	s.bodies = append(s.bodies, payload)
	status := http.StatusOK
	if s.calls < len(s.statuses) {
		status = s.statuses[s.calls]
	}
	s.calls++
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     make(http.Header),
	}, nil
}

func newScriptedClient(rt *scriptedRoundTripper, maxRetries int) Client {
	c := New(logger.NewNop(), Config{
		APIKey:     "key-123",
		BaseURL:    "http://mail:9000",
		FromEmail:  "no-reply@synthese.local",
		FromName:   "Synthese",
		Timeout:    time.Second,
		MaxRetries: maxRetries,
	})
	c.(*client).httpClient = &http.Client{Transport: rt}
	return c
}

func TestSendRequestShape(t *testing.T) {
	rt := &scriptedRoundTripper{}
	c := newScriptedClient(rt, 0)

	err := c.Send(context.Background(), SendEmailRequest{
		ToEmail:  "alice@example.com",
		ToName:   "Alice",
		Subject:  "Reset Your Password",
		TextBody: "plain",
		HTMLBody: "<p>rich</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(rt.requests) != 1 {
		t.Fatalf("requests: want=1 got=%d", len(rt.requests))
	}
	req := rt.requests[0]
	if req.URL.String() != "http://mail:9000/v3/mail/send" {
		t.Fatalf("url: got=%s", req.URL.String())
	}
	if got := req.Header.Get("Authorization"); got != "Bearer key-123" {
		t.Fatalf("authorization: got=%q", got)
	}

	var payload sendPayload
	if err := json.Unmarshal([]byte(rt.bodies[0]), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.From.Email != "no-reply@synthese.local" {
		t.Fatalf("from: got=%q", payload.From.Email)
	}
	if len(payload.To) != 1 || payload.To[0].Email != "alice@example.com" {
		t.Fatalf("to: got=%v", payload.To)
	}
	if len(payload.Content) != 2 {
		t.Fatalf("content parts: want=2 got=%d", len(payload.Content))
	}
	if payload.Content[0].Type != "text/plain" || payload.Content[1].Type != "text/html" {
		t.Fatalf("content types: got=%s,%s", payload.Content[0].Type, payload.Content[1].Type)
	}
}

func TestSendRetriesOnThrottle(t *testing.T) {
	rt := &scriptedRoundTripper{statuses: []int{http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusOK}}
	c := newScriptedClient(rt, 4)

	err := c.Send(context.Background(), SendEmailRequest{ToEmail: "alice@example.com", Subject: "hi", TextBody: "x"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if rt.calls != 3 {
		t.Fatalf("attempts: want=3 got=%d", rt.calls)
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	rt := &scriptedRoundTripper{statuses: []int{http.StatusBadRequest}}
	c := newScriptedClient(rt, 4)

	err := c.Send(context.Background(), SendEmailRequest{ToEmail: "alice@example.com", Subject: "hi", TextBody: "x"})
	if err == nil {
		t.Fatalf("Send: expected error")
	}
	if rt.calls != 1 {
		t.Fatalf("attempts: want=1 got=%d", rt.calls)
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	rt := &scriptedRoundTripper{}
	c := newScriptedClient(rt, 0)

	if err := c.Send(context.Background(), SendEmailRequest{Subject: "hi"}); err == nil {
		t.Fatalf("Send without recipient: expected error")
	}
	if rt.calls != 0 {
		t.Fatalf("attempts: want=0 got=%d", rt.calls)
	}
}
