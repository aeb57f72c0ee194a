package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	guarderrors "github.com/guardhq/realtime-go/internal/errors"
	"github.com/guardhq/realtime-go/internal/types"
)

// failingClient implements HTTPClient and always fails at the transport level.
type failingClient struct{}

func (failingClient) Do(*http.Request) (*http.Response, error) {
	return nil, fmt.Errorf("connection refused")
}

func TestListMessages_PathAndPagination(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.ListMessagesResponse{
			Messages: []types.Message{{ID: "1", Content: "hi"}},
			Page:     2, Limit: 10, Total: 11,
		})
	}))
	defer srv.Close()

	resp, err := ListMessages(context.Background(), srv.Client(), srv.URL, "o1", 2, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotPath != "/api/orders/o1/messages" {
		t.Fatalf("path: %q", gotPath)
	}
	if gotQuery != "limit=10&page=2" {
		t.Fatalf("query: %q", gotQuery)
	}
	if len(resp.Messages) != 1 || resp.Total != 11 {
		t.Fatalf("response: %+v", resp)
	}
}

func TestListMessages_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := ListMessages(context.Background(), srv.Client(), srv.URL, "o1", 1, 10); !errors.Is(err, types.ErrHistoryUnavailable) {
		t.Fatalf("expected ErrHistoryUnavailable on 502, got %v", err)
	}
	if _, err := ListMessages(context.Background(), failingClient{}, "http://example.com", "o1", 1, 10); !errors.Is(err, types.ErrHistoryUnavailable) {
		t.Fatalf("expected ErrHistoryUnavailable on transport failure, got %v", err)
	}
	if _, err := ListMessages(context.Background(), srv.Client(), srv.URL, "", 1, 10); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty order, got %v", err)
	}
}

func TestSendMessage_CreatedAndClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.SendMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(types.Message{ID: "srv-1", Content: req.Content, ClientKey: req.ClientKey, SentAt: time.Now()})
	}))
	defer srv.Close()

	req := types.SendMessageRequest{OrderID: "o1", SenderID: "s", ReceiverID: "r", Content: "hi", ClientKey: "ck"}
	msg, err := SendMessage(context.Background(), srv.Client(), srv.URL, req)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ID != "srv-1" || msg.ClientKey != "ck" {
		t.Fatalf("response: %+v", msg)
	}
}

func TestSendMessage_ErrorsAreClassified(t *testing.T) {
	status := http.StatusBadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	req := types.SendMessageRequest{OrderID: "o1", SenderID: "s", Content: "hi"}

	_, err := SendMessage(context.Background(), srv.Client(), srv.URL, req)
	if !guarderrors.IsIrrecoverable(err) {
		t.Fatalf("400 not irrecoverable: %v", err)
	}

	status = http.StatusServiceUnavailable
	_, err = SendMessage(context.Background(), srv.Client(), srv.URL, req)
	if err == nil || guarderrors.IsIrrecoverable(err) {
		t.Fatalf("503 should be recoverable: %v", err)
	}

	_, err = SendMessage(context.Background(), failingClient{}, "http://example.com", req)
	if err == nil || guarderrors.IsIrrecoverable(err) {
		t.Fatalf("network failure should be recoverable: %v", err)
	}
}

func TestFetchSubscribeToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.SubscribeTokenRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.SubscribeTokenResponse{Token: "tok", Topics: req.Topics, ExpiresIn: 120})
	}))
	defer srv.Close()

	cred, err := FetchSubscribeToken(context.Background(), srv.Client(), srv.URL, []string{"guard/zone/z1"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if cred.Token != "tok" || cred.ExpiresIn != 2*time.Minute {
		t.Fatalf("credential: %+v", cred)
	}

	if _, err := FetchSubscribeToken(context.Background(), srv.Client(), srv.URL, nil); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for no topics, got %v", err)
	}
}

func TestFetchSubscribeToken_EmptyTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.SubscribeTokenResponse{Token: "", ExpiresIn: 120})
	}))
	defer srv.Close()

	if _, err := FetchSubscribeToken(context.Background(), srv.Client(), srv.URL, []string{"t"}); !errors.Is(err, types.ErrCredentialUnavailable) {
		t.Fatalf("expected ErrCredentialUnavailable for empty token, got %v", err)
	}
}
