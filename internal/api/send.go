package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	guarderrors "github.com/guardhq/realtime-go/internal/errors"
	"github.com/guardhq/realtime-go/internal/types"
)

// SendMessage posts a chat message and returns the durable record (with its
// server-assigned ID). Errors are classified so the send executor retries
// transient failures and fails fast on client errors.
func SendMessage(ctx context.Context, httpClient HTTPClient, baseURL string, req types.SendMessageRequest) (*types.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(req.OrderID, "orderId"); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(req.SenderID, "senderId"); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/api/orders/%s/messages", baseURL, url.PathEscape(req.OrderID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, guarderrors.NewNetworkError("send message", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, guarderrors.NewHTTPError(resp.StatusCode, string(b), "send message")
	}
	var m types.Message
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, guarderrors.NewNetworkError("send message decode", err)
	}
	return &m, nil
}
