package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/guardhq/realtime-go/internal/types"
)

// ListMessages retrieves one page of the durable message history for an order
// (synchronous). Non-2xx responses map to ErrHistoryUnavailable so callers can
// render an empty state instead of seeding the log with stale data.
func ListMessages(ctx context.Context, httpClient HTTPClient, baseURL, orderID string, page, limit int) (*types.ListMessagesResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(orderID, "orderId"); err != nil {
		return nil, err
	}

	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	endpoint := fmt.Sprintf("%s/api/orders/%s/messages", baseURL, url.PathEscape(orderID))
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w: %w", types.ErrHistoryUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list messages: status %d: %w", resp.StatusCode, types.ErrHistoryUnavailable)
	}
	var lr types.ListMessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("list messages: decode: %w: %w", types.ErrHistoryUnavailable, err)
	}
	return &lr, nil
}
