package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/guardhq/realtime-go/internal/types"
)

// FetchSubscribeToken requests a short-lived hub credential scoped to the
// given topics. Any failure maps to ErrCredentialUnavailable; the caller must
// not open a stream without a valid credential.
func FetchSubscribeToken(ctx context.Context, httpClient HTTPClient, baseURL string, topics []string) (*types.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("topics are required: %w", types.ErrInvalidInput)
	}

	body, err := json.Marshal(types.SubscribeTokenRequest{Topics: topics})
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/api/realtime/token", baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch subscribe token: %w: %w", types.ErrCredentialUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch subscribe token: status %d: %w", resp.StatusCode, types.ErrCredentialUnavailable)
	}
	var tr types.SubscribeTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("fetch subscribe token: decode: %w: %w", types.ErrCredentialUnavailable, err)
	}
	if tr.Token == "" {
		return nil, fmt.Errorf("fetch subscribe token: empty token: %w", types.ErrCredentialUnavailable)
	}
	return &types.Credential{
		Token:     tr.Token,
		Topics:    tr.Topics,
		ExpiresIn: time.Duration(tr.ExpiresIn) * time.Second,
	}, nil
}
