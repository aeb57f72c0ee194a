package types

// ------------------------------
// Response Types
// ------------------------------

// ListMessagesResponse wraps the paginated history endpoint response.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int       `json:"total"`
}

// SubscribeTokenResponse mirrors the token endpoint wire shape. ExpiresIn is
// seconds.
type SubscribeTokenResponse struct {
	Token     string   `json:"token"`
	Topics    []string `json:"topics"`
	ExpiresIn int      `json:"expires_in"`
}
