package api

import (
	"net/http"
)

// HTTPClient is the subset of *http.Client the API layer needs. Tests inject
// stub transports through it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
