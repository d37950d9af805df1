package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/runic/mailman/pkg/rest/model"
)

// httpClient allows http.Client to be mocked for tests
type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Error is a non-200 response from the API.
type Error struct {
	Method     string
	URI        string
	StatusCode int
	Message    string // From the JSON error document, if the server sent one.
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s for %q, unexpected %v", e.Method, e.URI, e.StatusCode)
	}
	return fmt.Sprintf("%s for %q, unexpected %v: %s", e.Method, e.URI, e.StatusCode, e.Message)
}

// Generic REST restClient
type restClient struct {
	client  httpClient
	baseURL *url.URL
}

// do performs an HTTP request with this client and returns the response.
func (c *restClient) do(ctx context.Context, method, uri string, body []byte) (*http.Response, error) {
	url := c.baseURL.JoinPath(uri)
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url.String(), r)
	if err != nil {
		return nil, fmt.Errorf("%s for %q: %v", method, url, err)
	}
	req.Header.Set("Accept", "application/json")

	return c.client.Do(req)
}

// doJSON performs an HTTP request with this client and marshalls the JSON response into v.
func (c *restClient) doJSON(ctx context.Context, method string, uri string, body []byte, v any) error {
	resp, err := c.do(ctx, method, uri, body)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusOK {
		if v == nil {
			return nil
		}
		// Decode response body
		return json.NewDecoder(resp.Body).Decode(v)
	}

	apiErr := &Error{Method: method, URI: uri, StatusCode: resp.StatusCode}
	var doc model.JSONErrorV1
	if json.NewDecoder(resp.Body).Decode(&doc) == nil {
		apiErr.Message = doc.Error
	}
	return apiErr
}
