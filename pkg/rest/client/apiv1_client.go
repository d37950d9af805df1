// Package client provides a basic REST client for Runic Mailman
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"

	"github.com/runic/mailman/pkg/rest/model"
)

// Client accesses the Runic Mailman REST API v1.  The session cookie issued by the server is kept
// between requests, so wizard and editor calls act on one session.
type Client struct {
	restClient
}

// New creates a new v1 REST API client given the base URL of a Runic Mailman server, ex:
// "http://localhost:9090"
func New(baseURL string, opts ...func(*ClientOptions)) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	options := getDefaultClientOptions()
	for _, opt := range opts {
		opt(options)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		restClient{
			client: &http.Client{
				Transport: options.transport,
				Timeout:   options.timeout,
				Jar:       jar,
			},
			baseURL: parsedURL,
		},
	}
	return c, nil
}

// Status returns the service status board.
func (c *Client) Status(ctx context.Context) (status *model.JSONStatusV1, err error) {
	err = c.doJSON(ctx, "GET", "/api/v1/status", nil, &status)
	return
}

// Refresh refreshes the status board, returning once the refresh completes.
func (c *Client) Refresh(ctx context.Context) (status *model.JSONStatusV1, err error) {
	err = c.doJSON(ctx, "POST", "/api/v1/status/refresh", nil, &status)
	return
}

// Restart restarts the named service from the status board.
func (c *Client) Restart(ctx context.Context, name string) (svc *model.JSONServiceStatusV1, err error) {
	err = c.doJSON(ctx, "POST", "/api/v1/status/"+url.PathEscape(name)+"/restart", nil, &svc)
	return
}

// Reload reloads the configuration of the named service from the status board.
func (c *Client) Reload(ctx context.Context, name string) (svc *model.JSONServiceStatusV1, err error) {
	err = c.doJSON(ctx, "POST", "/api/v1/status/"+url.PathEscape(name)+"/reload", nil, &svc)
	return
}

// Overview returns the home page data.
func (c *Client) Overview(ctx context.Context) (o *model.JSONOverviewV1, err error) {
	err = c.doJSON(ctx, "GET", "/api/v1/overview", nil, &o)
	return
}

// Services lists the services with editable configuration.
func (c *Client) Services(ctx context.Context) (services []*model.JSONServiceV1, err error) {
	err = c.doJSON(ctx, "GET", "/api/v1/services", nil, &services)
	return
}

// Files lists the configuration files of a service.
func (c *Client) Files(ctx context.Context, service string) (
	files []*model.JSONFileHeaderV1, err error) {
	err = c.doJSON(ctx, "GET", "/api/v1/services/"+url.PathEscape(service)+"/files", nil, &files)
	return
}

// File returns a stored configuration file.
func (c *Client) File(ctx context.Context, service, name string) (f *model.JSONFileV1, err error) {
	uri := "/api/v1/services/" + url.PathEscape(service) + "/files/" + url.PathEscape(name)
	err = c.doJSON(ctx, "GET", uri, nil, &f)
	return
}

// Editor returns the editor state of this client's session.
func (c *Client) Editor(ctx context.Context) (e *model.JSONEditorV1, err error) {
	err = c.doJSON(ctx, "GET", "/api/v1/editor", nil, &e)
	return
}

// SelectService selects the editor service.
func (c *Client) SelectService(ctx context.Context, service string) (e *model.JSONEditorV1, err error) {
	err = c.doJSON(ctx, "PUT", "/api/v1/editor/service/"+url.PathEscape(service), nil, &e)
	return
}

// SelectFile selects a file of the editor service, loading it into the buffer.
func (c *Client) SelectFile(ctx context.Context, name string) (e *model.JSONEditorV1, err error) {
	err = c.doJSON(ctx, "PUT", "/api/v1/editor/file/"+url.PathEscape(name), nil, &e)
	return
}

// PutBuffer replaces the edit buffer.
func (c *Client) PutBuffer(ctx context.Context, content string) (e *model.JSONEditorV1, err error) {
	err = c.doJSON(ctx, "PUT", "/api/v1/editor/buffer", []byte(content), &e)
	return
}

// Validate checks the edit buffer.  A failed validation is returned as an *Error with status 422.
func (c *Client) Validate(ctx context.Context) (e *model.JSONEditorV1, err error) {
	err = c.doJSON(ctx, "POST", "/api/v1/editor/validate", nil, &e)
	return
}

// Save validates then saves the edit buffer, returning once the save completes.
func (c *Client) Save(ctx context.Context) (e *model.JSONEditorV1, err error) {
	err = c.doJSON(ctx, "POST", "/api/v1/editor/save", nil, &e)
	return
}

// RestartEditorService restarts the service selected in the editor.
func (c *Client) RestartEditorService(ctx context.Context) (e *model.JSONEditorV1, err error) {
	err = c.doJSON(ctx, "POST", "/api/v1/editor/restart", nil, &e)
	return
}

// Wizard returns the wizard state of this client's session.
func (c *Client) Wizard(ctx context.Context) (w *model.JSONWizardV1, err error) {
	err = c.doJSON(ctx, "GET", "/api/v1/wizard", nil, &w)
	return
}

// WizardNext advances the wizard one step.
func (c *Client) WizardNext(ctx context.Context) (w *model.JSONWizardV1, err error) {
	err = c.doJSON(ctx, "POST", "/api/v1/wizard/next", nil, &w)
	return
}

// WizardPrevious moves the wizard back one step.
func (c *Client) WizardPrevious(ctx context.Context) (w *model.JSONWizardV1, err error) {
	err = c.doJSON(ctx, "POST", "/api/v1/wizard/previous", nil, &w)
	return
}

// WizardJump moves the wizard to step index, which must already be reachable.
func (c *Client) WizardJump(ctx context.Context, index int) (w *model.JSONWizardV1, err error) {
	err = c.doJSON(ctx, "POST", "/api/v1/wizard/step/"+strconv.Itoa(index), nil, &w)
	return
}

// WizardDetails updates server details, keyed by field name.
func (c *Client) WizardDetails(ctx context.Context, fields map[string]string) (
	w *model.JSONWizardV1, err error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	err = c.doJSON(ctx, "PATCH", "/api/v1/wizard/details", body, &w)
	return
}
