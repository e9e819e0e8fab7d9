package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/vocdoni/passport-z-sandbox/api"
	"github.com/vocdoni/passport-z-sandbox/log"
)

const (
	// HTTPGET is the method string used for calling Request()
	HTTPGET = http.MethodGet
	// HTTPPOST is the method string used for calling Request()
	HTTPPOST = http.MethodPost

	errCodeNot200 = "API error"

	// DefaultRetries is the number of attempts of a request whose
	// connection fails.
	DefaultRetries = 3
	// DefaultTimeout is the default timeout for the HTTP client
	DefaultTimeout = 10 * time.Second
	// retryDelay is the wait between two attempts.
	retryDelay = 500 * time.Millisecond
	// maxLoggedBody truncates the request bodies written to the debug log.
	maxLoggedBody = 512
)

// HTTPclient is the commitment tracker API HTTP client.
type HTTPclient struct {
	c       *http.Client
	host    *url.URL
	retries int
}

// New connects to the tracker API host and returns the handle. The host
// must answer the ping endpoint.
func New(host string) (*HTTPclient, error) {
	hostURL, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	c := &HTTPclient{
		c: &http.Client{
			Transport: &http.Transport{IdleConnTimeout: DefaultTimeout},
			Timeout:   DefaultTimeout,
		},
		host:    hostURL,
		retries: DefaultRetries,
	}
	log.Debugw("http client created", "host", hostURL.String())
	if err := c.ping(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *HTTPclient) ping() error {
	data, status, err := c.Request(HTTPGET, nil, nil, api.PingEndpoint)
	if err != nil {
		return err
	}
	return apiError(data, status)
}

// SetHostAddr configures the host address of the API server.
func (c *HTTPclient) SetHostAddr(host *url.URL) error {
	c.host = host
	return c.ping()
}

// SetRetries configures the number of attempts of each request.
func (c *HTTPclient) SetRetries(n int) {
	c.retries = max(n, 1)
}

// SetTimeout configures the timeout for the HTTP client.
func (c *HTTPclient) SetTimeout(d time.Duration) {
	c.c.Timeout = d
	if tr, ok := c.c.Transport.(*http.Transport); ok {
		tr.ResponseHeaderTimeout = d
	}
}

// Request is RequestContext with a background context.
func (c *HTTPclient) Request(method string, jsonBody any, params []string, urlPath ...string) ([]byte, int, error) {
	return c.RequestContext(context.Background(), method, jsonBody, params, urlPath...)
}

// RequestContext performs a request to the endpoint built joining urlPath.
// If jsonBody is not nil it is sent JSON encoded. The params are query
// parameters as key, value pairs; an odd trailing key is ignored. It returns
// the response body and status code. Requests whose connection fails are
// retried.
func (c *HTTPclient) RequestContext(ctx context.Context, method string, jsonBody any,
	params []string, urlPath ...string,
) ([]byte, int, error) {
	var body []byte
	if jsonBody != nil {
		var err error
		if body, err = json.Marshal(jsonBody); err != nil {
			return nil, 0, fmt.Errorf("failed to marshal JSON: %w", err)
		}
	}
	u := c.endpoint(params, urlPath...)
	log.Debugw("http client request", "type", method, "url", u, "body", truncate(body))

	resp, err := c.do(ctx, method, u, body)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, resp.StatusCode, nil
}

// endpoint returns the absolute URL of the path and query parameters.
func (c *HTTPclient) endpoint(params []string, urlPath ...string) string {
	u := *c.host
	u.Path = path.Join(u.Path, path.Join(urlPath...))
	if len(params) > 1 {
		values := url.Values{}
		for i := 0; i+1 < len(params); i += 2 {
			values.Set(params[i], params[i+1])
		}
		u.RawQuery = values.Encode()
	}
	return u.String()
}

// do sends the request, retrying when the connection fails.
func (c *HTTPclient) do(ctx context.Context, method, u string, body []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 1; attempt <= max(c.retries, 1); attempt++ {
		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json")
		}
		resp, err := c.c.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		log.Warnw("http request failed", "error", err.Error(), "attempt", attempt, "retries", c.retries)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("http request ultimately failed after retries: %w", lastErr)
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}
