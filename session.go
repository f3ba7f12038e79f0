package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	http "github.com/bogdanfinn/fhttp"
)

// Session carries the cookie-holding client and browser headers from one
// request to the next. It is owned by a single run and never shared.
type Session struct {
	client  SessionClient
	profile *BrowserProfile
	logger  Logger
	cookies *cookieStore
}

// NewSession wraps a client whose cookie jar will accumulate state for one run.
func NewSession(client SessionClient, profile *BrowserProfile, logger Logger) *Session {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Session{
		client:  client,
		profile: profile,
		logger:  logger,
		cookies: newCookieStore(),
	}
}

// Cookies returns the cookies the session would send to rawURL.
func (s *Session) Cookies(rawURL string) ([]*http.Cookie, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return s.client.GetCookies(u), nil
}

// SetCookies installs cookies for rawURL into the session's jar.
func (s *Session) SetCookies(rawURL string, cookies []*http.Cookie) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	s.client.SetCookies(u, cookies)
	s.cookies.record(u, cookies, time.Now())
	return nil
}

// doRequest executes an HTTP request and logs the request URL and response status code.
func (s *Session) doRequest(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Log("%s %s -> error: %v", req.Method, req.URL.Path, err)
		return nil, err
	}
	s.logger.Log("%s %s -> %d", req.Method, req.URL.Path, resp.StatusCode)
	s.cookies.record(req.URL, resp.Cookies(), time.Now())
	return resp, nil
}

// RequestOptions are the per-call extras for ExecuteRequest.
// Requests with neither Headers nor JSON are sent as top-level page loads.
type RequestOptions struct {
	Headers map[string]string
	Params  url.Values
	JSON    any
}

// RequestResult is what every successful step hands to the next one.
type RequestResult struct {
	StatusCode int
	Body       string
	Session    *Session
}

// ExecuteRequest sends one GET or POST through the session. Only HTTP 200 counts
// as success; anything else is a *RequestError. Other methods are rejected before
// the transport is touched.
func ExecuteRequest(ctx context.Context, s *Session, method, rawURL string, opts RequestOptions) (*RequestResult, error) {
	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRequestMethod, method)
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if len(opts.Params) > 0 {
		q := target.Query()
		for k, vs := range opts.Params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	var body io.Reader
	if opts.JSON != nil {
		payload, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}

	if len(opts.Headers) == 0 && opts.JSON == nil {
		req.Header = navigationHeaders(s.profile)
	} else {
		req.Header = ajaxHeaders(s.profile, originOf(target), opts.JSON != nil)
		mergeHeaders(req.Header, opts.Headers)
	}

	resp, err := s.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{Method: method, URL: rawURL, StatusCode: resp.StatusCode}
	}

	bodyBytes, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &RequestResult{
		StatusCode: resp.StatusCode,
		Body:       string(bodyBytes),
		Session:    s,
	}, nil
}

func originOf(u *url.URL) string {
	return u.Scheme + "://" + u.Host + "/"
}
