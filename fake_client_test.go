package main

import (
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"

	http "github.com/bogdanfinn/fhttp"
	"github.com/bogdanfinn/fhttp/cookiejar"
	"go.uber.org/zap/zaptest"
)

var testBrowserProfile = &BrowserProfile{
	Identifier: "chrome_112",
	UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36",
	SecChUa:    `"Chromium";v="112", "Google Chrome";v="112", "Not=A?Brand";v="99"`,
	Platform:   `"Windows"`,
	Mobile:     "?0",
}

type fakeResponse struct {
	status  int
	body    string
	cookies []*http.Cookie
}

type recordedRequest struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   string
}

// fakeClient replays canned responses in order and stores Set-Cookie values in
// a real jar, the way tls-client does.
type fakeClient struct {
	mu        sync.Mutex
	jar       *cookiejar.Jar
	responses []fakeResponse
	requests  []recordedRequest
}

func newFakeClient(t *testing.T, responses ...fakeResponse) *fakeClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &fakeClient{jar: jar, responses: responses}
}

func (f *fakeClient) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body string
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(b)
	}
	f.requests = append(f.requests, recordedRequest{
		Method: req.Method,
		URL:    req.URL,
		Header: req.Header,
		Body:   body,
	})

	if len(f.responses) == 0 {
		return nil, errors.New("fake client: no more responses")
	}
	r := f.responses[0]
	f.responses = f.responses[1:]

	header := http.Header{}
	for _, c := range r.cookies {
		header.Add("Set-Cookie", c.String())
	}
	f.jar.SetCookies(req.URL, r.cookies)

	return &http.Response{
		StatusCode: r.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(r.body)),
		Request:    req,
	}, nil
}

func (f *fakeClient) GetCookies(u *url.URL) []*http.Cookie {
	return f.jar.Cookies(u)
}

func (f *fakeClient) SetCookies(u *url.URL, cookies []*http.Cookie) {
	f.jar.SetCookies(u, cookies)
}

func (f *fakeClient) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newTestSession(t *testing.T, client *fakeClient) *Session {
	t.Helper()
	return NewSession(client, testBrowserProfile, newModuleLogger(zaptest.NewLogger(t)))
}

func cookieMap(cookies []*http.Cookie) map[string]string {
	m := make(map[string]string, len(cookies))
	for _, c := range cookies {
		m[c.Name] = c.Value
	}
	return m
}

// homePageHTML renders a minimal storefront page with the location modal.
func homePageHTML(dataModal string) string {
	return `<!doctype html><html><head><title>Amazon.de</title></head><body>
<div id="nav-global-location-slot">
  <span id="nav-global-location-data-modal-action" class="a-declarative" data-a-modal="` + dataModal + `"></span>
  <span id="glow-ingress-line1">Deliver to</span>
  <span id="glow-ingress-line2">
      Germany
  </span>
</div>
</body></html>`
}

const validDataModal = `{&quot;width&quot;:375,&quot;closeButton&quot;:&quot;false&quot;,&quot;popoverLabel&quot;:&quot;Choose your location&quot;,&quot;ajaxHeaders&quot;:{&quot;anti-csrftoken-a2z&quot;:&quot;hAfZ2tq8JkL0vF9mQw==&quot;},&quot;name&quot;:&quot;glow-modal&quot;,&quot;url&quot;:&quot;/portal-migration/hz/glow/get-rendered-address-selections?deviceType=desktop&quot;}`

const validAntiCsrfToken = "hAfZ2tq8JkL0vF9mQw=="
