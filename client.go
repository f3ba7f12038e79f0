package main

import (
	"net/url"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"go.uber.org/zap"
)

const clientTimeoutSeconds = 30

// SessionClient is the part of tls_client.HttpClient the workflow drives.
// The client applies its own cookie jar on every Do.
type SessionClient interface {
	Do(req *http.Request) (*http.Response, error)
	GetCookies(u *url.URL) []*http.Cookie
	SetCookies(u *url.URL, cookies []*http.Cookie)
}

func NewClient(logger tls_client.Logger, proxyURL string, profile *BrowserProfile) (tls_client.HttpClient, error) {
	if logger == nil {
		logger = tls_client.NewNoopLogger()
	}

	jar := tls_client.NewCookieJar()
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(clientTimeoutSeconds),
		tls_client.WithClientProfile(profile.TLSProfile),
		tls_client.WithRandomTLSExtensionOrder(),
		tls_client.WithNotFollowRedirects(),
		tls_client.WithCookieJar(jar),
	}

	if proxyURL != "" {
		options = append(options, tls_client.WithProxyUrl(proxyURL))
	}

	return tls_client.NewHttpClient(logger, options...)
}

// NewSessionForConfig resolves the config's client identifier and opens a fresh
// session with an empty cookie jar.
func NewSessionForConfig(cfg Config, proxyURL string, logger Logger, zl *zap.Logger) (*Session, error) {
	profile, err := ResolveBrowserProfile(cfg.ClientIdentifier)
	if err != nil {
		return nil, err
	}

	var tlsLogger tls_client.Logger
	if zl != nil {
		tlsLogger = &tlsClientLogger{s: zl.Sugar().Named("tls-client")}
	}

	client, err := NewClient(tlsLogger, proxyURL, profile)
	if err != nil {
		return nil, err
	}
	return NewSession(client, profile, logger), nil
}

// tlsClientLogger routes tls-client's internal logging into zap.
type tlsClientLogger struct {
	s *zap.SugaredLogger
}

func (l *tlsClientLogger) Debug(format string, args ...any) { l.s.Debugf(format, args...) }
func (l *tlsClientLogger) Info(format string, args ...any)  { l.s.Infof(format, args...) }
func (l *tlsClientLogger) Warn(format string, args ...any)  { l.s.Warnf(format, args...) }
func (l *tlsClientLogger) Error(format string, args ...any) { l.s.Errorf(format, args...) }
