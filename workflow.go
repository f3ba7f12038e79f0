package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	http "github.com/bogdanfinn/fhttp"
)

// Query parameters the storefront's own location modal sends.
var (
	addressSelectionsParams = url.Values{
		"deviceType":   {"desktop"},
		"pageType":     {"Gateway"},
		"storeContext": {"NoStoreName"},
		"actionSource": {"desktop-modal"},
	}
	addressChangeParams = url.Values{
		"actionSource": {"glow"},
	}
)

// WorkflowOptions controls the side effects of a finished run.
type WorkflowOptions struct {
	// CookiePath is where the cookie jar is written after a successful run.
	CookiePath string
	// HTMLPath, if set, receives the home page as seen with the new location.
	HTMLPath string
}

// RunResult is the outcome of one location-change run.
type RunResult struct {
	AntiCsrfToken  string
	CsrfToken      string
	StatusCode     int
	Body           string
	AddressUpdated bool
	Cookies        []*http.Cookie
	CookiePath     string
	HTMLPath       string
}

// Workflow drives the home page -> address selections -> address change chain
// for one storefront. A Workflow owns its Session and runs once.
type Workflow struct {
	cfg     Config
	session *Session
	opts    WorkflowOptions
	logger  Logger
}

func NewWorkflow(cfg Config, session *Session, opts WorkflowOptions, logger Logger) *Workflow {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Workflow{
		cfg:     cfg,
		session: session,
		opts:    opts,
		logger:  logger,
	}
}

// Run executes the workflow with the given location selection. Any stage failure
// returns a *StageError and nothing is persisted. A *FinalizeError comes back
// together with a valid result when only the post-run side effects failed.
func (w *Workflow) Run(ctx context.Context, selection LocationSelection) (*RunResult, error) {
	result := &RunResult{}

	home, err := w.fetchHome(ctx)
	if err != nil {
		return nil, &StageError{Stage: StageFetchHome, Err: err}
	}
	antiCsrfToken, err := ExtractAntiCsrfToken(home.Body)
	if err != nil {
		return nil, &StageError{Stage: StageFetchHome, Err: err}
	}
	result.AntiCsrfToken = antiCsrfToken
	w.logger.Log("Anti-CSRF token: %s", antiCsrfToken)

	form, err := w.fetchAddressForm(ctx, home.Session, antiCsrfToken)
	if err != nil {
		return nil, &StageError{Stage: StageFetchAddressForm, Err: err}
	}
	csrfToken, err := ExtractCsrfToken(form.Body)
	if err != nil {
		return nil, &StageError{Stage: StageFetchAddressForm, Err: err}
	}
	result.CsrfToken = csrfToken
	w.logger.Log("CSRF token: %s", csrfToken)

	w.logger.Log("Submitting address change (%s)...", selection)
	change, err := w.submitAddressChange(ctx, form.Session, csrfToken, selection)
	if err != nil {
		return nil, &StageError{Stage: StageSubmitAddressChange, Err: err}
	}
	result.StatusCode = change.StatusCode
	result.Body = change.Body
	result.AddressUpdated = addressUpdated(change.Body)
	w.logger.Log("Address updated: %t", result.AddressUpdated)

	if err := w.finalize(ctx, change.Session, result); err != nil {
		return result, &FinalizeError{Err: err}
	}
	return result, nil
}

func (w *Workflow) fetchHome(ctx context.Context) (*RequestResult, error) {
	return ExecuteRequest(ctx, w.session, http.MethodGet, w.cfg.HomeURL, RequestOptions{})
}

func (w *Workflow) fetchAddressForm(ctx context.Context, s *Session, antiCsrfToken string) (*RequestResult, error) {
	return ExecuteRequest(ctx, s, http.MethodGet, w.cfg.AddressSelectionsURL, RequestOptions{
		Headers: map[string]string{antiCsrfHeader: antiCsrfToken},
		Params:  addressSelectionsParams,
	})
}

// submitAddressChange reuses the anti-csrf header name with the CSRF token as its value.
func (w *Workflow) submitAddressChange(ctx context.Context, s *Session, csrfToken string, selection LocationSelection) (*RequestResult, error) {
	return ExecuteRequest(ctx, s, http.MethodPost, w.cfg.AddressChangeURL, RequestOptions{
		Headers: map[string]string{antiCsrfHeader: csrfToken},
		Params:  addressChangeParams,
		JSON:    selection.Payload(),
	})
}

// finalize re-fetches the home page and persists the cookie jar. Both are
// attempted even if one fails.
func (w *Workflow) finalize(ctx context.Context, s *Session, result *RunResult) error {
	var errs []error

	if w.opts.HTMLPath != "" {
		if err := w.saveHomeHTML(ctx, s); err != nil {
			errs = append(errs, err)
		} else {
			result.HTMLPath = w.opts.HTMLPath
		}
	}

	cookies := sessionCookies(s)
	result.Cookies = cookies
	if w.opts.CookiePath != "" {
		if err := SaveCookies(w.opts.CookiePath, cookies); err != nil {
			errs = append(errs, err)
		} else {
			result.CookiePath = w.opts.CookiePath
			w.logger.Log("Saved %d cookies to %s", len(cookies), w.opts.CookiePath)
		}
	}

	return errors.Join(errs...)
}

func (w *Workflow) saveHomeHTML(ctx context.Context, s *Session) error {
	page, err := ExecuteRequest(ctx, s, http.MethodGet, w.cfg.HomeURL, RequestOptions{})
	if err != nil {
		return fmt.Errorf("failed to re-fetch home page: %w", err)
	}
	if err := os.WriteFile(w.opts.HTMLPath, []byte(page.Body), 0644); err != nil {
		return fmt.Errorf("failed to write html file: %w", err)
	}
	return nil
}
