package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSchedulerIsolatesSessions(t *testing.T) {
	dir := t.TempDir()
	targets := []Target{
		{Locale: "DE", CountryCode: "CN", Policy: SelectionCountry, CookiePath: filepath.Join(dir, "de.json")},
		{Locale: "FR", CountryCode: "FR", Policy: SelectionAuto, CookiePath: filepath.Join(dir, "fr.json")},
	}

	var mu sync.Mutex
	clients := map[string]*fakeClient{}
	factory := func(cfg Config, logger Logger) (*Session, error) {
		responses := happyPathResponses()
		responses[0].cookies = append(responses[0].cookies, &http.Cookie{Name: "store", Value: cfg.Locale, Path: "/"})

		c := newFakeClient(t, responses...)
		mu.Lock()
		clients[cfg.Locale] = c
		mu.Unlock()
		return NewSession(c, testBrowserProfile, logger), nil
	}

	s := NewScheduler(2, factory, time.Millisecond, newModuleLogger(zaptest.NewLogger(t)))
	s.Start(context.Background())
	go func() {
		for _, target := range targets {
			assert.NoError(t, s.Submit(context.Background(), target))
		}
		s.Close()
	}()

	results := map[string]TaskResult{}
	for r := range s.Results() {
		results[r.Target.Locale] = r
	}
	require.Len(t, results, 2)

	for _, target := range targets {
		r := results[target.Locale]
		require.NoError(t, r.Error, target.String())
		assert.Len(t, r.JobID, 8)
		assert.True(t, r.Result.AddressUpdated)

		saved, err := LoadCookies(target.CookiePath)
		require.NoError(t, err)
		assert.Equal(t, target.Locale, cookieMap(saved)["store"], "cookie file %s leaked another session", target.CookiePath)
	}

	reqs := clients["FR"].Requests()
	require.Len(t, reqs, 3, "no HTML path, no re-fetch")
	assert.Contains(t, reqs[2].Body, `"zipCode":10115`, "auto policy on FR/FR submits the zip code")
	assert.Equal(t, "www.amazon.fr", reqs[0].URL.Host)
}

func TestSchedulerReportsFailures(t *testing.T) {
	openErr := errors.New("proxy refused")
	factory := func(cfg Config, logger Logger) (*Session, error) {
		if cfg.Locale == "IT" {
			return nil, openErr
		}
		return NewSession(newFakeClient(t, fakeResponse{status: 503, body: "dogs of amazon"}), testBrowserProfile, logger), nil
	}

	s := NewScheduler(0, factory, 0, nil)
	assert.Equal(t, 1, s.WorkerCount())
	dir := t.TempDir()
	s.Start(context.Background())
	go func() {
		_ = s.Submit(context.Background(), Target{Locale: "IT", CountryCode: "CN", Policy: SelectionCountry, CookiePath: filepath.Join(dir, "it.json")})
		_ = s.Submit(context.Background(), Target{Locale: "DE", CountryCode: "CN", Policy: SelectionCountry, CookiePath: filepath.Join(dir, "de.json")})
		s.Close()
	}()

	var got []TaskResult
	for r := range s.Results() {
		got = append(got, r)
	}
	require.Len(t, got, 2)

	assert.ErrorIs(t, got[0].Error, openErr)
	assert.Nil(t, got[0].Result)

	assert.ErrorIs(t, got[1].Error, ErrRequestFailed)
	assert.Equal(t, StageFetchHome, FailedStage(got[1].Error))
	assert.Equal(t, 503, StatusCodeOf(got[1].Error))
}

func TestSchedulerCancelUnblocksFeeder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{}, 1)
	factory := func(cfg Config, logger Logger) (*Session, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}

	s := NewScheduler(1, factory, 0, nil)
	s.Start(ctx)

	submitErr := make(chan error, 1)
	go func() {
		defer s.Close()
		for i := 0; i < 10; i++ {
			if err := s.Submit(ctx, Target{Locale: fmt.Sprintf("L%d", i), CountryCode: "CN", Policy: SelectionCountry}); err != nil {
				submitErr <- err
				return
			}
		}
		submitErr <- nil
	}()

	<-started
	cancel()

	drained := make(chan int)
	go func() {
		n := 0
		for range s.Results() {
			n++
		}
		drained <- n
	}()

	select {
	case n := <-drained:
		assert.LessOrEqual(t, n, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("results channel never closed after cancellation")
	}
	assert.ErrorIs(t, <-submitErr, context.Canceled)
}

func TestSubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScheduler(1, nil, 0, nil)
	assert.ErrorIs(t, s.Submit(ctx, Target{Locale: "DE", CountryCode: "CN"}), context.Canceled)
	s.Close()
	_, open := <-s.Results()
	assert.False(t, open)
}
