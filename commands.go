package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const workerStaggerDelay = 50 * time.Millisecond

var (
	logFile  string
	verbose  bool
	clientID string
	proxy    string

	zapLog  *zap.Logger
	logSink *os.File
	modLog  Logger
	printer = NewPrinter(os.Stdout)
)

func Execute() error {
	root := &cobra.Command{
		Use:           "amzcookie",
		Short:         "Generate Amazon session cookies with a chosen delivery location",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zl, f, err := setupLogging(logFile, verbose)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			zapLog, logSink = zl, f
			modLog = newModuleLogger(zl)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeLogging()
		},
	}

	root.PersistentFlags().StringVar(&logFile, "log-file", GetLogFile(), "log file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging (includes tls-client)")
	root.PersistentFlags().StringVar(&clientID, "client", "", "tls-client profile identifier (default "+GetClientIdentifier()+")")
	root.PersistentFlags().StringVar(&proxy, "proxy", GetProxyURL(), "proxy URL for single runs")

	root.AddCommand(generateCmd(), batchCmd(), verifyCmd())

	err := root.Execute()
	if err != nil {
		closeLogging()
		printer.Error("Error", err)
	}
	return err
}

func closeLogging() {
	if zapLog != nil {
		_ = zapLog.Sync()
		zapLog = nil
	}
	if logSink != nil {
		logSink.Close()
		logSink = nil
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func configFor(locale, country string) Config {
	cfg := NewConfig(locale, country)
	if clientID != "" {
		cfg.ClientIdentifier = clientID
	}
	return cfg
}

func generateCmd() *cobra.Command {
	var (
		cookiePath string
		htmlPath   string
		locale     string
		country    string
		selection  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the location-change workflow once and save the cookies",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := ParseSelectionPolicy(selection)
			if err != nil {
				return err
			}

			cfg := configFor(locale, country)
			session, err := NewSessionForConfig(cfg, proxy, modLog, zapLog)
			if err != nil {
				return err
			}
			modLog.Log("Storefront %s via %s (%s)", cfg.HomeURL, proxyDisplay(proxy), cfg.ClientIdentifier)

			ctx, cancel := signalContext()
			defer cancel()

			wf := NewWorkflow(cfg, session, WorkflowOptions{CookiePath: cookiePath, HTMLPath: htmlPath}, modLog)
			result, err := wf.Run(ctx, policy.Select(cfg))
			printer.RunResult(result)
			if err != nil {
				if stage := FailedStage(err); stage != "" {
					printer.Field("Failed Stage", stage)
				}
				if code := StatusCodeOf(err); code != 0 {
					printer.Field("HTTP Status Code", code)
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cookiePath, "cookies", "cookies.json", "where to write the cookie jar")
	cmd.Flags().StringVar(&htmlPath, "html", "TEST.html", "where to write the home page after the change (empty to skip)")
	cmd.Flags().StringVar(&locale, "locale", "DE", "storefront locale, e.g. DE or CO.UK")
	cmd.Flags().StringVar(&country, "country", "CN", "country code to deliver to")
	cmd.Flags().StringVar(&selection, "selection", string(SelectionCountry), "location payload: country, zip or auto")
	return cmd
}

func batchCmd() *cobra.Command {
	var (
		targetsPath string
		proxiesPath string
		workerCount int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run the workflow for every target in a file, concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := LoadTargets(targetsPath)
			if err != nil {
				return err
			}

			var proxyManager *ProxyManager
			if proxiesPath != "" {
				proxyManager, err = NewProxyManager(proxiesPath)
				if err != nil {
					return err
				}
				modLog.Log("Loaded %d proxies", proxyManager.Count())
			}

			factory := func(cfg Config, logger Logger) (*Session, error) {
				if clientID != "" {
					cfg.ClientIdentifier = clientID
				}
				proxyURL := proxy
				if proxyManager != nil {
					var display string
					proxyURL, display = proxyManager.Random()
					logger.Log("Using proxy: %s", display)
				}
				return NewSessionForConfig(cfg, proxyURL, logger, zapLog)
			}

			ctx, cancel := signalContext()
			defer cancel()

			modLog.Log("Starting %d workers for %d targets...", workerCount, len(targets))
			scheduler := NewScheduler(workerCount, factory, workerStaggerDelay, modLog)
			scheduler.Start(ctx)

			go func() {
				defer scheduler.Close()
				for _, t := range targets {
					if err := scheduler.Submit(ctx, t); err != nil {
						modLog.Log("Stopped queueing targets: %v", err)
						return
					}
				}
			}()

			failed := 0
			for res := range scheduler.Results() {
				printer.Field("Target", fmt.Sprintf("%s [%s]", res.Target, res.JobID))
				if res.Error != nil {
					printer.Error("Error", res.Error)
					if !IsFinalizeError(res.Error) {
						failed++
						continue
					}
				}
				printer.Success(res.Result.AddressUpdated)
				if res.Result.CookiePath != "" {
					printer.Field("Cookies Path", res.Result.CookiePath)
				}
			}

			if err := ctx.Err(); err != nil {
				return fmt.Errorf("batch interrupted: %w", err)
			}
			modLog.Log("=== Complete: %d/%d targets succeeded ===", len(targets)-failed, len(targets))
			if failed > 0 {
				return errors.New("one or more targets failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&targetsPath, "targets", "targets.txt", "targets file (locale,country[,selection[,cookiePath]])")
	cmd.Flags().StringVar(&proxiesPath, "proxies", "", "proxy list; each target picks one at random")
	cmd.Flags().IntVar(&workerCount, "workers", 4, "concurrent workflow runs")
	return cmd
}

func verifyCmd() *cobra.Command {
	var (
		cookiePath string
		locale     string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Load a cookie file into a fresh session and check the storefront location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFor(locale, "")
			session, err := NewSessionForConfig(cfg, proxy, modLog, zapLog)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			res, err := VerifyCookies(ctx, session, cfg, cookiePath)
			if err != nil {
				return err
			}
			printer.Field("HTTP Status Code", res.StatusCode)
			printer.Field("Cookies Loaded", res.CookieCount)
			printer.Field("Body Length", res.BodyLength)
			printer.Field("Location", res.LocationLine)
			return nil
		},
	}

	cmd.Flags().StringVar(&cookiePath, "cookies", "cookies.json", "cookie file to load")
	cmd.Flags().StringVar(&locale, "locale", "DE", "storefront locale to check against")
	return cmd
}
