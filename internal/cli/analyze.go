package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/prdigest/internal/aggregate"
	"github.com/dshills/prdigest/internal/analyze"
	"github.com/dshills/prdigest/internal/config"
	"github.com/dshills/prdigest/internal/filter"
	"github.com/dshills/prdigest/internal/log"
	"github.com/dshills/prdigest/internal/output"
	"github.com/dshills/prdigest/internal/pr"
	"github.com/dshills/prdigest/internal/provider"
)

var (
	flagMaxFiles    int
	flagExclude     string
	flagConcurrency int
	flagFormat      string
	flagOut         string
	flagPrompt      bool
	flagTimeout     int
	flagToken       string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <owner/repo> <pr-number>",
	Short: "Fetch and analyze a pull request",
	Long: `Fetch a pull request's metadata, changed files (with before/after
content), commits and reviews; apply configured filtering; and emit a
report or an analysis prompt dump.

The pull request may also be given as a single URL:

  prdigest analyze https://github.com/owner/repo/pull/123`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := parseRefArgs(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg, err := config.Load(cwd, buildOverrides())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}
		log.Init(cfg.LogLevel)

		token := flagToken
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GitHub token required. Provide via --token flag or GITHUB_TOKEN env var.")
			exitCode = ExitAuthError
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		clientOpts := []provider.Option{
			provider.WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
			provider.WithRetry(cfg.RetryAttempts, 0),
		}
		if apiURL := os.Getenv("GITHUB_API_URL"); apiURL != "" {
			clientOpts = append(clientOpts, provider.WithBaseURL(apiURL))
		}
		client := provider.NewGitHub(token, clientOpts...)

		log.Info("fetching pull request", "ref", ref.String(), "concurrency", cfg.Concurrency)
		rec, err := aggregate.New(client, cfg.Concurrency).Fetch(ctx, ref)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = exitCodeFor(err)
			return nil
		}
		log.Info("snapshot assembled",
			"files", rec.Derived.TotalFiles,
			"commits", rec.Derived.TotalCommits,
			"reviews", rec.Derived.TotalReviews,
		)

		opts, err := filter.Compile(cfg.MaxFiles, cfg.ExcludePatterns)
		if err != nil {
			// Patterns were validated at config load; reaching this is a bug.
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		filtered := filter.Apply(rec, opts)
		if dropped := rec.Derived.TotalFiles - filtered.Derived.TotalFiles; dropped > 0 {
			log.Info("filtered file list", "kept", filtered.Derived.TotalFiles, "dropped", dropped)
		}

		if cfg.Mode == config.ModePrompt || flagPrompt {
			if err := output.WritePrompt(filtered, flagOut); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing prompt dump: %v\n", err)
				exitCode = ExitRuntimeError
			}
			return nil
		}

		findings, err := newAnalyzer().Analyze(ctx, filtered)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = exitCodeFor(err)
			return nil
		}

		report := analyze.NewReport(version, filtered, findings)
		if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&flagMaxFiles, "max-files", 0, "Truncate the file list to the first N entries (0 = no limit)")
	analyzeCmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude filename regex patterns (comma-separated)")
	analyzeCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Maximum in-flight content requests")
	analyzeCmd.Flags().StringVar(&flagFormat, "format", "", "Report format (markdown, json)")
	analyzeCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().BoolVar(&flagPrompt, "prompt", false, "Dump the analysis prompt and raw record instead of a report")
	analyzeCmd.Flags().IntVar(&flagTimeout, "timeout", 0, "Per-request timeout in seconds")
	analyzeCmd.Flags().StringVar(&flagToken, "token", "", "GitHub token (or use GITHUB_TOKEN env var)")
}

// newAnalyzer returns the configured analysis backend. Only the
// placeholder exists for now; the interface is the extension point.
func newAnalyzer() analyze.Analyzer {
	return analyze.Placeholder{}
}

// parseRefArgs accepts "owner/repo N", "owner/repo#N", or a full PR URL.
func parseRefArgs(args []string) (pr.Ref, error) {
	switch len(args) {
	case 2:
		number, err := strconv.Atoi(args[1])
		if err != nil {
			return pr.Ref{}, pr.Errorf(pr.KindInvalidReference, "invalid pull request number %q", args[1])
		}
		return pr.ParseRef(args[0], number)
	case 1:
		arg := args[0]
		if strings.Contains(arg, "github.com/") {
			return pr.ParseURL(arg)
		}
		repoSpec, numStr, ok := strings.Cut(arg, "#")
		if !ok {
			return pr.Ref{}, pr.Errorf(pr.KindInvalidReference, "expected owner/repo#number or a pull request URL, got %q", arg)
		}
		number, err := strconv.Atoi(numStr)
		if err != nil {
			return pr.Ref{}, pr.Errorf(pr.KindInvalidReference, "invalid pull request number %q", numStr)
		}
		return pr.ParseRef(repoSpec, number)
	default:
		return pr.Ref{}, pr.Errorf(pr.KindInvalidReference, "expected a pull request reference")
	}
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagMaxFiles > 0 {
		m["maxFiles"] = strconv.Itoa(flagMaxFiles)
	}
	if flagExclude != "" {
		m["exclude"] = flagExclude
	}
	if flagConcurrency > 0 {
		m["concurrency"] = strconv.Itoa(flagConcurrency)
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagPrompt {
		m["mode"] = config.ModePrompt
	}
	if flagTimeout > 0 {
		m["timeout"] = strconv.Itoa(flagTimeout)
	}
	return m
}

// exitCodeFor maps a classified pipeline error onto an exit code.
func exitCodeFor(err error) int {
	switch pr.KindOf(err) {
	case pr.KindInvalidReference:
		return ExitUsageError
	case pr.KindUnauthorized:
		return ExitAuthError
	case pr.KindNotFound:
		return ExitNotFound
	default:
		return ExitRuntimeError
	}
}
