// Package cmd wires the command layer onto Cobra: one subcommand per
// verb, a shared PersistentPreRunE that builds the logger, config, and
// Hybrid Client, and a uniform error-to-exit-code mapping.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/command"
	"github.com/kjc-dev/ghhier/internal/config"
	"github.com/kjc-dev/ghhier/internal/graph"
	"github.com/kjc-dev/ghhier/internal/hybrid"
	"github.com/kjc-dev/ghhier/internal/rest"
)

var rootCmd = &cobra.Command{
	Use:   "ghhier",
	Short: "Manage an Epic/Task/Sub-task issue hierarchy on a hosted remote service",
	Long:  "ghhier enforces a typed issue hierarchy, a workflow state machine, and a structural body invariant on top of a remote issue tracker whose native primitives are loose.",

	// Errors are rendered by emit (plain or JSON envelope); Cobra must
	// not print them a second time or dump usage after a remote failure.
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagRepo    string
	flagJSON    bool
	flagVerbose bool
)

// runtime holds everything built once per invocation in
// PersistentPreRunE, torn down in PersistentPostRun.
var runtime struct {
	cmdCtx *command.Context
	repo   command.Repo
	hybrid *hybrid.Client
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRepo, "repo", "", "owner/repo override (default: derived from project_url)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "switch all output, including errors, to a JSON envelope")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if err := setup(c, args); err != nil {
			return emit(nil, err)
		}
		return nil
	}
	rootCmd.PersistentPostRun = teardown
}

func setup(cmd *cobra.Command, _ []string) error {
	level := zapcore.InfoLevel
	if flagVerbose {
		level = zapcore.DebugLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zcfg.Build()
	if err != nil {
		return &apperrors.InternalError{Err: err}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	owner, repoName := cfg.Owner, cfg.Repo
	if flagRepo != "" {
		parts := strings.SplitN(flagRepo, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return &apperrors.RepositoryFormatInvalid{Value: flagRepo}
		}
		owner, repoName = parts[0], parts[1]
	}
	if owner == "" || repoName == "" {
		return &apperrors.RepositoryFormatInvalid{Value: "(none: project_url names a project board; pass --repo)"}
	}

	token, err := config.Token(os.Getenv)
	if err != nil {
		return err
	}

	restClient, err := rest.New(token, "", logger)
	if err != nil {
		return err
	}
	graphClient := graph.New(token, logger)
	if cfg.TimeoutSeconds > 0 {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		restClient.SetTimeout(timeout)
		graphClient.SetTimeout(timeout)
	}
	hybridClient := hybrid.New(restClient, graphClient, logger)

	actor, err := actorName(cmd.Context(), restClient)
	if err != nil {
		return err
	}

	runtime.hybrid = hybridClient
	runtime.repo = command.Repo{Owner: owner, Repo: repoName}
	runtime.cmdCtx = &command.Context{
		Hybrid: hybridClient,
		Config: cfg,
		Log:    logger,
		Actor:  actor,
		Now:    func() string { return time.Now().UTC().Format(time.RFC3339) },
	}
	return nil
}

func teardown(*cobra.Command, []string) {
	if runtime.hybrid != nil {
		runtime.hybrid.Close()
	}
	if runtime.cmdCtx != nil {
		_ = runtime.cmdCtx.Log.Sync()
	}
}

// actorName resolves the audit-log actor from the authenticated
// principal the bearer credential belongs to, not the local OS account
// running the process (the common case in CI/automation is that they
// differ).
func actorName(ctx context.Context, restClient *rest.Client) (string, error) {
	return restClient.AuthenticatedUser(ctx)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return apperrors.ExitSuccess
	}
	var coded apperrors.Coded
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	// Anything uncoded that reaches the root is Cobra's own usage or
	// flag-parse failure: a user error, not a bug of ours. Cobra is
	// silenced, so this is the one place it gets printed.
	fmt.Fprintln(os.Stderr, "error:", err)
	return apperrors.ExitUserError
}

func parseIssueNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil {
		return 0, &apperrors.RepositoryFormatInvalid{Value: s}
	}
	return n, nil
}
