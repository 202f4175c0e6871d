package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/VillageChief/codescan-sfdx/internal/config"
	"github.com/VillageChief/codescan-sfdx/internal/publish"
	"github.com/VillageChief/codescan-sfdx/internal/qualitygate"
	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

var checkFlags struct {
	workingDir     string
	serverOverride string
	timeout        time.Duration
	interval       time.Duration
	publish        bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Wait for the analysis and print its quality gate status",
	Long: `Reads report-task.txt from the scanner working directory, polls the analysis task
until it finishes or the timeout passes, then prints the quality gate status JSON.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	defaults := config.DefaultConfig().CodeScan

	checkCmd.Flags().StringVar(&checkFlags.workingDir, "working-dir", defaults.WorkingDir, "scanner working directory containing report-task.txt")
	checkCmd.Flags().StringVar(&checkFlags.serverOverride, "server-override", "", "replace the scheme and host of server URLs, e.g. http://sonar.internal:9000")
	checkCmd.Flags().DurationVar(&checkFlags.timeout, "timeout", defaults.Timeout, "how long to wait for the analysis task")
	checkCmd.Flags().DurationVar(&checkFlags.interval, "interval", defaults.PollInterval, "delay between task status requests")
	checkCmd.Flags().BoolVar(&checkFlags.publish, "publish", false, "publish the verdict to the configured GitHub and Jira targets")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyCheckFlags(cmd.Flags(), cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return check(cmd.Context(), cmd.OutOrStdout(), cfg, checkFlags.publish, http.DefaultClient, logger)
}

// applyCheckFlags overlays flags that were set explicitly, so flags win over the
// environment and the config file.
func applyCheckFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("working-dir") {
		cfg.CodeScan.WorkingDir = checkFlags.workingDir
	}
	if flags.Changed("server-override") {
		cfg.CodeScan.ServerOverride = checkFlags.serverOverride
	}
	if flags.Changed("timeout") {
		cfg.CodeScan.Timeout = checkFlags.timeout
	}
	if flags.Changed("interval") {
		cfg.CodeScan.PollInterval = checkFlags.interval
	}
}

func check(ctx context.Context, out io.Writer, cfg *config.Config, publishVerdict bool, httpClient *http.Client, logger *zap.Logger) error {
	checker := qualitygate.NewChecker(httpClient, logger)

	verdict, err := checker.CheckVerdict(ctx, qualitygate.Options{
		AuthToken:      cfg.CodeScan.Token,
		Deadline:       time.Now().Add(cfg.CodeScan.Timeout),
		WorkingDir:     cfg.CodeScan.WorkingDir,
		PollInterval:   cfg.CodeScan.PollInterval,
		ServerOverride: cfg.CodeScan.ServerOverride,
	})
	if err != nil {
		return err
	}

	data, err := json.Marshal(verdict.Status)
	if err != nil {
		return fmt.Errorf("failed to encode quality gate status: %w", err)
	}
	if _, err := fmt.Fprintln(out, string(data)); err != nil {
		return err
	}

	if publishVerdict {
		publishBestEffort(ctx, cfg, verdict, logger)
	}
	return nil
}

// publishBestEffort sends the verdict to the configured targets. Failures are logged
// and never change the outcome of the check.
func publishBestEffort(ctx context.Context, cfg *config.Config, verdict *types.Verdict, logger *zap.Logger) {
	p, err := publish.FromConfig(cfg, cfg.CodeScan.WorkingDir, logger)
	if err != nil {
		logger.Warn("failed to set up publishing", zap.Error(err))
		return
	}
	if p.Len() == 0 {
		logger.Info("no publish targets configured")
		return
	}
	if err := p.Publish(ctx, verdict); err != nil {
		logger.Warn("failed to publish verdict", zap.Error(err))
	}
}
