package cli

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/VillageChief/codescan-sfdx/internal/activities"
	"github.com/VillageChief/codescan-sfdx/internal/config"
	"github.com/VillageChief/codescan-sfdx/internal/publish"
	"github.com/VillageChief/codescan-sfdx/internal/qualitygate"
	"github.com/VillageChief/codescan-sfdx/internal/temporal/workflows"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a Temporal worker that executes quality gate checks",
	Args:  cobra.NoArgs,
	RunE:  runWorker,
}

func runWorker(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Address,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		logger.Error("failed to create temporal client", zap.Error(err))
		return err
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	registerWorker(w, cfg, logger)

	logger.Info("starting worker",
		zap.String("task_queue", cfg.Temporal.TaskQueue),
		zap.String("namespace", cfg.Temporal.Namespace),
	)

	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("worker failed", zap.Error(err))
		return err
	}

	logger.Info("worker stopped")
	return nil
}

func registerWorker(w worker.Registry, cfg *config.Config, logger *zap.Logger) {
	checker := qualitygate.NewChecker(http.DefaultClient, logger)
	acts := activities.NewActivities(checker, cfg.CodeScan.Token, activities.Defaults{
		Timeout:      cfg.CodeScan.Timeout,
		PollInterval: cfg.CodeScan.PollInterval,
	}, func(workingDir string) (*publish.Publisher, error) {
		return publish.FromConfig(cfg, workingDir, logger)
	}, logger)

	w.RegisterWorkflow(workflows.QualityGateWorkflow)
	w.RegisterActivity(acts)
}
