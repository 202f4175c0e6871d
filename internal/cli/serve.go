package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	grpcapi "github.com/VillageChief/codescan-sfdx/internal/api/grpc"
	"github.com/VillageChief/codescan-sfdx/internal/api/rest"
	"github.com/VillageChief/codescan-sfdx/internal/temporal"
)

const (
	healthProbeInterval = 15 * time.Second
	shutdownTimeout     = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API and gRPC health service",
	Long: `Starts a REST API for starting, awaiting and cancelling quality gate checks on the
Temporal worker, and a gRPC health service reporting whether Temporal is reachable.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	temporalClient, err := temporal.NewClient(cfg.Temporal.Address, cfg.Temporal.Namespace, cfg.Temporal.TaskQueue, logger)
	if err != nil {
		return err
	}
	defer temporalClient.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, temporalClient, cfg.Server.RESTPort, cfg.Server.GRPCPort, logger)
}

// backend is what the servers need from the Temporal client
type backend interface {
	rest.Checks
	Ping(ctx context.Context) error
}

func newRouter(checks rest.Checks, logger *zap.Logger) http.Handler {
	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		rest.NewHandler(checks, logger).RegisterRoutes(r)
	})
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return router
}

func serve(ctx context.Context, b backend, restPort, grpcPort string, logger *zap.Logger) error {
	restServer := &http.Server{
		Addr:              ":" + restPort,
		Handler:           newRouter(b, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcAddr := ":" + grpcPort
	grpcListener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	healthServer := grpcapi.NewServer(b.Ping, logger)
	grpcSrv := grpc.NewServer()
	healthServer.Register(grpcSrv)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting REST API server", zap.String("address", restServer.Addr))
		if err := restServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("REST server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("starting gRPC server", zap.String("address", grpcAddr))
		if err := grpcSrv.Serve(grpcListener); err != nil {
			return fmt.Errorf("gRPC server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := healthServer.Monitor(ctx, healthProbeInterval); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		healthServer.Shutdown()
		grpcSrv.GracefulStop()
		if err := restServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down REST server: %w", err)
		}
		logger.Info("shutdown complete")
		return nil
	})

	return g.Wait()
}
