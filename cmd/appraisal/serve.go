package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"investment_appraisal/pkg/api"
	apiappraisal "investment_appraisal/pkg/api/appraisal"
	apiconfig "investment_appraisal/pkg/api/config"
	"investment_appraisal/pkg/core/appraisal"
	"investment_appraisal/pkg/core/insight"
	"investment_appraisal/pkg/models"
)

var serveAddr string

// scenarioAnalyzer is the part of *insight.Analyzer the commands use.
type scenarioAnalyzer interface {
	ScenarioOrUnavailable(ctx context.Context, base models.AppraisalInputs, returnPct, investmentPct appraisal.SensitivityLevel) (models.AppraisalResults, insight.Outcome)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the appraisal HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := newInsightEnv(cfg)
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}

		handler := api.NewRouter(api.RouterOptions{
			Appraisal:   apiappraisal.NewHandler(appraisal.NewMemo(cfg.Insight.MemoSize), env.Analyzer),
			Config:      apiconfig.NewHandler(env.Agents),
			CORSOrigins: cfg.Server.CORSOrigins,
		})
		return serve(ctx, &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		})
	},
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "server listen")
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
