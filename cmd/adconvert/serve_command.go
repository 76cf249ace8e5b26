package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"adconvert/internal/advisor"
	"adconvert/internal/logging"
	"adconvert/internal/webui"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local web interface until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Paths.APIBind = bind
			}
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			runCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			controller, _ := newController(cfg, logger)
			defer func() {
				if err := controller.Close(); err != nil {
					logger.Warn("engine close failed", logging.Error(err))
				}
			}()

			server, err := webui.New(webui.Options{
				Config:     cfg,
				Controller: controller,
				Advisor:    advisor.NewFromConfig(cfg, logger),
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			if err := server.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "adconvert listening on http://%s (Ctrl+C to stop)\n", server.Addr())

			<-runCtx.Done()
			logger.Info("shutting down")
			server.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override paths.api_bind (host:port)")
	return cmd
}
