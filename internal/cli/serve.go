package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/example/workshop-planner/internal/http"
)

func serveCmd(rt *runtime) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				rt.cfg.HTTPPort = port
			}
			return rt.serve(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides PLANNER_HTTP_PORT)")
	return cmd
}

func (rt *runtime) handler() http.Handler {
	return httptransport.NewRouter(httptransport.RouterConfig{
		Catalog:   httptransport.NewCatalogHandler(rt.workshops, rt.logger),
		Workshops: httptransport.NewWorkshopHandler(rt.workshops, rt.logger),
		Library:   httptransport.NewLibraryHandler(rt.library, rt.logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(rt.logger),
			httptransport.Recoverer(rt.logger),
		},
	})
}

func (rt *runtime) serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", rt.cfg.HTTPPort),
		Handler:           rt.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.logger.Info("planner API listening", "addr", server.Addr, "store", rt.cfg.Store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server encountered error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown server: %w", err)
		}
		rt.logger.Info("planner API stopped")
		return nil
	})
	return g.Wait()
}
