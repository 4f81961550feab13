package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jcaMx/company-extractor-web/internal/api"
	"github.com/jcaMx/company-extractor-web/internal/app"
	"github.com/jcaMx/company-extractor-web/internal/client"
	"github.com/jcaMx/company-extractor-web/internal/web"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction API and the HTML form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.config(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if err := app.ValidateConfig(cfg, true); err != nil {
				return err
			}
			cfg.APIURL = formAPIURL(cfg)
			ctx := cmd.Context()
			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(ctx, cfg, newMux(a, cfg))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", app.DefaultAddr, "Listen address")
	return cmd
}

// newMux mounts the API and the form on one mux. The form reaches the API
// over HTTP at cfg.APIURL, like any other client.
func newMux(a *app.App, cfg app.Config) http.Handler {
	srv := &api.Server{Extractor: a}
	if st := a.Store(); st != nil {
		srv.History = st
	}
	mux := http.NewServeMux()
	srv.Register(mux)
	mux.Handle("/", &web.Handler{Dispatcher: client.New(cfg.APIURL)})
	return api.Middleware(mux)
}

// formAPIURL points the form at this server when the API URL was left at
// its default but the listen address was moved.
func formAPIURL(cfg app.Config) string {
	if cfg.APIURL != client.DefaultBaseURL || cfg.Addr == app.DefaultAddr {
		return cfg.APIURL
	}
	host, port, err := net.SplitHostPort(cfg.Addr)
	if err != nil || port == "" {
		log.Warn().Str("addr", cfg.Addr).Str("api", cfg.APIURL).Msg("cannot derive API URL from listen address; the form may not reach this server")
		return cfg.APIURL
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	derived := "http://" + net.JoinHostPort(host, port)
	log.Info().Str("api", derived).Msg("form API URL follows listen address")
	return derived
}

func serve(ctx context.Context, cfg app.Config, h http.Handler) error {
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("api", cfg.APIURL).Msg("listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}
