package cmd

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/BasilOkoth/digitest/api"
	"github.com/BasilOkoth/digitest/internal/config"
	"github.com/BasilOkoth/digitest/internal/util"
	"github.com/BasilOkoth/digitest/origin"
	"github.com/BasilOkoth/digitest/token"
	"github.com/BasilOkoth/digitest/web"
)

var (
	port       int
	selfSigned bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the verification and bot-link server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if port != 0 {
			cfg.Port = port
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		allow, err := origin.NewAllowList(cfg.AllowedOrigins, logger)
		if err != nil {
			return fmt.Errorf("building origin allow-list: %w", err)
		}

		issuer, err := token.NewIssuer(cfg.SigningSecret, cfg.TokenTTL)
		if err != nil {
			return fmt.Errorf("initializing token issuer: %w", err)
		}
		defer issuer.Destroy()
		if cfg.SigningSecret == "" {
			logger.Warn("SIGNING_SECRET not set; verification tokens will not survive a restart")
		}

		a := api.New(cfg, allow, issuer, api.WithLogger(logger))

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		if cfg.Production() {
			r.Use(api.SecurityHeaders)
		}

		r.Mount("/api", a.Router())

		webHandler, err := web.Handler()
		if err != nil {
			return err
		}
		r.Handle("/*", webHandler)

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		useTLS := cfg.TLSCert != "" && cfg.TLSKey != ""
		if useTLS {
			cert, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
			if err != nil {
				return fmt.Errorf("failed to load TLS key pair: %w", err)
			}
			server.TLSConfig = &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			}
		} else if selfSigned {
			cert, err := util.GenerateSelfSignedCert()
			if err != nil {
				return fmt.Errorf("failed to generate self-signed certificate: %w", err)
			}
			server.TLSConfig = &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			}
			useTLS = true
			fmt.Println("Using self-signed runtime generated certificate for TLS")
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			var err error
			if useTLS {
				err = server.ListenAndServeTLS("", "")
			} else {
				err = server.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Starting server on port %d (%s)...\n", cfg.Port, cfg.Environment)
		fmt.Println("Allowed origins:")
		for _, o := range allow.Patterns() {
			fmt.Printf("   * %s\n", o)
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides PORT)")
	serverCmd.Flags().BoolVar(&selfSigned, "self-signed", false, "Serve TLS with a self-signed certificate")
}
