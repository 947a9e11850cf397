package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/ledger/ledgertest"
	"fortunecookie/internal/observability/logging"
	"fortunecookie/internal/protocol/anchor"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr      string
		programID string
		slot      uint64
		confirm   int
		logLevel  string
	)
	cmd := &cobra.Command{
		Use:   "ledger-sim",
		Short: "In-memory ledger running the fortune_cookie program",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.Setup("ledger-sim", logging.Options{Level: logLevel})
			if err != nil {
				return err
			}
			program, err := domain.ParsePublicKey(programID)
			if err != nil {
				return err
			}
			srv := ledgertest.NewServer(program, ledgertest.WithStartSlot(slot), ledgertest.WithLogger(log))
			srv.ConfirmAfter(confirm)

			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           accessLog(log, srv),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpSrv.Shutdown(shutdownCtx)
			}()

			log.Info("ledger-sim listening", "addr", addr, "program", program.String(), "interface", anchor.InterfaceVersion)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8899", "listen address")
	cmd.Flags().StringVar(&programID, "program-id", anchor.DefaultProgramID.String(), "program id to host")
	cmd.Flags().Uint64Var(&slot, "start-slot", 1, "slot the first transaction lands in")
	cmd.Flags().IntVar(&confirm, "confirm-after", 1, "status polls reported as processed before confirmed")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	return cmd
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// accessLog records method, path, remote, status, bytes and duration per request.
func accessLog(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
		)
	})
}
