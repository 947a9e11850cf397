package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"fortunecookie/internal/gesture"
	"fortunecookie/internal/gesture/replay"
	"fortunecookie/internal/services/crack"
)

func gestureCmd() *cobra.Command {
	var (
		tracePath   string
		archetype   string
		metricsAddr string
		stay        bool
	)
	cmd := &cobra.Command{
		Use:   "gesture",
		Short: "Crack cookies by pulling two hands apart",
		Long: "Hold both hands close together, then pull them apart quickly to crack a cookie.\n" +
			"Frames come from a recorded YAML trace (--trace).",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			log := appCtx.Log.With("component", "gesture")

			choose, err := chooser(archetype)
			if err != nil {
				return err
			}
			src, err := replay.Load(tracePath)
			if err != nil {
				return err
			}
			signer, err := appCtx.OptionalSigner()
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				srv, err := serveMetrics(metricsAddr)
				if err != nil {
					return err
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				log.Info("serving metrics", "addr", metricsAddr)
			}

			d := appCtx.Dispatcher(signer, choose, func(v crack.View) {
				switch {
				case v.Loading:
					fmt.Fprintln(out, "Cracking...")
				case v.LastError != "":
					fmt.Fprintln(out, v.LastError)
				default:
					printFortune(cmd, v)
				}
			})
			engine := gesture.New(src, src.Camera(), appCtx.Config.Gesture.Engine(),
				gesture.WithLogger(log),
				gesture.OnTrigger(func() {
					if !d.Go(ctx) {
						log.Debug("trigger ignored, crack in flight")
					}
				}),
				gesture.OnState(func(s gesture.State, err error) {
					if err != nil {
						fmt.Fprintln(out, gesture.Diagnostic(err))
						return
					}
					fmt.Fprintf(out, "Gesture: %s\n", s)
				}),
			)

			engine.Enable(ctx)
			select {
			case <-ctx.Done():
			case <-engine.Done():
			case <-finished(src, stay):
			}
			sessionErr := engine.Err()
			engine.Disable()
			d.Wait()

			if sessionErr != nil {
				return sessionErr
			}
			if v := d.View(); v.LastError != "" && v.Fortune == nil {
				return errors.New(v.LastError)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tracePath, "trace", "", "YAML trace to replay as camera input")
	cmd.Flags().StringVar(&archetype, "archetype", "random", "degen, builder, vc, founder or random")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&stay, "stay", false, "keep running after the trace ends")
	_ = cmd.MarkFlagRequired("trace")
	return cmd
}

// finished is closed when the trace ends, or never when stay is set.
func finished(src *replay.Source, stay bool) <-chan struct{} {
	if stay {
		return nil
	}
	return src.Finished()
}

func serveMetrics(addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	return srv, nil
}
