package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fortunecookie/internal/services/crack"
)

func initStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-stats",
		Short: "Create the global stats account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := appCtx.Signer()
			if err != nil {
				return err
			}
			d := appCtx.Dispatcher(signer, nil, nil)
			if err := d.InitializeStats(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", crack.MsgStatsInitFailed, err)
			}
			v := d.View()
			if v.TotalKnown {
				fmt.Fprintf(cmd.OutOrStdout(), "Stats account ready. Cookies opened: %d\n", v.Total)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Stats account ready.")
			}
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print how many cookies have been opened",
		RunE: func(cmd *cobra.Command, args []string) error {
			ready, err := appCtx.Stats.Ready(cmd.Context())
			if err != nil {
				return err
			}
			if !ready {
				fmt.Fprintln(cmd.OutOrStdout(), crack.MsgStatsNotReady)
				return nil
			}
			total, ok := appCtx.Stats.Refresh(cmd.Context())
			if !ok {
				return errors.New("could not read the stats account")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cookies opened: %d\n", total)
			return nil
		},
	}
}

func crackCmd() *cobra.Command {
	var archetype string
	cmd := &cobra.Command{
		Use:   "crack",
		Short: "Open the next cookie and print its fortune",
		RunE: func(cmd *cobra.Command, args []string) error {
			choose, err := chooser(archetype)
			if err != nil {
				return err
			}
			signer, err := appCtx.OptionalSigner()
			if err != nil {
				return err
			}
			v, _ := appCtx.Dispatcher(signer, choose, nil).Crack(cmd.Context())
			if v.LastError != "" {
				return errors.New(v.LastError)
			}
			printFortune(cmd, v)
			return nil
		},
	}
	cmd.Flags().StringVar(&archetype, "archetype", "random", "degen, builder, vc, founder or random")
	return cmd
}
