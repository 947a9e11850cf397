package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"fortunecookie/internal/crypto"
	"fortunecookie/internal/domain"
	"fortunecookie/internal/protocol/anchor"
)

func addressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the wallet address and fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := appCtx.Keystore.Address()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Address:     %s\nFingerprint: %s\n", pub, crypto.Fingerprint(pub))
			return nil
		},
	}
}

// derive prints the stats address and the cookie address for a counter.
func deriveCmd() *cobra.Command {
	var (
		owner   string
		counter uint64
		next    bool
	)
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Print program derived addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			program := appCtx.Program

			stats, err := anchor.StatsAddress(program)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Program: %s\nStats:   %s (bump %d)\n", program, stats.Address, stats.Bump)

			var pub domain.PublicKey
			if owner != "" {
				if pub, err = domain.ParsePublicKey(owner); err != nil {
					return fmt.Errorf("--owner: %w", err)
				}
			} else {
				signer, err := appCtx.Signer()
				if err != nil {
					return err
				}
				pub = signer.PublicKey()
			}
			if next {
				if counter, err = appCtx.Counter.NextCounter(cmd.Context(), pub); err != nil {
					return err
				}
			}
			cookie, err := anchor.CookieAddress(program, pub, counter)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Owner:   %s\nCookie:  %s (counter %d, bump %d)\n", pub, cookie.Address, counter, cookie.Bump)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "wallet address (default: the local keypair)")
	cmd.Flags().Uint64Var(&counter, "counter", 0, "cookie sequence counter")
	cmd.Flags().BoolVar(&next, "next", false, "use the owner's next counter from the ledger")
	return cmd
}
