package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"fortunecookie/internal/store"
)

func initCmd() *cobra.Command {
	var importPath string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a signing keypair and store it securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := appCtx.Passphrase()
			if err != nil {
				return err
			}
			if importPath != "" {
				kp, err := store.ImportSolanaKeypair(importPath)
				if err != nil {
					return err
				}
				kp, fp, err := appCtx.Identity.ImportIdentity(pass, kp)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Keypair imported.\nAddress:     %s\nFingerprint: %s\n", kp.Public, fp)
				return nil
			}
			kp, fp, err := appCtx.Identity.GenerateIdentity(pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Keypair created.\nAddress:     %s\nFingerprint: %s\n", kp.Public, fp)
			return nil
		},
	}
	cmd.Flags().StringVar(&importPath, "import", "", "import a Solana CLI keypair file instead of generating one")
	return cmd
}
