package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fortunecookie/internal/app"
	"fortunecookie/internal/domain"
	"fortunecookie/internal/observability/logging"
	"fortunecookie/internal/services/crack"
	"fortunecookie/internal/wallet"
)

var (
	cfgPath    string
	home       string
	passphrase string
	rpcURL     string
	programID  string
	logLevel   string
	confirm    bool
	appCtx     *app.App
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "fortune",
		Short:         "Crack on-chain fortune cookies",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("home") {
				cfg.Home = home
			}
			if flags.Changed("rpc") {
				cfg.RPCURL = rpcURL
			}
			if flags.Changed("program-id") {
				cfg.ProgramID = programID
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
				return err
			}

			log, err := logging.Setup("fortune", logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
			if err != nil {
				return err
			}
			w, err := app.NewWire(cfg, log, &http.Client{Timeout: 30 * time.Second})
			if err != nil {
				return err
			}

			var ask wallet.ConfirmFunc
			if confirm {
				ask = wallet.PromptConfirm(os.Stdin, os.Stderr)
			}
			appCtx = app.New(w, wallet.NewSource(passphrase, wallet.EnvPassphrase), ask)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "config file (default <home>/config.toml)")
	pf.StringVar(&home, "home", "", "config dir (default ~/.fortunecookie)")
	pf.StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the keypair (or FORTUNE_PASSPHRASE)")
	pf.StringVar(&rpcURL, "rpc", "", "ledger JSON-RPC URL")
	pf.StringVar(&programID, "program-id", "", "fortune_cookie program address")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&confirm, "confirm", false, "ask before signing each transaction")

	root.AddCommand(
		initCmd(),
		addressCmd(),
		deriveCmd(),
		initStatsCmd(),
		statsCmd(),
		crackCmd(),
		gestureCmd(),
	)
	return root.ExecuteContext(ctx)
}

// chooser maps --archetype to a crack.Chooser.
func chooser(name string) (crack.Chooser, error) {
	if strings.EqualFold(strings.TrimSpace(name), "random") {
		return crack.Random(), nil
	}
	a, err := domain.ParseArchetype(name)
	if err != nil {
		return nil, err
	}
	return crack.Fixed(a), nil
}

func printFortune(cmd *cobra.Command, v crack.View) {
	out := cmd.OutOrStdout()
	if v.Fortune == nil {
		return
	}
	f := v.Fortune
	fmt.Fprintf(out, "[%s] %s: %s\n", strings.ToUpper(f.Rarity.String()), f.Archetype, f.Text)
	fmt.Fprintf(out, "Cookie:    %s (#%d)\n", f.Receipt.Cookie.Address, f.Receipt.Counter)
	fmt.Fprintf(out, "Signature: %s\n", v.Signature)
	if v.TotalKnown {
		fmt.Fprintf(out, "Cookies opened: %d\n", v.Total)
	}
}
