package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/gesture"
	"fortunecookie/internal/observability/logging"
	"fortunecookie/internal/protocol/anchor"
)

// EnvPrefix is prepended to every environment override, e.g. FORTUNE_RPC_URL.
const EnvPrefix = "FORTUNE_"

// ConfigFile is the file name looked up inside Home when no path is given.
const ConfigFile = "config.toml"

// Config holds runtime wiring options for building the app. Values come
// from defaults, then the TOML file, then the environment, then flags.
type Config struct {
	Home           string        `toml:"home" env:"HOME"`                       // e.g. $HOME/.fortunecookie
	RPCURL         string        `toml:"rpc_url" env:"RPC_URL"`                 // ledger JSON-RPC endpoint
	ProgramID      string        `toml:"program_id" env:"PROGRAM_ID"`           // base58 program address
	Commitment     string        `toml:"commitment" env:"COMMITMENT"`           // processed, confirmed or finalized
	ConfirmTimeout time.Duration `toml:"confirm_timeout" env:"CONFIRM_TIMEOUT"` // give up waiting for confirmation
	PollInterval   time.Duration `toml:"poll_interval" env:"POLL_INTERVAL"`     // signature status polling
	RPCRateLimit   float64       `toml:"rpc_rate_limit" env:"RPC_RATE_LIMIT"`   // requests per second, 0 disables
	RPCBurst       int           `toml:"rpc_burst" env:"RPC_BURST"`
	FortunesPath   string        `toml:"fortunes_path" env:"FORTUNES_PATH"` // empty uses the embedded pool
	LogLevel       string        `toml:"log_level" env:"LOG_LEVEL"`
	LogFile        string        `toml:"log_file" env:"LOG_FILE"`

	Gesture GestureConfig `toml:"gesture" envPrefix:"GESTURE_"`
}

// GestureConfig is the [gesture] table.
type GestureConfig struct {
	InitTimeout   time.Duration `toml:"init_timeout" env:"INIT_TIMEOUT"`
	CameraTimeout time.Duration `toml:"camera_timeout" env:"CAMERA_TIMEOUT"`
	Low           float64       `toml:"low" env:"LOW"`
	High          float64       `toml:"high" env:"HIGH"`
	Refractory    time.Duration `toml:"refractory" env:"REFRACTORY"`
	FrameInterval time.Duration `toml:"frame_interval" env:"FRAME_INTERVAL"`
}

// Engine converts the table into engine settings.
func (g GestureConfig) Engine() gesture.Config {
	return gesture.Config{
		InitTimeout:   g.InitTimeout,
		CameraTimeout: g.CameraTimeout,
		FrameInterval: g.FrameInterval,
		Low:           g.Low,
		High:          g.High,
		Refractory:    g.Refractory,
	}
}

// DefaultConfig returns a local-development configuration.
func DefaultConfig() Config {
	g := gesture.DefaultConfig()
	return Config{
		RPCURL:         "http://127.0.0.1:8899",
		ProgramID:      anchor.DefaultProgramID.String(),
		Commitment:     string(domain.CommitmentConfirmed),
		ConfirmTimeout: 60 * time.Second,
		PollInterval:   500 * time.Millisecond,
		RPCRateLimit:   10,
		RPCBurst:       5,
		LogLevel:       "info",
		Gesture: GestureConfig{
			InitTimeout:   g.InitTimeout,
			CameraTimeout: g.CameraTimeout,
			Low:           g.Low,
			High:          g.High,
			Refractory:    g.Refractory,
			FrameInterval: g.FrameInterval,
		},
	}
}

// DefaultHome is ~/.fortunecookie.
func DefaultHome() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".fortunecookie"), nil
}

// LoadConfig layers the TOML file at path and the environment over the
// defaults. A missing file is not an error when path is empty; the file is
// then looked up as Home/config.toml.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		home := os.Getenv(EnvPrefix + "HOME")
		if home == "" {
			var err error
			if home, err = DefaultHome(); err != nil {
				return Config{}, err
			}
		}
		path = filepath.Join(home, ConfigFile)
	}
	if err := decodeFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Home == "" {
		home, err := DefaultHome()
		if err != nil {
			return Config{}, err
		}
		cfg.Home = home
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate rejects settings the app cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.RPCURL) == "" {
		errs = append(errs, errors.New("rpc_url is required"))
	}
	if _, err := domain.ParsePublicKey(c.ProgramID); err != nil {
		errs = append(errs, fmt.Errorf("program_id: %w", err))
	}
	switch domain.Commitment(c.Commitment) {
	case domain.CommitmentProcessed, domain.CommitmentConfirmed, domain.CommitmentFinalized:
	default:
		errs = append(errs, fmt.Errorf("commitment %q is not processed, confirmed or finalized", c.Commitment))
	}
	if c.ConfirmTimeout <= 0 {
		errs = append(errs, errors.New("confirm_timeout must be positive"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("poll_interval must be positive"))
	}
	if c.RPCRateLimit < 0 {
		errs = append(errs, errors.New("rpc_rate_limit must not be negative"))
	}
	if c.RPCRateLimit > 0 && c.RPCBurst < 1 {
		errs = append(errs, errors.New("rpc_burst must be at least 1 when rate limiting"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	g := c.Gesture
	if g.InitTimeout <= 0 || g.CameraTimeout <= 0 {
		errs = append(errs, errors.New("gesture timeouts must be positive"))
	}
	if g.Low < 0 || g.Low >= g.High {
		errs = append(errs, fmt.Errorf("gesture thresholds need 0 <= low < high (low=%g high=%g)", g.Low, g.High))
	}
	if g.Refractory < 0 {
		errs = append(errs, errors.New("gesture refractory must not be negative"))
	}
	if g.FrameInterval < 0 {
		errs = append(errs, errors.New("gesture frame_interval must not be negative"))
	}
	return errors.Join(errs...)
}
