package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

type Config struct {
	RPCList              []string `mapstructure:"rpc_list"`
	PoolProgram          string   `mapstructure:"pool_program"`
	TokenMetadataProgram string   `mapstructure:"token_metadata_program"`
	FeeRecipient         string   `mapstructure:"fee_recipient"`
	WalletsFile          string   `mapstructure:"wallets_file"`
	Retries              int      `mapstructure:"retries"`
	RetryDelayMs         int      `mapstructure:"retry_delay_ms"`
	ConfirmTimeoutMs     int      `mapstructure:"confirm_timeout_ms"`
	RefreshIntervalMs    int      `mapstructure:"refresh_interval_ms"`
	ComputeUnits         uint32   `mapstructure:"compute_units"`
	PriorityFeeMicroLam  uint64   `mapstructure:"priority_fee_micro_lamports"`
	DebugLogging         bool     `mapstructure:"debug_logging"`
	LogFile              string   `mapstructure:"log_file"`
	OperationsLog        string   `mapstructure:"operations_log"`
}

const (
	// DefaultTokenMetadataProgram is the Metaplex token metadata program,
	// used when token_metadata_program is left unset.
	DefaultTokenMetadataProgram = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"

	DefaultRetries         = 3
	DefaultRetryDelayMs    = 1000
	DefaultConfirmTimeout  = 30000
	DefaultRefreshInterval = 5000
	DefaultWalletsFile     = "wallets.csv"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"retries":             DefaultRetries,
		"retry_delay_ms":      DefaultRetryDelayMs,
		"confirm_timeout_ms":  DefaultConfirmTimeout,
		"refresh_interval_ms": DefaultRefreshInterval,
		"wallets_file":        DefaultWalletsFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

// PoolProgramKey parses the configured pool program address. Validation has
// already checked it, so parse errors cannot occur after LoadConfig.
func (c *Config) PoolProgramKey() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.PoolProgram)
}

// TokenMetadataProgramKey parses the configured metadata program address.
// An unset value falls back to the Metaplex program.
func (c *Config) TokenMetadataProgramKey() solana.PublicKey {
	if c.TokenMetadataProgram == "" {
		return solana.MustPublicKeyFromBase58(DefaultTokenMetadataProgram)
	}
	return solana.MustPublicKeyFromBase58(c.TokenMetadataProgram)
}

func (c *Config) FeeRecipientKey() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.FeeRecipient)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if err := validateKeys(cfg); err != nil {
		return err
	}
	return validateNumericParams(cfg)
}

func validateKeys(cfg *Config) error {
	if cfg.PoolProgram == "" {
		return errors.New("missing pool_program in configuration")
	}
	if _, err := solana.PublicKeyFromBase58(cfg.PoolProgram); err != nil {
		return errors.New("invalid pool_program address")
	}
	if cfg.TokenMetadataProgram != "" {
		if _, err := solana.PublicKeyFromBase58(cfg.TokenMetadataProgram); err != nil {
			return errors.New("invalid token_metadata_program address")
		}
	}
	if cfg.FeeRecipient == "" {
		return errors.New("missing fee_recipient in configuration")
	}
	if _, err := solana.PublicKeyFromBase58(cfg.FeeRecipient); err != nil {
		return errors.New("invalid fee_recipient address")
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.RetryDelayMs <= 0 {
		return errors.New("invalid retry_delay_ms")
	}
	if cfg.ConfirmTimeoutMs <= 0 {
		return errors.New("invalid confirm_timeout_ms")
	}
	if cfg.RefreshIntervalMs <= 0 {
		return errors.New("invalid refresh_interval_ms")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}

	envWallets := v.GetString("WALLETS_FILE")
	if envWallets != "" {
		cfg.WalletsFile = envWallets
	}
	return nil
}
