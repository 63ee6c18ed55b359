package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultNetwork   = "sepolia"
	defaultAlgorithm = "fastest"
	defaultLogLevel  = "info"

	configFile  = "config.json"
	walletsFile = "wallets.json"
	envFile     = ".env"

	// DeployedContractAddress is the lending contract used when no address is configured.
	DeployedContractAddress = "0xbd312e3bddeb5e299126faaf610cf0c989e9c625"
)

// ErrInvalidAddress is returned by Validate for a malformed contract address.
var ErrInvalidAddress = errors.New("invalid address")

// envBindings maps config keys to the environment variables that set them,
// in priority order. The NUXT_ names keep .env files of the web front-end usable.
var envBindings = map[string][]string{
	"my_secret":                       {"NFTLEND_MY_SECRET", "MY_SECRET", "NUXT_MY_SECRET"},
	"public.client_id":                {"NFTLEND_PUBLIC_CLIENT_ID", "NUXT_PUBLIC_THIRDWEB_CLIENT_ID"},
	"public.contract_address":         {"NFTLEND_PUBLIC_CONTRACT_ADDRESS", "NUXT_PUBLIC_CONTRACT_ADDRESS"},
	"public.payment_contract_address": {"NFTLEND_PUBLIC_PAYMENT_CONTRACT_ADDRESS", "NUXT_PUBLIC_PAYMENT_CONTRACT_ADDRESS"},
	"public.buy_contract_address":     {"NFTLEND_PUBLIC_BUY_CONTRACT_ADDRESS", "NUXT_PUBLIC_BUY_CONTRACT_ADDRESS"},
	"network":                         {"NFTLEND_NETWORK"},
	"rpc_algorithm":                   {"NFTLEND_RPC_ALGORITHM"},
	"default_wallet":                  {"NFTLEND_DEFAULT_WALLET"},
	"log_level":                       {"NFTLEND_LOG_LEVEL"},
}

// Load reads config from dir (or creates defaults). dir defaults to ~/.nftlend.
//
// Sources are layered: defaults, then config.json in dir, then .env files
// (dir first, then the working directory), then the process environment.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".nftlend")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	v.SetDefault("network", defaultNetwork)
	v.SetDefault("rpc_algorithm", defaultAlgorithm)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("custom_rpcs", map[string][]string{})

	v.SetConfigFile(filepath.Join(dir, configFile))
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	dotenv, err := readDotEnv(filepath.Join(dir, envFile), envFile)
	if err != nil {
		return nil, err
	}
	applyDotEnv(v, dotenv)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir
	if envSet(envBindings["my_secret"]) || dotenvHas(dotenv, envBindings["my_secret"]) {
		cfg.envSecret = cfg.Secret
	}
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	return cfg, nil
}

// Save writes the config to disk. A secret that came from the environment is
// not written.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	out := *c
	if out.envSecret != "" && out.Secret == out.envSecret {
		out.Secret = ""
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Validate checks that configured contract addresses are well formed.
func (c *Config) Validate() error {
	var errs []error
	for name, addr := range map[string]string{
		"contract_address":         c.Public.ContractAddress,
		"payment_contract_address": c.Public.PaymentContractAddress,
		"buy_contract_address":     c.Public.BuyContractAddress,
	} {
		if addr != "" && !common.IsHexAddress(addr) {
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalidAddress, name, addr))
		}
	}
	return errors.Join(errs...)
}

// ContractAddress returns the configured lending contract, or the deployed one.
func (c *Config) ContractAddress() string {
	if c.Public.ContractAddress == "" {
		return DeployedContractAddress
	}
	return c.Public.ContractAddress
}

// Set updates a single key by its config name (e.g. "public.client_id").
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "my_secret":
		c.Secret = value
	case "public.client_id", "client_id":
		c.Public.ClientID = value
	case "public.contract_address", "contract_address":
		c.Public.ContractAddress = value
	case "public.payment_contract_address", "payment_contract_address":
		c.Public.PaymentContractAddress = value
	case "public.buy_contract_address", "buy_contract_address":
		c.Public.BuyContractAddress = value
	case "network":
		c.Network = value
	case "rpc_algorithm":
		switch value {
		case "fastest", "round-robin", "failover":
		default:
			return fmt.Errorf("unknown rpc algorithm %q (fastest, round-robin, failover)", value)
		}
		c.RPCAlgorithm = value
	case "default_wallet":
		c.DefaultWallet = value
	case "log_level":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return c.Validate()
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chain, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chain], url) {
		return fmt.Errorf("RPC %s already exists for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = append(c.CustomRPCs[chain], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chain, url string) error {
	rpcs := c.CustomRPCs[chain]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a chain.
func (c *Config) GetRPCs(chain string) []string {
	return c.CustomRPCs[chain]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// --- helpers ---

// readDotEnv merges the given .env files; earlier files win. Missing files are skipped.
func readDotEnv(paths ...string) (map[string]string, error) {
	out := make(map[string]string)
	for _, p := range paths {
		vals, err := godotenv.Read(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		for k, val := range vals {
			if _, ok := out[k]; !ok {
				out[k] = val
			}
		}
	}
	return out, nil
}

// applyDotEnv sets values from a .env file for keys the process environment
// leaves unset, so real environment variables keep precedence.
func applyDotEnv(v *viper.Viper, dotenv map[string]string) {
	for key, names := range envBindings {
		if envSet(names) {
			continue
		}
		for _, name := range names {
			if val, ok := dotenv[name]; ok {
				v.Set(key, val)
				break
			}
		}
	}
}

func dotenvHas(dotenv map[string]string, names []string) bool {
	for _, name := range names {
		if _, ok := dotenv[name]; ok {
			return true
		}
	}
	return false
}

func envSet(names []string) bool {
	for _, name := range names {
		if _, ok := os.LookupEnv(name); ok {
			return true
		}
	}
	return false
}
