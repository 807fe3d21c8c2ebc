package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	RPCURL       string            `envconfig:"RPC_URL" default:"https://bsc-testnet-dataseed.bnbchain.org"`
	ChainID      int64             `envconfig:"CHAIN_ID" default:"0"` // 0 asks the node
	NativeSymbol string            `envconfig:"NATIVE_SYMBOL" default:"BNB"`
	Tokens       map[string]string `envconfig:"TOKENS" default:"USDT:0x787A697324dbA4AB965C58CD33c13ff5eeA6295F,USDC:0x342e3aA1248AB77E319e3331C6fD3f1F2d4B36B1"`

	AccountAPIURL  string  `envconfig:"ACCOUNT_API_URL" default:"https://wallet-backend-ri5i.onrender.com"`
	ExplorerAPIURL string  `envconfig:"EXPLORER_API_URL" default:"https://api-testnet.bscscan.com/api"`
	ExplorerAPIKey string  `envconfig:"EXPLORER_API_KEY" default:"YourApiKeyToken"`
	ExplorerRPS    float64 `envconfig:"EXPLORER_RPS" default:"5"`
	HistoryLimit   int     `envconfig:"HISTORY_LIMIT" default:"20"`
	PriceAPIURL    string  `envconfig:"PRICE_API_URL" default:"https://api.coingecko.com/api/v3"`
	PriceCoinID    string  `envconfig:"PRICE_COIN_ID" default:"binancecoin"`

	SessionBackend  string `envconfig:"SESSION_BACKEND" default:"file"` // file or bolt
	SessionFilePath string `envconfig:"SESSION_FILE_PATH" default:"wallet-session.json"`
	SessionDBPath   string `envconfig:"SESSION_DB_PATH" default:"wallet-session.db"`
	ScryptN         int    `envconfig:"SCRYPT_N" default:"262144"`

	FeeDebounce          time.Duration `envconfig:"FEE_DEBOUNCE" default:"500ms"`
	ConfirmTimeout       time.Duration `envconfig:"CONFIRM_TIMEOUT" default:"5m"`
	ConfirmPoll          time.Duration `envconfig:"CONFIRM_POLL" default:"3s"`
	CancelFeeBumpPercent int64         `envconfig:"CANCEL_FEE_BUMP_PERCENT" default:"20"`
	SendCooldown         time.Duration `envconfig:"SEND_COOLDOWN" default:"0s"` // 0 disables

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads and validates configuration without touching the global instance.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values envconfig cannot check by itself
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case "file", "bolt":
	default:
		return fmt.Errorf("SESSION_BACKEND must be file or bolt, got %q", c.SessionBackend)
	}
	if c.ScryptN < 2 || c.ScryptN&(c.ScryptN-1) != 0 {
		return fmt.Errorf("SCRYPT_N must be a power of two > 1")
	}
	for symbol, addr := range c.Tokens {
		if !ethcommon.IsHexAddress(addr) {
			return fmt.Errorf("token %s has invalid contract address %q", symbol, addr)
		}
		if strings.EqualFold(symbol, c.NativeSymbol) {
			return fmt.Errorf("token %s clashes with the native symbol", symbol)
		}
	}
	if c.CancelFeeBumpPercent < 10 {
		return errors.New("CANCEL_FEE_BUMP_PERCENT must be at least 10 to replace a pending transaction")
	}
	return nil
}

// TokenSymbols returns configured token symbols in a stable order
func (c *Config) TokenSymbols() []string {
	symbols := make([]string, 0, len(c.Tokens))
	for s := range c.Tokens {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// PromptForPassword prompts for a password in the terminal without echo.
// Caller must zero the returned slice after use.
func PromptForPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the tool interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}
