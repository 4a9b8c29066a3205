// Package config loads the settings of the wlt tool.
//
// Settings come from YAML or TOML files, merged in order over the
// defaults, then from WEALTH_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/etnz/wealth"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all the settings of a run.
type Config struct {
	Profile   Profile            `yaml:"profile" toml:"profile"`
	Fire      Fire               `yaml:"fire" toml:"fire"`
	Brokers   map[string]Broker  `yaml:"brokers" toml:"brokers"`
	NonEquity map[string]Amount  `yaml:"non_equity" toml:"non_equity"` // fixed assets, in INR
	Verdicts  map[string]Verdict `yaml:"verdicts" toml:"verdicts"`     // by symbol or ISIN
	Paths     Paths              `yaml:"paths" toml:"paths"`
	Quotes    Quotes             `yaml:"quotes" toml:"quotes"`
	Logging   Logging            `yaml:"logging" toml:"logging"`
}

// Profile describes the investor.
type Profile struct {
	Name     string `yaml:"name" toml:"name"`
	Currency string `yaml:"currency" toml:"currency"`
	USDToINR Amount `yaml:"usd_to_inr" toml:"usd_to_inr"`
}

// Fire holds the financial independence target.
type Fire struct {
	TargetAmount Amount `yaml:"target_amount" toml:"target_amount"`
}

// Broker toggles a statement source. A source absent from the
// configuration is enabled.
type Broker struct {
	Enabled *bool `yaml:"enabled" toml:"enabled"`
}

// Verdict is a manual override attached to a holding.
type Verdict struct {
	Verdict  string  `yaml:"verdict" toml:"verdict"`
	Risk     string  `yaml:"risk" toml:"risk"`
	Sector   string  `yaml:"sector" toml:"sector"`
	Note     string  `yaml:"note" toml:"note"`
	Target1Y *Amount `yaml:"target_1y" toml:"target_1y"`
}

// Paths locates inputs and outputs.
type Paths struct {
	Statements string `yaml:"statements" toml:"statements"`
	Snapshot   string `yaml:"snapshot" toml:"snapshot"`
	Prices     string `yaml:"prices" toml:"prices"`
	// PricesPath is the JSONPath of the price map in the prices file.
	PricesPath string `yaml:"prices_path" toml:"prices_path"`
}

// Quotes configures the optional HTTP quote endpoint.
type Quotes struct {
	URL       string  `yaml:"url" toml:"url"`             // with a {symbol} placeholder
	Path      string  `yaml:"path" toml:"path"`           // JSONPath of the price in the response
	RateLimit float64 `yaml:"rate_limit" toml:"rate_limit"` // requests per second
}

// Logging configures the logger.
type Logging struct {
	Level string `yaml:"level" toml:"level"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Profile: Profile{
			Name:     "Investor",
			Currency: wealth.BaseCurrency,
			USDToINR: NewAmount(decimal.RequireFromString("87.50")),
		},
		Fire: Fire{
			TargetAmount: NewAmount(decimal.NewFromInt(100_000_000)),
		},
		Brokers:   map[string]Broker{},
		NonEquity: map[string]Amount{},
		Verdicts:  map[string]Verdict{},
		Paths: Paths{
			Statements: filepath.Join("data", "statements"),
			Snapshot:   filepath.Join("data", "portfolio.json"),
			PricesPath: wealth.DefaultPricePath,
		},
		Quotes: Quotes{
			Path:      "$.price",
			RateLimit: 2,
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads the configuration files in order, later files overriding
// earlier ones, then applies environment overrides and validates the result.
// Missing files are skipped. The format follows the extension: ".toml" is
// TOML, anything else YAML.
func Load(paths ...string) (*Config, error) {
	config := Default()
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := decode(path, data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func decode(path string, data []byte, config *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, config)
	}
	return yaml.Unmarshal(data, config)
}

// applyEnvOverrides applies the WEALTH_* environment variables.
func applyEnvOverrides(config *Config) error {
	if dir := os.Getenv("WEALTH_STATEMENTS_DIR"); dir != "" {
		config.Paths.Statements = dir
	}
	if path := os.Getenv("WEALTH_SNAPSHOT"); path != "" {
		config.Paths.Snapshot = path
	}
	if level := os.Getenv("WEALTH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if rate := os.Getenv("WEALTH_USD_INR"); rate != "" {
		d, err := decimal.NewFromString(strings.TrimSpace(rate))
		if err != nil {
			return fmt.Errorf("invalid WEALTH_USD_INR %q: %w", rate, err)
		}
		config.Profile.USDToINR = NewAmount(d)
	}
	return nil
}

// Validate checks the values that the consolidation relies on.
func (c *Config) Validate() error {
	if cur := strings.ToUpper(c.Profile.Currency); cur != "" && cur != wealth.BaseCurrency {
		return fmt.Errorf("profile.currency %q is not supported, snapshots are in %s", c.Profile.Currency, wealth.BaseCurrency)
	}
	if !c.Profile.USDToINR.Decimal().IsPositive() {
		return fmt.Errorf("profile.usd_to_inr must be positive, got %s", c.Profile.USDToINR)
	}
	if c.Fire.TargetAmount.Decimal().IsNegative() {
		return fmt.Errorf("fire.target_amount must not be negative, got %s", c.Fire.TargetAmount)
	}
	for _, name := range sortedKeys(c.NonEquity) {
		if c.NonEquity[name].Decimal().IsNegative() {
			return fmt.Errorf("non_equity.%s must not be negative, got %s", name, c.NonEquity[name])
		}
	}
	for _, id := range sortedKeys(c.Verdicts) {
		v := c.Verdicts[id]
		switch strings.ToUpper(v.Verdict) {
		case "BUY", "HOLD", "EXIT":
		default:
			return fmt.Errorf("verdicts.%s: verdict must be BUY, HOLD or EXIT, got %q", id, v.Verdict)
		}
	}
	if c.Quotes.URL != "" {
		if !strings.Contains(c.Quotes.URL, "{symbol}") {
			return fmt.Errorf("quotes.url must contain a {symbol} placeholder")
		}
		if c.Quotes.RateLimit <= 0 {
			return fmt.Errorf("quotes.rate_limit must be positive, got %v", c.Quotes.RateLimit)
		}
	}
	return nil
}

// EnabledSources returns the sources to parse among the registered ones:
// every registered source not disabled, plus sources enabled in the
// configuration that are not registered, so that they can be reported.
func (c *Config) EnabledSources(registered []string) []string {
	known := make(map[string]bool, len(registered))
	var enabled []string
	for _, name := range registered {
		known[name] = true
		if b, ok := c.Brokers[name]; ok && b.Enabled != nil && !*b.Enabled {
			continue
		}
		enabled = append(enabled, name)
	}
	for _, name := range sortedKeys(c.Brokers) {
		b := c.Brokers[name]
		if !known[name] && (b.Enabled == nil || *b.Enabled) {
			enabled = append(enabled, name)
		}
	}
	sort.Strings(enabled)
	return enabled
}

// ConsolidateOptions converts the settings into consolidation options.
// Prices, warnings and sources are left to the caller.
func (c *Config) ConsolidateOptions() wealth.ConsolidateOptions {
	opts := wealth.ConsolidateOptions{
		FixedAssets: make(map[string]wealth.Money, len(c.NonEquity)),
		Verdicts:    make(map[string]wealth.Verdict, len(c.Verdicts)),
		FXRates:     map[string]decimal.Decimal{"USD": c.Profile.USDToINR.Decimal()},
		FireTarget:  wealth.M(c.Fire.TargetAmount.Decimal(), wealth.BaseCurrency),
	}
	for name, amount := range c.NonEquity {
		if amount.Decimal().IsZero() {
			continue
		}
		opts.FixedAssets[name] = wealth.M(amount.Decimal(), wealth.BaseCurrency)
	}
	for id, v := range c.Verdicts {
		w := wealth.Verdict{
			Verdict: strings.ToUpper(v.Verdict),
			Risk:    v.Risk,
			Sector:  v.Sector,
			Note:    v.Note,
		}
		if v.Target1Y != nil {
			t := v.Target1Y.Decimal()
			w.Target1Y = &t
		}
		opts.Verdicts[id] = w
	}
	return opts
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
