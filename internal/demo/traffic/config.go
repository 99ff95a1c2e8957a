package traffic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

// Account is a demo login whose session the generator reuses for its asks.
type Account struct {
	Username string
	Password string
}

type Config struct {
	APIBaseURL  string
	APIKey      string
	Accounts    []Account
	BatchSize   int
	Interval    time.Duration
	HTTPTimeout time.Duration
	Seed        int64
}

func DefaultConfig() Config {
	return Config{
		APIBaseURL: "http://localhost:8080",
		Accounts: []Account{
			{Username: "asha", Password: "asha123"},
			{Username: "prof.cse", Password: "faculty123"},
			{Username: "admin", Password: "admin123"},
		},
		BatchSize:   3,
		Interval:    5 * time.Second,
		HTTPTimeout: 60 * time.Second,
		Seed:        time.Now().UTC().UnixNano(),
	}
}

func LoadConfigFromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := DefaultConfig()
	if err := applyString(lookup, "SMARTCAMPUS_DEMO_API_URL", &cfg.APIBaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "SMARTCAMPUS_DEMO_API_KEY", &cfg.APIKey); err != nil {
		return Config{}, err
	}
	if raw, ok := lookup("SMARTCAMPUS_DEMO_ACCOUNTS"); ok {
		accounts, err := parseAccounts(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SMARTCAMPUS_DEMO_ACCOUNTS: %w", err)
		}
		cfg.Accounts = accounts
	}
	if err := applyInt(lookup, "SMARTCAMPUS_DEMO_BATCH_SIZE", &cfg.BatchSize); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SMARTCAMPUS_DEMO_INTERVAL", &cfg.Interval); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "SMARTCAMPUS_DEMO_HTTP_TIMEOUT", &cfg.HTTPTimeout); err != nil {
		return Config{}, err
	}
	if err := applyInt64(lookup, "SMARTCAMPUS_DEMO_SEED", &cfg.Seed); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return Config{}, fmt.Errorf("SMARTCAMPUS_DEMO_API_URL is required")
	}
	if len(cfg.Accounts) == 0 {
		return Config{}, fmt.Errorf("SMARTCAMPUS_DEMO_ACCOUNTS must list at least one account")
	}
	if cfg.BatchSize <= 0 {
		return Config{}, fmt.Errorf("SMARTCAMPUS_DEMO_BATCH_SIZE must be > 0")
	}
	if cfg.Interval <= 0 {
		return Config{}, fmt.Errorf("SMARTCAMPUS_DEMO_INTERVAL must be > 0")
	}
	if cfg.HTTPTimeout <= 0 {
		return Config{}, fmt.Errorf("SMARTCAMPUS_DEMO_HTTP_TIMEOUT must be > 0")
	}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	return cfg, nil
}

// parseAccounts reads "user:password" pairs separated by commas.
func parseAccounts(raw string) ([]Account, error) {
	var accounts []Account
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		username, password, ok := strings.Cut(entry, ":")
		if !ok || strings.TrimSpace(username) == "" {
			return nil, fmt.Errorf("entry %q: expected user:password", entry)
		}
		accounts = append(accounts, Account{Username: strings.TrimSpace(username), Password: password})
	}
	return accounts, nil
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}
