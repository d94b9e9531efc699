package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vitwit/custody/clients"
	"github.com/vitwit/custody/types"
)

// Environment variables read by LoadConfigFromEnv.
const (
	EnvAPISecret        = "FIREBLOCKS_API_SECRET"
	EnvAPIKey           = "FIREBLOCKS_API_KEY"
	EnvBaseURL          = "FIREBLOCKS_BASE_URL"
	EnvRawVaultID       = "FIREBLOCKS_RAW_VAULT_ID"
	EnvRawAssetID       = "FIREBLOCKS_RAW_ASSET_ID"
	EnvContractWalletID = "FIREBLOCKS_CONTRACT_WALLET_ID"
	EnvRequestTimeoutMs = "CUSTODY_REQUEST_TIMEOUT_MS"
	EnvRateLimitRPS     = "CUSTODY_RATE_LIMIT_RPS"
	EnvWaitMaxMs        = "CUSTODY_WAIT_MAX_MS"
	EnvWaitIntervalMs   = "CUSTODY_WAIT_INTERVAL_MS"
	EnvLogLevel         = "CUSTODY_LOG_LEVEL"
	EnvEnableMetrics    = "CUSTODY_ENABLE_METRICS"
)

const DefaultRawAssetID = "FLR"

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// DefaultConfig returns a config with every optional field set.
func DefaultConfig() types.Config {
	return types.Config{
		BaseURL:          clients.DefaultBaseURL,
		RawAssetID:       DefaultRawAssetID,
		WaitMaxDuration:  180 * time.Second,
		WaitPollInterval: 6 * time.Second,
		LogLevel:         "info",
	}
}

// ParseConfig parses a JSON config on top of DefaultConfig and validates it.
func ParseConfig(data []byte) (*types.Config, error) {
	config := DefaultConfig()

	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &types.CustodyError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("failed to parse custody config: %v", err),
		}
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConfigFromEnv builds the config from the process environment. Missing
// credentials are a CONFIG_ERROR.
func LoadConfigFromEnv() (*types.Config, error) {
	return LoadConfig(os.Getenv)
}

// LoadConfig builds the config from getenv.
func LoadConfig(getenv func(string) string) (*types.Config, error) {
	config := DefaultConfig()
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	config.APISecret = UnescapeNewlines(getenv(EnvAPISecret))
	config.APIKey = env(EnvAPIKey, "")
	config.BaseURL = env(EnvBaseURL, config.BaseURL)
	config.RawVaultID = env(EnvRawVaultID, "")
	config.RawAssetID = env(EnvRawAssetID, config.RawAssetID)
	config.ContractWalletID = env(EnvContractWalletID, "")
	config.LogLevel = env(EnvLogLevel, config.LogLevel)

	var err error
	if config.RequestTimeout, err = envMillis(env, EnvRequestTimeoutMs, config.RequestTimeout); err != nil {
		return nil, err
	}
	if config.WaitMaxDuration, err = envMillis(env, EnvWaitMaxMs, config.WaitMaxDuration); err != nil {
		return nil, err
	}
	if config.WaitPollInterval, err = envMillis(env, EnvWaitIntervalMs, config.WaitPollInterval); err != nil {
		return nil, err
	}
	if v := env(EnvRateLimitRPS, ""); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, envError(EnvRateLimitRPS, err)
		}
		config.RateLimitRPS = rps
	}
	if v := env(EnvEnableMetrics, ""); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, envError(EnvEnableMetrics, err)
		}
		config.EnableMetrics = enabled
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// ValidateConfig checks config against its struct tags.
func ValidateConfig(config *types.Config) error {
	if err := validate.Struct(config); err != nil {
		return &types.CustodyError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("validation failed: %v", err),
			Err:     err,
		}
	}
	return nil
}

// UnescapeNewlines turns literal "\n" sequences into newlines, as needed for
// PEM keys passed through single-line environment variables.
func UnescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func envMillis(env func(string, string) string, key string, fallback time.Duration) (time.Duration, error) {
	v := env(key, "")
	if v == "" {
		return fallback, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, envError(key, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func envError(key string, err error) error {
	return &types.CustodyError{
		Code:    types.ErrConfigError,
		Message: fmt.Sprintf("invalid %s", key),
		Err:     err,
	}
}

// NormalizeJSON formats JSON with consistent indentation
func NormalizeJSON(data interface{}) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}
