package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 120 * time.Second
	defaultCatalogSource    = "data/products.json"
	defaultCatalogTimeout   = 10 * time.Second
	defaultCartBackend      = "memory"
	defaultCartStorageKey   = "darfidda_cart"
	defaultDeliveryCharge   = "10.00"
	defaultSubmitTimeout    = 15 * time.Second
	cartBackendMemory       = "memory"
	cartBackendFirestore    = "firestore"
	defaultCartsCollection  = "carts"
	defaultOrdersCollection = "orders"
)

// defaultPromotionCodes seeds the promo registry; entries are semicolon
// separated, each "CODE=rate|message".
const defaultPromotionCodes = "DARFIDDA10=0.10|Promo code applied! You get 10% off.;" +
	"WELCOMENEW=0.20|Welcome! You get 20% off your first order."

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server     ServerConfig
	Catalog    CatalogConfig
	Cart       CartConfig
	Firestore  FirestoreConfig
	Pricing    PricingConfig
	Promotions PromotionConfig
	Submission SubmissionConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CatalogConfig locates the product catalogue document.
type CatalogConfig struct {
	Source  string
	Timeout time.Duration
}

// CartConfig selects the cart persistence backend and its storage slot.
type CartConfig struct {
	Backend    string
	StorageKey string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID        string
	EmulatorHost     string
	CredentialsFile  string
	CartsCollection  string
	OrdersCollection string
}

// PricingConfig holds monetary amounts expressed in minor currency units.
type PricingConfig struct {
	DeliveryCharge int64
}

// PromotionConfig maps uppercase promotion codes to their registry entries.
type PromotionConfig struct {
	Codes map[string]PromotionCode
}

// PromotionCode is one registry entry: a fractional discount rate plus the
// confirmation message returned when the code matches.
type PromotionCode struct {
	Rate    float64
	Message string
}

// SubmissionConfig configures the external order submission endpoint.
type SubmissionConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "STORE_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "STORE_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "STORE_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "STORE_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Catalog: CatalogConfig{
			Source:  stringWithDefault(lookup, "STORE_CATALOG_SOURCE", defaultCatalogSource),
			Timeout: durationWithDefault(lookup, "STORE_CATALOG_TIMEOUT", defaultCatalogTimeout),
		},
		Cart: CartConfig{
			Backend:    strings.ToLower(stringWithDefault(lookup, "STORE_CART_BACKEND", defaultCartBackend)),
			StorageKey: stringWithDefault(lookup, "STORE_CART_STORAGE_KEY", defaultCartStorageKey),
		},
		Firestore: FirestoreConfig{
			ProjectID:        stringWithDefault(lookup, "STORE_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost:     stringWithDefault(lookup, "STORE_FIRESTORE_EMULATOR_HOST", ""),
			CredentialsFile:  stringWithDefault(lookup, "STORE_FIRESTORE_CREDENTIALS_FILE", ""),
			CartsCollection:  stringWithDefault(lookup, "STORE_FIRESTORE_CARTS_COLLECTION", defaultCartsCollection),
			OrdersCollection: stringWithDefault(lookup, "STORE_FIRESTORE_ORDERS_COLLECTION", defaultOrdersCollection),
		},
		Pricing: PricingConfig{
			DeliveryCharge: amountWithDefault(lookup, "STORE_PRICING_DELIVERY_CHARGE", defaultDeliveryCharge),
		},
		Promotions: PromotionConfig{
			Codes: promotionMapWithDefault(lookup, "STORE_PROMOTION_CODES", defaultPromotionCodes),
		},
		Submission: SubmissionConfig{
			Endpoint: stringWithDefault(lookup, "STORE_SUBMISSION_ENDPOINT", ""),
			Timeout:  durationWithDefault(lookup, "STORE_SUBMISSION_TIMEOUT", defaultSubmitTimeout),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if strings.TrimSpace(cfg.Catalog.Source) == "" {
		missing = append(missing, "Catalog.Source")
	}
	if strings.TrimSpace(cfg.Cart.StorageKey) == "" {
		missing = append(missing, "Cart.StorageKey")
	}
	switch cfg.Cart.Backend {
	case cartBackendMemory:
	case cartBackendFirestore:
		if cfg.Firestore.ProjectID == "" {
			missing = append(missing, "Firestore.ProjectID")
		}
	default:
		missing = append(missing, "Cart.Backend")
	}
	if cfg.Pricing.DeliveryCharge < 0 {
		missing = append(missing, "Pricing.DeliveryCharge")
	}
	if len(cfg.Promotions.Codes) == 0 {
		missing = append(missing, "Promotions.Codes")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

// amountWithDefault parses a decimal currency string (e.g. "10.00") into minor units.
func amountWithDefault(lookup func(string) (string, bool), key, fallback string) int64 {
	raw := fallback
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		raw = value
	}
	amount, err := parseAmount(raw)
	if err != nil {
		amount, _ = parseAmount(fallback)
	}
	return amount
}

func parseAmount(value string) (int64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	cents := parsed * 100
	if cents >= 0 {
		return int64(cents + 0.5), nil
	}
	return int64(cents - 0.5), nil
}

// promotionMapWithDefault parses semicolon-separated "CODE=0.10|message" entries
// into an uppercase code to registry entry map. The message part is optional;
// malformed entries are skipped.
func promotionMapWithDefault(lookup func(string) (string, bool), key, fallback string) map[string]PromotionCode {
	raw := fallback
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		raw = value
	}

	values := make(map[string]PromotionCode)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(parts[0]))

		rateText, message := parts[1], ""
		if idx := strings.Index(parts[1], "|"); idx >= 0 {
			rateText = parts[1][:idx]
			message = strings.TrimSpace(parts[1][idx+1:])
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(rateText), 64)
		if err != nil || code == "" || rate <= 0 || rate > 1 {
			continue
		}
		values[code] = PromotionCode{Rate: rate, Message: message}
	}
	return values
}
