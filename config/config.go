package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "SHOP_CONFIG_FILE"
	envPrefix         = "SHOP"
	defaultConfigFile = "/config.yaml"
)

var ErrInvalidConfig = errors.New("invalid config")

type httpServer struct {
	Addr           string        `mapstructure:"addr"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
}

type catalog struct {
	// File is a YAML product list, the built-in line is used when empty.
	File string `mapstructure:"file"`
}

// Amounts are decimal strings.
type pricing struct {
	FreeShippingThreshold string `mapstructure:"free_shipping_threshold"`
	FlatShippingFee       string `mapstructure:"flat_shipping_fee"`
	TaxRate               string `mapstructure:"tax_rate"`
}

type checkout struct {
	Delay time.Duration `mapstructure:"delay"`
}

type redisStorage struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type s3Storage struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	PathStyle       bool   `mapstructure:"path_style"`
	Prefix          string `mapstructure:"prefix"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type storage struct {
	Driver string       `mapstructure:"driver"`
	Key    string       `mapstructure:"key"`
	Dir    string       `mapstructure:"dir"`
	DSN    string       `mapstructure:"dsn"`
	Redis  redisStorage `mapstructure:"redis"`
	S3     s3Storage    `mapstructure:"s3"`
}

type cart struct {
	Storage storage `mapstructure:"storage"`
}

type brokerTLS struct {
	CAFile   string `mapstructure:"ca_file"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

type broker struct {
	// Orders are not published when SeedBrokers is empty.
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	OrdersTopic        string    `mapstructure:"orders_topic"`
	Partitions         int32     `mapstructure:"partitions"`
	ReplicationFactor  int16     `mapstructure:"replication_factor"`
	TLS                brokerTLS `mapstructure:"tls"`
}

type metrics struct {
	Enabled bool `mapstructure:"enabled"`
}

type Config struct {
	LogLevel slog.Level `mapstructure:"log_level"`
	HTTP     httpServer `mapstructure:"http"`
	Catalog  catalog    `mapstructure:"catalog"`
	Pricing  pricing    `mapstructure:"pricing"`
	Checkout checkout   `mapstructure:"checkout"`
	Cart     cart       `mapstructure:"cart"`
	Broker   broker     `mapstructure:"broker"`
	Metrics  metrics    `mapstructure:"metrics"`
}

var defaults = map[string]any{
	"log_level":                         "info",
	"http.addr":                         ":8080",
	"http.handler_timeout":              "5s",
	"catalog.file":                      "",
	"pricing.free_shipping_threshold":   "100",
	"pricing.flat_shipping_fee":         "9.99",
	"pricing.tax_rate":                  "0.08",
	"checkout.delay":                    "2s",
	"cart.storage.driver":               "file",
	"cart.storage.key":                  "cart-storage",
	"cart.storage.dir":                  "./data",
	"cart.storage.dsn":                  "",
	"cart.storage.redis.addr":           "localhost:6379",
	"cart.storage.redis.password":       "",
	"cart.storage.redis.db":             0,
	"cart.storage.redis.ttl":            "0s",
	"cart.storage.s3.bucket":            "",
	"cart.storage.s3.region":            "us-east-1",
	"cart.storage.s3.endpoint":          "",
	"cart.storage.s3.path_style":        false,
	"cart.storage.s3.prefix":            "",
	"cart.storage.s3.access_key_id":     "",
	"cart.storage.s3.secret_access_key": "",
	"broker.seed_brokers":               []string{},
	"broker.schema_registry_urls":       []string{},
	"broker.orders_topic":               "shop.orders",
	"broker.partitions":                 3,
	"broker.replication_factor":         1,
	"broker.tls.ca_file":                "",
	"broker.tls.cert_file":              "",
	"broker.tls.key_file":               "",
	"metrics.enabled":                   true,
}

// Load reads the config for os.Args and exits with code 2 on failure.
func Load() Config {
	cfg, err := Read(os.Args[1:])
	if err != nil {
		die(err)
	}
	return cfg
}

// Read resolves the config file from args or SHOP_CONFIG_FILE, applies
// SHOP_* environment overrides and validates the result.
//
// A missing config file leaves the defaults in place.
func Read(args []string) (Config, error) {
	const op = "config.Read"

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := configFilepath(args)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	v.SetConfigFile(path)

	err = v.ReadInConfig()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	var cfg Config
	err = v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

func configFilepath(args []string) (string, error) {
	cmdLine := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	arg := cmdLine.String("config", defaultConfigFile, "config file")
	if err := cmdLine.Parse(args); err != nil {
		return "", err
	}
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env, nil
	}
	return *arg, nil
}

var drivers = []string{"memory", "file", "sqlite", "postgres", "redis", "s3"}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	invalid := func(key, format string, args ...any) {
		errs = append(errs, fmt.Errorf(
			"%w: %s: %s", ErrInvalidConfig, key, fmt.Sprintf(format, args...),
		))
	}

	if c.HTTP.Addr == "" {
		invalid("http.addr", "must be set")
	}
	if c.HTTP.HandlerTimeout <= c.Checkout.Delay {
		invalid("http.handler_timeout", "must exceed checkout.delay")
	}
	if c.Checkout.Delay < 0 {
		invalid("checkout.delay", "must not be negative")
	}

	for key, value := range map[string]string{
		"pricing.free_shipping_threshold": c.Pricing.FreeShippingThreshold,
		"pricing.flat_shipping_fee":       c.Pricing.FlatShippingFee,
		"pricing.tax_rate":                c.Pricing.TaxRate,
	} {
		d, err := decimal.NewFromString(value)
		if err != nil {
			invalid(key, "not a decimal: %q", value)
			continue
		}
		if d.IsNegative() {
			invalid(key, "must not be negative")
		}
	}

	s := c.Cart.Storage
	switch {
	case !slices.Contains(drivers, s.Driver):
		invalid("cart.storage.driver", "one of %s, got %q", strings.Join(drivers, "|"), s.Driver)
	case s.Driver == "file" && s.Dir == "":
		invalid("cart.storage.dir", "required by the file driver")
	case (s.Driver == "sqlite" || s.Driver == "postgres") && s.DSN == "":
		invalid("cart.storage.dsn", "required by the %s driver", s.Driver)
	case s.Driver == "redis" && s.Redis.Addr == "":
		invalid("cart.storage.redis.addr", "required by the redis driver")
	case s.Driver == "s3" && s.S3.Bucket == "":
		invalid("cart.storage.s3.bucket", "required by the s3 driver")
	}

	if len(c.Broker.SeedBrokers) != 0 {
		if len(c.Broker.SchemaRegistryURLs) == 0 {
			invalid("broker.schema_registry_urls", "required with seed_brokers")
		}
		if c.Broker.OrdersTopic == "" {
			invalid("broker.orders_topic", "required with seed_brokers")
		}
	}
	if (c.Broker.TLS.CertFile != "" || c.Broker.TLS.KeyFile != "") &&
		c.Broker.TLS.CAFile == "" {
		invalid("broker.tls.ca_file", "required with a client certificate")
	}

	return errors.Join(errs...)
}

// PricingRule returns the pricing amounts. Call it on a validated config.
func (c Config) PricingRule() domain.PricingRule {
	return domain.PricingRule{
		FreeShippingThreshold: decimal.RequireFromString(c.Pricing.FreeShippingThreshold),
		FlatShippingFee:       decimal.RequireFromString(c.Pricing.FlatShippingFee),
		TaxRate:               decimal.RequireFromString(c.Pricing.TaxRate),
	}
}

func die(err error) {
	fmt.Printf("failed to load config: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPAddr=%q
	HandlerTimeout=%q
	CatalogFile=%q
	CheckoutDelay=%q
	MetricsEnabled=%t

	Pricing:
	FreeShippingThreshold=%q
	FlatShippingFee=%q
	TaxRate=%q

	CartStorage:
	Driver=%q
	Key=%q
	Dir=%q
	RedisAddr=%q
	S3Bucket=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	OrdersTopic=%q
	TLS=%t

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTP.Addr,
		c.HTTP.HandlerTimeout,
		c.Catalog.File,
		c.Checkout.Delay,
		c.Metrics.Enabled,
		c.Pricing.FreeShippingThreshold,
		c.Pricing.FlatShippingFee,
		c.Pricing.TaxRate,
		c.Cart.Storage.Driver,
		c.Cart.Storage.Key,
		c.Cart.Storage.Dir,
		c.Cart.Storage.Redis.Addr,
		c.Cart.Storage.S3.Bucket,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.OrdersTopic,
		c.Broker.TLS.CAFile != "",
	)
}
