package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "DEALSPOT_CONFIG_FILE"

type consumers struct {
	ProductSaverGroup  string `mapstructure:"product_saver_group"`
	SavedProductsGroup string `mapstructure:"saved_products_group"`
}

type topics struct {
	ProductsFromShop    string `mapstructure:"products_from_shop"`
	SavedProductsStream string `mapstructure:"saved_products_stream"`
}

type brokerTLS struct {
	CAFile   string `mapstructure:"ca_file"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// Enabled reports whether all files are set.
func (t brokerTLS) Enabled() bool {
	return t.CAFile != "" && t.CertFile != "" && t.KeyFile != ""
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	TLS                brokerTLS `mapstructure:"tls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
}

type deals struct {
	SectionItemLimit   int             `mapstructure:"section_item_limit"`
	MegaDealsThreshold decimal.Decimal `mapstructure:"mega_deals_threshold"`
	PopularMinRating   float64         `mapstructure:"popular_min_rating"`
	StoreFullListLimit int             `mapstructure:"store_full_list_limit"`
	FetchMoreHideDelay time.Duration   `mapstructure:"fetch_more_hide_delay"`
	PageSize           int             `mapstructure:"page_size"`
	FetchPolicy        string          `mapstructure:"fetch_policy"`
}

type httpConfig struct {
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	SQLDB          string     `mapstructure:"sql_db"`
	Broker         broker     `mapstructure:"broker"`
	Deals          deals      `mapstructure:"deals"`
	HTTP           httpConfig `mapstructure:"http"`
}

func Load() Config {
	cfg, err := load(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

func load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("broker.topics.products_from_shop", "products-from-shop")
	v.SetDefault("broker.topics.saved_products_stream", "saved-products-stream")
	v.SetDefault("broker.consumers.product_saver_group", "product-saver-group")
	v.SetDefault("broker.consumers.saved_products_group", "saved-products-group")
	v.SetDefault("deals.section_item_limit", 5)
	v.SetDefault("deals.mega_deals_threshold", "50")
	v.SetDefault("deals.popular_min_rating", 4)
	v.SetDefault("deals.store_full_list_limit", 20)
	v.SetDefault("deals.fetch_more_hide_delay", "240ms")
	v.SetDefault("deals.page_size", 40)
	v.SetDefault("deals.fetch_policy", "cache-first")
	v.SetDefault("http.handler_timeout", "5s")
	v.SetDefault("http.rate_limit_rps", 20)
	v.SetDefault("http.rate_limit_burst", 40)
}

func (c Config) validate() error {
	var errs []error

	if c.SQLDB == "" {
		errs = append(errs, errors.New("sql_db: required"))
	}
	if len(c.Broker.SeedBrokers) == 0 {
		errs = append(errs, errors.New("broker.seed_brokers: required"))
	}
	if len(c.Broker.SchemaRegistryURLs) == 0 {
		errs = append(errs, errors.New("broker.schema_registry_urls: required"))
	}
	tls := c.Broker.TLS
	if !tls.Enabled() && (tls.CAFile != "" || tls.CertFile != "" || tls.KeyFile != "") {
		errs = append(errs, errors.New("broker.tls: set all files or none"))
	}
	if c.Deals.SectionItemLimit <= 0 {
		errs = append(errs, errors.New("deals.section_item_limit: must be positive"))
	}
	if c.Deals.MegaDealsThreshold.IsNegative() {
		errs = append(errs, errors.New("deals.mega_deals_threshold: must not be negative"))
	}
	if c.Deals.PageSize <= 0 {
		errs = append(errs, errors.New("deals.page_size: must be positive"))
	}
	switch c.Deals.FetchPolicy {
	case "cache-first", "network-only":
	default:
		errs = append(errs, fmt.Errorf(
			"deals.fetch_policy: unknown policy %q", c.Deals.FetchPolicy,
		))
	}
	if c.HTTP.RateLimitRPS <= 0 || c.HTTP.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("http.rate_limit_*: must be positive"))
	}

	return errors.Join(errs...)
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	SQLDB=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		ProductsFromShop=%q
		SavedProductsStream=%q
	Consumers:
		ProductSaverGroup=%q
		SavedProductsGroup=%q

	Deals:
	SectionItemLimit=%d
	MegaDealsThreshold=%q
	PopularMinRating=%v
	StoreFullListLimit=%d
	FetchMoreHideDelay=%q
	PageSize=%d
	FetchPolicy=%q

	HTTP:
	HandlerTimeout=%q
	RateLimitRPS=%v
	RateLimitBurst=%d

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		redactDSN(c.SQLDB),
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.ProductsFromShop,
		c.Broker.Topics.SavedProductsStream,
		c.Broker.Consumers.ProductSaverGroup,
		c.Broker.Consumers.SavedProductsGroup,
		c.Deals.SectionItemLimit,
		c.Deals.MegaDealsThreshold,
		c.Deals.PopularMinRating,
		c.Deals.StoreFullListLimit,
		c.Deals.FetchMoreHideDelay,
		c.Deals.PageSize,
		c.Deals.FetchPolicy,
		c.HTTP.HandlerTimeout,
		c.HTTP.RateLimitRPS,
		c.HTTP.RateLimitBurst,
	)
}

// redactDSN hides the password of a postgres url.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	user, _, found := strings.Cut(creds, ":")
	if !found {
		return dsn
	}
	return dsn[:scheme+3] + user + ":***" + dsn[at:]
}
