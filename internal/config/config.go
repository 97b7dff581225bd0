package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// FileEnv names an optional TOML file whose keys are the lower-case
// environment variable names, e.g. storage_root = "/var/lib/proxydeck".
const FileEnv = "PROXY_CONFIG_FILE"

// Config is built once at start-up and passed by value.
type Config struct {
	Addr              string        `validate:"required"`
	StorageRoot       string        `validate:"required"`
	APIDomain         string        `validate:"required,url"`
	APIVersion        string        `validate:"required"`
	APIResource       string        `validate:"required"`
	APIRequestTimeout time.Duration `validate:"gt=0"`
	APIRPS            int           `validate:"gte=0"`
	MaxUploadBytes    int64         `validate:"gte=1"`
	FetchConcurrency  int           `validate:"gte=1,lte=64"`
	PrintingPolicy    string        `validate:"oneof=newest oldest"`
	StorageTTL        time.Duration `validate:"gte=0"`
	SweepInterval     time.Duration `validate:"gt=0"`
	RateLimitRPS      float64       `validate:"gt=0"`
	RateLimitBurst    int           `validate:"gte=1"`
	LogLevel          string        `validate:"oneof=debug info warn error"`

	// Optional; empty disables the feature.
	DatabaseDSN    string
	APIKey         string
	CORSOrigins    []string
	TrustedProxies []string
	EnableHSTS     bool
}

func Default() Config {
	return Config{
		Addr:              ":8080",
		StorageRoot:       "./storage",
		APIDomain:         "https://api.magicthegathering.io",
		APIVersion:        "v1",
		APIResource:       "cards",
		APIRequestTimeout: 30 * time.Second,
		APIRPS:            5,
		MaxUploadBytes:    10000,
		FetchConcurrency:  8,
		PrintingPolicy:    "newest",
		SweepInterval:     time.Hour,
		RateLimitRPS:      10,
		RateLimitBurst:    20,
		LogLevel:          "info",
	}
}

// LoadEnvFiles reads .env and .env.local without overriding variables that
// are already set.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load resolves every key from the environment, then the optional TOML file,
// then .env and .env.local, then Default. The process environment is not
// modified.
func Load() (Config, error) {
	dotenv := readEnvFiles(".env", ".env.local")

	path := os.Getenv(FileEnv)
	if path == "" {
		path = dotenv[FileEnv]
	}
	file := map[string]string{}
	if path != "" {
		var err error
		if file, err = readFile(path); err != nil {
			return Config{}, err
		}
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		if v, ok := file[key]; ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
}

// readEnvFiles merges env files; a key from an earlier file wins, matching
// LoadEnvFiles. Missing files are skipped.
func readEnvFiles(paths ...string) map[string]string {
	out := map[string]string{}
	for _, path := range paths {
		vals, err := godotenv.Read(path)
		if err != nil {
			continue
		}
		for k, v := range vals {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out
}

func readFile(path string) (map[string]string, error) {
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case []interface{}:
			parts := make([]string, 0, len(val))
			for _, p := range val {
				parts = append(parts, fmt.Sprint(p))
			}
			out[strings.ToUpper(k)] = strings.Join(parts, ",")
		default:
			out[strings.ToUpper(k)] = fmt.Sprint(val)
		}
	}
	return out, nil
}

// FromLookup builds a Config from a key lookup, starting from Default.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	p := parser{lookup: lookup}

	p.str("APP_ADDR", &cfg.Addr)
	p.str("DB_DSN", &cfg.DatabaseDSN)
	p.str("STORAGE_ROOT", &cfg.StorageRoot)
	p.str("API_DOMAIN", &cfg.APIDomain)
	p.str("API_VERSION", &cfg.APIVersion)
	p.str("API_RESOURCE", &cfg.APIResource)
	p.seconds("API_REQUEST_TIMEOUT", &cfg.APIRequestTimeout)
	p.integer("API_RPS", &cfg.APIRPS)
	p.int64("MAX_UPLOAD_BYTES", &cfg.MaxUploadBytes)
	p.integer("FETCH_CONCURRENCY", &cfg.FetchConcurrency)
	p.str("PRINTING_POLICY", &cfg.PrintingPolicy)
	p.str("API_KEY", &cfg.APIKey)
	p.hours("STORAGE_TTL", &cfg.StorageTTL)
	p.duration("SWEEP_INTERVAL", &cfg.SweepInterval)
	p.float("RATE_LIMIT_RPS", &cfg.RateLimitRPS)
	p.integer("RATE_LIMIT_BURST", &cfg.RateLimitBurst)
	p.list("CORS_ORIGINS", &cfg.CORSOrigins)
	p.list("TRUSTED_PROXIES", &cfg.TrustedProxies)
	p.str("LOG_LEVEL", &cfg.LogLevel)
	p.boolean("ENABLE_HSTS", &cfg.EnableHSTS)

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	cfg.PrintingPolicy = strings.ToLower(cfg.PrintingPolicy)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) get(key string) (string, bool) {
	v, ok := p.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) fail(key, v string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, v, err))
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}

func (p *parser) integer(key string, dst *int) {
	if v, ok := p.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *parser) int64(key string, dst *int64) {
	if v, ok := p.get(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *parser) float(key string, dst *float64) {
	if v, ok := p.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (p *parser) seconds(key string, dst *time.Duration) {
	if v, ok := p.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = time.Duration(n) * time.Second
	}
}

func (p *parser) hours(key string, dst *time.Duration) {
	if v, ok := p.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = time.Duration(f * float64(time.Hour))
	}
}

func (p *parser) duration(key string, dst *time.Duration) {
	if v, ok := p.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = d
	}
}

func (p *parser) boolean(key string, dst *bool) {
	if v, ok := p.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func (p *parser) list(key string, dst *[]string) {
	if v, ok := p.get(key); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*dst = out
	}
}
