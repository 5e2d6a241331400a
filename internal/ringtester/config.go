package ringtester

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ChordRing/internal/config"
)

// DockerBootstrapConfig configures container-name based peer discovery.
type DockerBootstrapConfig struct {
	ContainerSuffix string `yaml:"containerSuffix"`
	Network         string `yaml:"network"`
	Port            int    `yaml:"port"`
}

// BootstrapConfig selects how the tester finds ring nodes to drive.
type BootstrapConfig struct {
	Mode    string                `yaml:"mode"` // "docker" or "route53"
	Route53 config.Route53Config  `yaml:"route53"`
	Docker  DockerBootstrapConfig `yaml:"docker"`
}

// ParallelismConfig bounds the concurrent workers per query wave.
type ParallelismConfig struct {
	MinWorkers int `yaml:"min"`
	MaxWorkers int `yaml:"max"`
}

// QueryConfig controls how often and how wide query waves fire.
type QueryConfig struct {
	Rate        float64           `yaml:"rate"` // query waves per second
	Timeout     time.Duration     `yaml:"timeout"`
	Parallelism ParallelismConfig `yaml:"parallelism"`
}

// CSVConfig configures result export.
type CSVConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config is the root configuration for the ringtester load-test harness.
type Config struct {
	Logger     config.LoggerConfig `yaml:"logger"`
	Duration   time.Duration       `yaml:"duration"`
	RingBits   uint8               `yaml:"ringBits"`
	Bootstrap  BootstrapConfig     `yaml:"bootstrap"`
	CSV        CSVConfig           `yaml:"csv"`
	Query      QueryConfig         `yaml:"query"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Logger:   config.LoggerConfig{Active: true, Level: "info", Encoding: "console", Mode: "stdout"},
		Duration: 30 * time.Second,
		RingBits: 6,
		Query: QueryConfig{
			Rate:        1,
			Timeout:     2 * time.Second,
			Parallelism: ParallelismConfig{MinWorkers: 1, MaxWorkers: 4},
		},
	}
}

// LoadConfig reads the YAML config at path, falling back to Default()'s
// fields for anything unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides overlays supported environment variables.
func (cfg *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Duration = d
		}
	}
	if v := os.Getenv("RING_BITS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 8); err == nil {
			cfg.RingBits = uint8(n)
		}
	}
	if v := os.Getenv("BOOTSTRAP_MODE"); v != "" {
		cfg.Bootstrap.Mode = v
	}
	if v := os.Getenv("DOCKER_SUFFIX"); v != "" {
		cfg.Bootstrap.Docker.ContainerSuffix = v
	}
	if v := os.Getenv("DOCKER_NETWORK"); v != "" {
		cfg.Bootstrap.Docker.Network = v
	}
	if v := os.Getenv("DOCKER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Bootstrap.Docker.Port = n
		}
	}
	if v := os.Getenv("ROUTE53_ZONE_ID"); v != "" {
		cfg.Bootstrap.Route53.HostedZoneID = v
	}
	if v := os.Getenv("ROUTE53_SUFFIX"); v != "" {
		cfg.Bootstrap.Route53.DomainSuffix = v
	}
	if v := os.Getenv("CSV_ENABLED"); v != "" {
		cfg.CSV.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("CSV_PATH"); v != "" {
		cfg.CSV.Path = v
	}
	if v := os.Getenv("QUERY_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Query.Rate = f
		}
	}
}

// Validate checks the configuration for missing or invalid fields.
func (cfg *Config) Validate() error {
	var errs []string

	if cfg.Duration <= 0 {
		errs = append(errs, fmt.Sprintf("duration must be > 0 (got %v)", cfg.Duration))
	}
	if cfg.RingBits == 0 || cfg.RingBits > 64 {
		errs = append(errs, "ringBits must be in [1,64]")
	}

	switch cfg.Bootstrap.Mode {
	case "docker":
		d := cfg.Bootstrap.Docker
		if d.ContainerSuffix == "" {
			errs = append(errs, "bootstrap.docker.containerSuffix is required when mode=docker")
		}
		if d.Port <= 0 {
			errs = append(errs, fmt.Sprintf("bootstrap.docker.port must be > 0 (got %d)", d.Port))
		}
	case "route53":
		r := cfg.Bootstrap.Route53
		if r.HostedZoneID == "" {
			errs = append(errs, "bootstrap.route53.hostedZoneId is required when mode=route53")
		}
		if r.DomainSuffix == "" {
			errs = append(errs, "bootstrap.route53.domainSuffix is required when mode=route53")
		}
	default:
		errs = append(errs, fmt.Sprintf("bootstrap.mode must be one of [docker, route53], got %q", cfg.Bootstrap.Mode))
	}

	if cfg.CSV.Enabled && cfg.CSV.Path == "" {
		errs = append(errs, "csv.path is required when csv.enabled")
	}
	if cfg.Query.Rate <= 0 {
		errs = append(errs, fmt.Sprintf("query.rate must be > 0 (got %f)", cfg.Query.Rate))
	}
	if cfg.Query.Parallelism.MinWorkers <= 0 {
		errs = append(errs, fmt.Sprintf("query.parallelism.min must be > 0 (got %d)", cfg.Query.Parallelism.MinWorkers))
	}
	if cfg.Query.Parallelism.MaxWorkers < cfg.Query.Parallelism.MinWorkers {
		errs = append(errs, "query.parallelism.max must be >= query.parallelism.min")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
