package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ChordRing/internal/logger"
)

type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

type TelemetryConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
}

type FileLoggerConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

type LoggerConfig struct {
	Active   bool             `yaml:"active"`
	Level    string           `yaml:"level"`
	Encoding string           `yaml:"encoding"`
	Mode     string           `yaml:"mode"`
	File     FileLoggerConfig `yaml:"file"`
}

// RingConfig fixes the identifier space and the protocol's timing constants.
// Every node in a deployment must load the same Bits value.
type RingConfig struct {
	Bits              uint8         `yaml:"bits"`
	SuccessorListSize int           `yaml:"successorListSize"`
	StabilizeInterval time.Duration `yaml:"stabilizeInterval"`
	LivenessTimeout   time.Duration `yaml:"livenessTimeout"`
	ReqTimeout        time.Duration `yaml:"reqTimeout"`
}

type Route53Config struct {
	Enabled      bool   `yaml:"enabled"`
	HostedZoneID string `yaml:"hostedZoneId"`
	DomainSuffix string `yaml:"domainSuffix"`
	TTL          int64  `yaml:"ttl"`
}

// BootstrapConfig selects how a joining node discovers existing ring
// members. Mode "static" uses Peers verbatim; mode "route53" discovers via
// SRV records under DomainSuffix in the given hosted zone, optionally
// registering this node's own record on startup.
type BootstrapConfig struct {
	Mode    string        `yaml:"mode"`
	Peers   []string      `yaml:"peers"`
	Route53 Route53Config `yaml:"route53"`
}

type NodeConfig struct {
	Id   string `yaml:"id"`
	Bind string `yaml:"bind"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // "private" or "public", used by bindaddr selection
}

type Config struct {
	Logger    LoggerConfig    `yaml:"logger"`
	Ring      RingConfig      `yaml:"ring"`
	Node      NodeConfig      `yaml:"node"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Logger: LoggerConfig{Active: true, Level: "info", Encoding: "console", Mode: "stdout"},
		Ring: RingConfig{
			Bits:              6,
			SuccessorListSize: 6,
			StabilizeInterval: 2 * time.Second,
			LivenessTimeout:   1 * time.Second,
			ReqTimeout:        3 * time.Second,
		},
		Node:      NodeConfig{Bind: "0.0.0.0", Port: 8000, Mode: "private"},
		Bootstrap: BootstrapConfig{Mode: "static"},
	}
}

// LoadConfig loads the configuration from a YAML file at the given path.
//
// It performs only syntactic parsing. Call cfg.ValidateConfig() afterward to
// check for missing or invalid fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides overlays supported environment variables on top of the
// loaded configuration. Unset variables leave the existing value untouched.
func (cfg *Config) ApplyEnvOverrides() {
	if v := os.Getenv("NODE_ID"); v != "" {
		cfg.Node.Id = v
	}
	if v := os.Getenv("NODE_BIND"); v != "" {
		cfg.Node.Bind = v
	}
	if v := os.Getenv("NODE_HOST"); v != "" {
		cfg.Node.Host = v
	}
	if v := os.Getenv("NODE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Node.Port = port
		}
	}
	if v := os.Getenv("NODE_MODE"); v != "" {
		cfg.Node.Mode = v
	}
	if v := os.Getenv("BOOTSTRAP_MODE"); v != "" {
		cfg.Bootstrap.Mode = v
	}
	if v := os.Getenv("BOOTSTRAP_PEERS"); v != "" {
		cfg.Bootstrap.Peers = strings.Split(v, ",")
	}
	if v := os.Getenv("ROUTE53_ENABLED"); v != "" {
		cfg.Bootstrap.Route53.Enabled = parseBool(v)
	}
	if v := os.Getenv("ROUTE53_ZONE_ID"); v != "" {
		cfg.Bootstrap.Route53.HostedZoneID = v
	}
	if v := os.Getenv("ROUTE53_SUFFIX"); v != "" {
		cfg.Bootstrap.Route53.DomainSuffix = v
	}
	if v := os.Getenv("ROUTE53_TTL"); v != "" {
		if ttl, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Bootstrap.Route53.TTL = ttl
		}
	}
	if v := os.Getenv("TRACE_ENABLED"); v != "" {
		cfg.Telemetry.Tracing.Enabled = parseBool(v)
	}
	if v := os.Getenv("TRACE_EXPORTER"); v != "" {
		cfg.Telemetry.Tracing.Exporter = v
	}
	if v := os.Getenv("TRACE_ENDPOINT"); v != "" {
		cfg.Telemetry.Tracing.Endpoint = v
	}
	if v := os.Getenv("LOGGER_ENABLED"); v != "" {
		cfg.Logger.Active = parseBool(v)
	}
	if v := os.Getenv("LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("LOGGER_ENCODING"); v != "" {
		cfg.Logger.Encoding = v
	}
	if v := os.Getenv("LOGGER_MODE"); v != "" {
		cfg.Logger.Mode = v
	}
	if v := os.Getenv("LOGGER_FILE_PATH"); v != "" {
		cfg.Logger.File.Path = v
	}
}

func parseBool(v string) bool {
	v = strings.ToLower(v)
	return v == "true" || v == "1" || v == "yes"
}

// ValidateConfig performs structural validation of the loaded configuration.
// All detected issues are accumulated and returned as a single error.
func (cfg *Config) ValidateConfig() error {
	var errs []string

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.level: %s", cfg.Logger.Level))
	}
	switch cfg.Logger.Encoding {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.encoding: %s", cfg.Logger.Encoding))
	}
	switch cfg.Logger.Mode {
	case "stdout":
	case "file":
		if cfg.Logger.File.Path == "" {
			errs = append(errs, "logger.file.path is required when mode=file")
		}
		if cfg.Logger.File.MaxSize < 0 || cfg.Logger.File.MaxBackups < 0 || cfg.Logger.File.MaxAge < 0 {
			errs = append(errs, "logger.file.* values must be non-negative")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.mode: %s", cfg.Logger.Mode))
	}

	if cfg.Ring.Bits == 0 || cfg.Ring.Bits > 64 {
		errs = append(errs, "ring.bits must be in [1,64]")
	}
	if cfg.Ring.SuccessorListSize <= 0 {
		errs = append(errs, "ring.successorListSize must be > 0")
	}
	if cfg.Ring.StabilizeInterval <= 0 {
		errs = append(errs, "ring.stabilizeInterval must be > 0")
	}
	if cfg.Ring.LivenessTimeout <= 0 {
		errs = append(errs, "ring.livenessTimeout must be > 0")
	}
	if cfg.Ring.ReqTimeout <= 0 {
		errs = append(errs, "ring.reqTimeout must be > 0")
	}

	switch cfg.Bootstrap.Mode {
	case "static":
		for _, p := range cfg.Bootstrap.Peers {
			if _, _, err := net.SplitHostPort(p); err != nil {
				errs = append(errs, fmt.Sprintf("invalid peer address %q in bootstrap.peers: %v", p, err))
			}
		}
	case "route53":
		r := cfg.Bootstrap.Route53
		if r.HostedZoneID == "" {
			errs = append(errs, "bootstrap.route53.hostedZoneId is required when bootstrap.mode=route53")
		}
		if r.DomainSuffix == "" {
			errs = append(errs, "bootstrap.route53.domainSuffix is required when bootstrap.mode=route53")
		}
		if r.TTL <= 0 {
			errs = append(errs, "bootstrap.route53.ttl must be > 0 when bootstrap.mode=route53")
		}
	case "init":
		// first node in the ring; no extra constraints
	default:
		errs = append(errs, fmt.Sprintf("invalid bootstrap.mode: %s (must be static, route53 or init)", cfg.Bootstrap.Mode))
	}

	if cfg.Node.Port < 0 || cfg.Node.Port > 65535 {
		errs = append(errs, fmt.Sprintf("node.port must be in [0,65535], got %d", cfg.Node.Port))
	}
	switch cfg.Node.Mode {
	case "private", "public":
	default:
		errs = append(errs, fmt.Sprintf("invalid node.mode: %s", cfg.Node.Mode))
	}

	if cfg.Telemetry.Tracing.Enabled {
		switch cfg.Telemetry.Tracing.Exporter {
		case "stdout", "otlp":
		default:
			errs = append(errs, fmt.Sprintf("invalid telemetry.tracing.exporter: %s", cfg.Telemetry.Tracing.Exporter))
		}
		if cfg.Telemetry.Tracing.Exporter == "otlp" && cfg.Telemetry.Tracing.Endpoint == "" {
			errs = append(errs, "telemetry.tracing.endpoint is required for the otlp exporter")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LogConfig emits the loaded configuration at DEBUG level, useful when
// diagnosing startup issues.
func (cfg *Config) LogConfig(lgr logger.Logger) {
	lgr.Debug("loaded configuration",
		logger.F("logger.active", cfg.Logger.Active),
		logger.F("logger.level", cfg.Logger.Level),
		logger.F("logger.encoding", cfg.Logger.Encoding),
		logger.F("logger.mode", cfg.Logger.Mode),

		logger.F("ring.bits", cfg.Ring.Bits),
		logger.F("ring.successorListSize", cfg.Ring.SuccessorListSize),
		logger.F("ring.stabilizeInterval", cfg.Ring.StabilizeInterval.String()),
		logger.F("ring.livenessTimeout", cfg.Ring.LivenessTimeout.String()),
		logger.F("ring.reqTimeout", cfg.Ring.ReqTimeout.String()),

		logger.F("node.id", cfg.Node.Id),
		logger.F("node.bind", cfg.Node.Bind),
		logger.F("node.host", cfg.Node.Host),
		logger.F("node.port", cfg.Node.Port),
		logger.F("node.mode", cfg.Node.Mode),

		logger.F("bootstrap.mode", cfg.Bootstrap.Mode),
		logger.F("bootstrap.peers", cfg.Bootstrap.Peers),
		logger.F("bootstrap.route53.enabled", cfg.Bootstrap.Route53.Enabled),
		logger.F("bootstrap.route53.hostedZoneId", cfg.Bootstrap.Route53.HostedZoneID),
		logger.F("bootstrap.route53.domainSuffix", cfg.Bootstrap.Route53.DomainSuffix),

		logger.F("telemetry.tracing.enabled", cfg.Telemetry.Tracing.Enabled),
		logger.F("telemetry.tracing.exporter", cfg.Telemetry.Tracing.Exporter),
		logger.F("telemetry.tracing.endpoint", cfg.Telemetry.Tracing.Endpoint),
	)
}
