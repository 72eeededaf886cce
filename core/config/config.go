// Package config loads the configuration of value resolution: logging, tracing and
// the security policy the lookup nodes run under.
//
// Example configuration:
//
//	logging:
//	  level: debug
//	  format: json
//	telemetry:
//	  endpoint: localhost:4318
//	  service_name: injector
//	security:
//	  enabled: true
//	  default: caller
//	  grants:
//	    caller: []
//	    injector: [accessDeclaredMembers, suppressAccessChecks]
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/anoideaopen/msc/core/logger"
	"github.com/anoideaopen/msc/core/security"
	"github.com/anoideaopen/msc/core/telemetry"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// EnvTelemetryEndpoint overrides the collector endpoint of the configuration file. The
// logging settings are overridden by logger.EnvLoggingLevel and logger.EnvLoggingFormat.
const EnvTelemetryEndpoint = "MSC_TELEMETRY_ENDPOINT"

const defaultServiceName = "msc"

var ErrCfgBytesEmpty = errors.New("config bytes is empty")

// validation errors
var (
	ErrInvalidLevel      = errors.New("invalid logging level")
	ErrInvalidFormat     = errors.New("invalid logging format")
	ErrUnknownPermission = errors.New("unknown permission")
	ErrUnknownDefault    = errors.New("default context is not granted")
)

// Config is the root of the configuration document.
type Config struct {
	Logging   Logging   `yaml:"logging"`
	Telemetry Telemetry `yaml:"telemetry"`
	Security  Security  `yaml:"security"`
}

// Logging configures core/logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Telemetry configures the OTLP trace exporter. An empty endpoint disables export.
type Telemetry struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	CACerts     string `yaml:"ca_certs"`
}

// Security describes the permission policy. When Enabled is false no security manager
// is installed and permission checks always pass.
type Security struct {
	Enabled bool                `yaml:"enabled"`
	Default string              `yaml:"default"`
	Grants  map[string][]string `yaml:"grants"`
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	cfgBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return FromBytes(cfgBytes)
}

// FromBytes parses a YAML configuration, applies the environment overrides and
// validates the result. Unknown fields are rejected.
func FromBytes(cfgBytes []byte) (*Config, error) {
	if len(cfgBytes) == 0 {
		return nil, ErrCfgBytesEmpty
	}

	cfg := new(Config)

	dec := yaml.NewDecoder(bytes.NewReader(cfgBytes))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyEnv()

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = defaultServiceName
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) applyEnv() {
	if v, ok := os.LookupEnv(logger.EnvLoggingLevel); ok {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv(logger.EnvLoggingFormat); ok {
		cfg.Logging.Format = v
	}
	if v, ok := os.LookupEnv(EnvTelemetryEndpoint); ok {
		cfg.Telemetry.Endpoint = v
	}
}

// Validate checks the logging settings and the security grants.
func (cfg *Config) Validate() error {
	if cfg.Logging.Level != "" {
		if _, err := logrus.ParseLevel(cfg.Logging.Level); err != nil {
			return fmt.Errorf("%w: '%s'", ErrInvalidLevel, cfg.Logging.Level)
		}
	}

	switch cfg.Logging.Format {
	case "", logger.FormatJSON, logger.FormatText:
	default:
		return fmt.Errorf("%w: '%s'", ErrInvalidFormat, cfg.Logging.Format)
	}

	for name, perms := range cfg.Security.Grants {
		for _, p := range perms {
			if !knownPermission(security.Permission(p)) {
				return fmt.Errorf("%w: '%s' in grant '%s'", ErrUnknownPermission, p, name)
			}
		}
	}

	if cfg.Security.Default != "" {
		if _, ok := cfg.Security.Grants[cfg.Security.Default]; !ok {
			return fmt.Errorf("%w: '%s'", ErrUnknownDefault, cfg.Security.Default)
		}
	}

	return nil
}

// Policy builds the named access control contexts of the security grants.
func (cfg *Config) Policy() *security.Policy {
	grants := make(map[string][]security.Permission, len(cfg.Security.Grants))
	for name, perms := range cfg.Security.Grants {
		converted := make([]security.Permission, len(perms))
		for i, p := range perms {
			converted[i] = security.Permission(p)
		}
		grants[name] = converted
	}

	return security.NewPolicy(grants)
}

// SecurityManager returns the manager described by the configuration, or nil when
// security is disabled.
func (cfg *Config) SecurityManager(policy *security.Policy) (*security.Manager, error) {
	if !cfg.Security.Enabled {
		return nil, nil //nolint:nilnil
	}

	if cfg.Security.Default == "" {
		return security.NewManager(nil), nil
	}

	acc, err := policy.Context(cfg.Security.Default)
	if err != nil {
		return nil, err
	}

	return security.NewManager(acc), nil
}

// Setup configures the logger and the trace provider and returns ctx with the security
// manager installed when security is enabled, along with the policy to build lookup
// nodes from. The returned shutdown function flushes pending spans and must be called
// on exit.
func Setup(ctx context.Context, cfg *Config) (context.Context, *security.Policy, telemetry.ShutdownFunc, error) {
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, nil, nil, fmt.Errorf("configuring logger: %w", err)
	}

	policy := cfg.Policy()

	manager, err := cfg.SecurityManager(policy)
	if err != nil {
		return nil, nil, nil, err
	}

	shutdown, err := telemetry.InstallTraceProvider(
		cfg.Telemetry.Endpoint,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.CACerts,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("installing trace provider: %w", err)
	}

	if manager != nil {
		ctx = security.WithManager(ctx, manager)
	}

	logger.Logger().WithFields(logrus.Fields{
		"security": cfg.Security.Enabled,
		"grants":   policy.Names(),
	}).Info("value resolution configured")

	return ctx, policy, shutdown, nil
}

func knownPermission(p security.Permission) bool {
	switch p {
	case security.AccessDeclaredMembers, security.SuppressAccessChecks, security.AllPermission:
		return true
	default:
		return false
	}
}
