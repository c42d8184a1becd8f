package qsim

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/theapemachine/qsim/circuit"
)

type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	StaticDir   string   `mapstructure:"static_dir"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

/*
Config carries the pool sizing, the per-run simulation bounds and the HTTP
server settings. A RateBurst of 0 turns rate limiting off. Every field can be
set from a YAML file or from QSIM_* environment variables, with nested keys
joined by underscores (QSIM_SERVER_PORT).
*/
type Config struct {
	SchedulingTimeout   time.Duration `mapstructure:"scheduling_timeout"`
	JobTimeout          time.Duration `mapstructure:"job_timeout"`
	JobTTL              time.Duration `mapstructure:"job_ttl"`
	MinWorkers          int           `mapstructure:"min_workers"`
	MaxWorkers          int           `mapstructure:"max_workers"`
	MaxQueue            int           `mapstructure:"max_queue"`
	MaxQubits           int           `mapstructure:"max_qubits"`
	MaxStabilizerQubits int           `mapstructure:"max_stabilizer_qubits"`
	RateBurst           int           `mapstructure:"rate_burst"`
	RateInterval        time.Duration `mapstructure:"rate_interval"`
	Server              ServerConfig  `mapstructure:"server"`
}

func NewConfig() *Config {
	return &Config{
		SchedulingTimeout:   10 * time.Second,
		JobTimeout:          30 * time.Second,
		JobTTL:              time.Minute,
		MinWorkers:          2,
		MaxWorkers:          8,
		MaxQueue:            80,
		MaxQubits:           10,
		MaxStabilizerQubits: 64,
		RateBurst:           0,
		RateInterval:        100 * time.Millisecond,
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        3000,
			CORSOrigins: []string{"*"},
		},
	}
}

// SetDefaults registers NewConfig's values on v so that unset keys, env
// overrides and bound flags all resolve through the same names.
func SetDefaults(v *viper.Viper) {
	d := NewConfig()
	v.SetDefault("scheduling_timeout", d.SchedulingTimeout)
	v.SetDefault("job_timeout", d.JobTimeout)
	v.SetDefault("job_ttl", d.JobTTL)
	v.SetDefault("min_workers", d.MinWorkers)
	v.SetDefault("max_workers", d.MaxWorkers)
	v.SetDefault("max_queue", d.MaxQueue)
	v.SetDefault("max_qubits", d.MaxQubits)
	v.SetDefault("max_stabilizer_qubits", d.MaxStabilizerQubits)
	v.SetDefault("rate_burst", d.RateBurst)
	v.SetDefault("rate_interval", d.RateInterval)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.static_dir", d.Server.StaticDir)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
}

// NewViper returns a viper instance with defaults and QSIM_ environment
// lookups wired in.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("qsim")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

/*
LoadConfig reads an optional YAML file into v and decodes the result. An
empty path skips the file and leaves defaults and environment in charge.
*/
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	cfg := NewConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.MinWorkers < 1:
		return fmt.Errorf("min_workers must be at least 1, got %d", c.MinWorkers)
	case c.MaxWorkers < c.MinWorkers:
		return fmt.Errorf("max_workers %d is below min_workers %d", c.MaxWorkers, c.MinWorkers)
	case c.MaxQueue < 1:
		return fmt.Errorf("max_queue must be at least 1, got %d", c.MaxQueue)
	case c.MaxQubits < 1:
		return fmt.Errorf("max_qubits must be at least 1, got %d", c.MaxQubits)
	case c.MaxQubits > circuit.StateQubitLimit:
		return fmt.Errorf(
			"max_qubits %d exceeds %d: each gate is a dense 2^n x 2^n matrix and would not fit in memory",
			c.MaxQubits, circuit.StateQubitLimit,
		)
	case c.MaxStabilizerQubits < 1:
		return fmt.Errorf("max_stabilizer_qubits must be at least 1, got %d", c.MaxStabilizerQubits)
	}
	return nil
}
