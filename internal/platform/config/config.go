package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendHTTP   = "http"
	BackendNeo4j  = "neo4j"
	BackendSQLite = "sqlite"
)

type Config struct {
	DataDir  string         `yaml:"-"`
	Source   string         `yaml:"-"`
	Doctor   string         `yaml:"doctor"`
	Backend  BackendConfig  `yaml:"backend"`
	Search   SearchConfig   `yaml:"search"`
	Viewport ViewportConfig `yaml:"viewport"`
	Notify   NotifyConfig   `yaml:"notify"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type BackendConfig struct {
	Kind       string        `yaml:"kind"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	SQLitePath string        `yaml:"sqlite_path"`
	Neo4j      Neo4jConfig   `yaml:"neo4j"`
	Breaker    BreakerConfig `yaml:"breaker"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// BreakerConfig tunes the circuit breaker in front of the REST backend.
type BreakerConfig struct {
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	MinRequests      uint32        `yaml:"min_requests"`
	FailureThreshold float64       `yaml:"failure_threshold"`
}

type SearchConfig struct {
	MinQueryLength int           `yaml:"min_query_length"`
	Debounce       time.Duration `yaml:"debounce"`
}

type ViewportConfig struct {
	NodeShape    string        `yaml:"node_shape"`
	NodeSize     int           `yaml:"node_size"`
	FontSize     int           `yaml:"font_size"`
	BorderWidth  int           `yaml:"border_width"`
	EdgeWidth    int           `yaml:"edge_width"`
	ArrowScale   float64       `yaml:"arrow_scale"`
	Physics      PhysicsConfig `yaml:"physics"`
	Hover        bool          `yaml:"hover"`
	TooltipDelay time.Duration `yaml:"tooltip_delay"`
}

type PhysicsConfig struct {
	Enabled               bool    `yaml:"enabled"`
	GravitationalConstant float64 `yaml:"gravitational_constant"`
	SpringConstant        float64 `yaml:"spring_constant"`
	SpringLength          float64 `yaml:"spring_length"`
	Iterations            int     `yaml:"iterations"`
}

type NotifyConfig struct {
	Duration time.Duration `yaml:"duration"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default(dataDir string) Config {
	return Config{
		DataDir: dataDir,
		Source:  "defaults",
		Doctor:  "Dr. Smith",
		Backend: BackendConfig{
			Kind:       BackendSQLite,
			BaseURL:    "http://localhost:8502",
			SQLitePath: filepath.Join(dataDir, "medgraph.db"),
			Neo4j: Neo4jConfig{
				URI:      "neo4j://localhost:7687",
				Username: "neo4j",
				Database: "neo4j",
			},
			Breaker: BreakerConfig{
				MaxRequests:      5,
				Interval:         30 * time.Second,
				Timeout:          60 * time.Second,
				MinRequests:      5,
				FailureThreshold: 0.8,
			},
		},
		Search: SearchConfig{
			MinQueryLength: 2,
			Debounce:       300 * time.Millisecond,
		},
		Viewport: ViewportConfig{
			NodeShape:   "dot",
			NodeSize:    20,
			FontSize:    14,
			BorderWidth: 2,
			EdgeWidth:   2,
			ArrowScale:  0.5,
			Physics: PhysicsConfig{
				Enabled:               true,
				GravitationalConstant: -8000,
				SpringConstant:        0.001,
				SpringLength:          200,
				Iterations:            60,
			},
			Hover:        true,
			TooltipDelay: 200 * time.Millisecond,
		},
		Notify: NotifyConfig{Duration: 5 * time.Second},
		Log: LogConfig{
			Path:  filepath.Join(dataDir, "medgraph.log"),
			Level: "info",
		},
	}
}

// Load layers defaults, the YAML file at path (or <dataDir>/config.yaml when
// path is empty) and environment variables, in that order.
func Load(dataDir, path string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Default(dataDir)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(dataDir, "config.yaml")
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Source = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set("MEDGRAPH_BACKEND", &cfg.Backend.Kind)
	set("MEDGRAPH_API_URL", &cfg.Backend.BaseURL)
	set("MEDGRAPH_SQLITE_PATH", &cfg.Backend.SQLitePath)
	set("MEDGRAPH_DOCTOR", &cfg.Doctor)
	set("MEDGRAPH_LOG_LEVEL", &cfg.Log.Level)
	set("NEO4J_URI", &cfg.Backend.Neo4j.URI)
	set("NEO4J_USERNAME", &cfg.Backend.Neo4j.Username)
	set("NEO4J_PASSWORD", &cfg.Backend.Neo4j.Password)
	set("NEO4J_DATABASE", &cfg.Backend.Neo4j.Database)
}

func (c Config) Validate() error {
	switch c.Backend.Kind {
	case BackendHTTP:
		if strings.TrimSpace(c.Backend.BaseURL) == "" {
			return fmt.Errorf("backend.base_url is required for the http backend")
		}
	case BackendNeo4j:
		if strings.TrimSpace(c.Backend.Neo4j.URI) == "" {
			return fmt.Errorf("backend.neo4j.uri is required for the neo4j backend")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.Backend.SQLitePath) == "" {
			return fmt.Errorf("backend.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unsupported backend %q (want http, neo4j or sqlite)", c.Backend.Kind)
	}
	if c.Search.MinQueryLength < 1 {
		return fmt.Errorf("search.min_query_length must be at least 1")
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("search.debounce must not be negative")
	}
	if c.Notify.Duration <= 0 {
		return fmt.Errorf("notify.duration must be positive")
	}
	return nil
}
