package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Драйверы хранилища строк
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port        string `json:"port" env:"PORT"`
	SchemaDir   string `json:"schemaDir" env:"SCHEMA_DIR"` // пусто: встроенная схема
	Driver      string `json:"driver" env:"DRIVER"`        // memory | postgres | sqlite
	DBURL       string `json:"dbUrl" env:"DB_URL"`
	SQLitePath  string `json:"sqlitePath" env:"SQLITE_PATH"`
	AutoMigrate bool   `json:"autoMigrate" env:"AUTO_MIGRATE"`
	SeedFile    string `json:"seedFile" env:"SEED_FILE"`

	LogLevel  string `json:"logLevel" env:"LOG_LEVEL"`
	LogFormat string `json:"logFormat" env:"LOG_FORMAT"` // console | json
}

func def() Config {
	return Config{
		Port:        "8080",
		Driver:      DriverMemory,
		SQLitePath:  "taskboard.db",
		AutoMigrate: true,
		SeedFile:    "",
		LogLevel:    "info",
		LogFormat:   "console",
	}
}

func loadJSON(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, c)
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.DBURL) == "" {
			return fmt.Errorf("driver %s requires db url", c.Driver)
		}
	default:
		return fmt.Errorf("unknown driver %q (allowed: memory|postgres|sqlite)", c.Driver)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q (allowed: console|json)", c.LogFormat)
	}
	return nil
}

// Load читает JSON по указанному пути, потом применяет ENV (TASKBOARD_*) и флаги.
func Load(jsonPath string, args []string, environ map[string]string) (Config, error) {
	cfg := def()

	fs := flag.NewFlagSet("taskboard", flag.ContinueOnError)
	configPath := fs.String("config", jsonPath, "Path to config JSON")
	port := fs.String("port", "", "HTTP port")
	schema := fs.String("schema", "", "Path to schema DSL directory (empty = embedded)")
	driver := fs.String("driver", "", "Row store driver (memory/postgres/sqlite)")
	db := fs.String("db", "", "Postgres URL")
	sqlitePath := fs.String("sqlite", "", "SQLite database path")
	auto := fs.String("auto-migrate", "", "Create tables on start (true/false)")
	seedFile := fs.String("seed", "", "YAML fixtures to load on start")
	logLevel := fs.String("log-level", "", "Log level (debug/info/warn/error)")
	logFormat := fs.String("log-format", "", "Log format (console/json)")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	// JSON (если файл существует)
	if st, err := os.Stat(*configPath); err == nil && !st.IsDir() {
		if err := loadJSON(*configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", *configPath, err)
		}
	}

	// ENV overrides
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "TASKBOARD_", Environment: environ}); err != nil {
		return cfg, fmt.Errorf("config env: %w", err)
	}

	// Flags overrides: только явно заданные
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["port"] {
		cfg.Port = strings.TrimSpace(*port)
	}
	if set["schema"] {
		cfg.SchemaDir = strings.TrimSpace(*schema)
	}
	if set["driver"] {
		cfg.Driver = strings.TrimSpace(*driver)
	}
	if set["db"] {
		cfg.DBURL = strings.TrimSpace(*db)
	}
	if set["sqlite"] {
		cfg.SQLitePath = strings.TrimSpace(*sqlitePath)
	}
	if set["auto-migrate"] {
		b, err := strconv.ParseBool(strings.TrimSpace(*auto))
		if err != nil {
			return cfg, fmt.Errorf("auto-migrate: %w", err)
		}
		cfg.AutoMigrate = b
	}
	if set["seed"] {
		cfg.SeedFile = strings.TrimSpace(*seedFile)
	}
	if set["log-level"] {
		cfg.LogLevel = strings.TrimSpace(*logLevel)
	}
	if set["log-format"] {
		cfg.LogFormat = strings.TrimSpace(*logFormat)
	}

	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	return cfg, cfg.Validate()
}
