package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port                string
	AppEnv              string
	AuthToken           string
	EditorToken         string
	DBURL               string
	DBMigrate           bool
	ReadTimeoutSecs     int
	WriteTimeoutSecs    int
	IdleTimeoutSecs     int
	DBMaxConns          int
	DBMinConns          int
	DBMaxIdleSecs       int
	DBMaxLifeSecs       int
	DBConnTimeoutSecs   int
	DBStatementCache    int
	AdminEnabled        bool
	AdminWriteRPS       int
	DefaultLocale       string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	OptionsCacheTTLSecs int
}

// Load reads configuration from environment variables, applying defaults and validation.
// When CONFIG_FILE points at a YAML document its values replace the built-in
// defaults; environment variables still win.
func Load() (Config, error) {
	file, err := readFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}
	env := source{file: file}

	cfg := Config{
		Port:                env.str("PORT", "8080"),
		AppEnv:              env.str("APP_ENV", "development"),
		AuthToken:           env.str("AUTH_TOKEN", ""),
		EditorToken:         env.str("EDITOR_TOKEN", ""),
		DBURL:               env.str("DB_URL", ""),
		DBMigrate:           env.boolean("DB_MIGRATE", true),
		ReadTimeoutSecs:     env.integer("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:    env.integer("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:     env.integer("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:          env.integer("DB_MAX_CONNS", 20),
		DBMinConns:          env.integer("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:       env.integer("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:       env.integer("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs:   env.integer("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:    env.integer("DB_STATEMENT_CACHE_CAPACITY", 256),
		AdminEnabled:        env.boolean("ADMIN_ENABLED", true),
		AdminWriteRPS:       env.integer("ADMIN_WRITE_RPS", 10),
		DefaultLocale:       env.str("DEFAULT_LOCALE", "en"),
		RedisAddr:           env.str("REDIS_ADDR", ""),
		RedisPassword:       env.str("REDIS_PASSWORD", ""),
		RedisDB:             env.integer("REDIS_DB", 0),
		OptionsCacheTTLSecs: env.integer("OPTIONS_CACHE_TTL_SECS", 300),
	}

	if cfg.AuthToken == "" {
		return Config{}, fmt.Errorf("AUTH_TOKEN is required")
	}
	if cfg.EditorToken != "" && cfg.EditorToken == cfg.AuthToken {
		return Config{}, fmt.Errorf("EDITOR_TOKEN must differ from AUTH_TOKEN")
	}
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if cfg.AdminWriteRPS <= 0 {
		return Config{}, fmt.Errorf("ADMIN_WRITE_RPS must be positive")
	}
	if cfg.RedisDB < 0 {
		return Config{}, fmt.Errorf("REDIS_DB must be non-negative")
	}
	if cfg.OptionsCacheTTLSecs <= 0 {
		return Config{}, fmt.Errorf("OPTIONS_CACHE_TTL_SECS must be positive")
	}
	if cfg.DefaultLocale == "" {
		return Config{}, fmt.Errorf("DEFAULT_LOCALE cannot be empty")
	}

	return cfg, nil
}

func readFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parse CONFIG_FILE: %w", err)
	}
	values := make(map[string]string, len(raw))
	for key, val := range raw {
		if val == nil {
			continue
		}
		values[key] = fmt.Sprint(val)
	}
	return values, nil
}

// source resolves a key from the environment first, then the config file.
type source struct {
	file map[string]string
}

func (s source) lookup(key string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return s.file[key]
}

func (s source) str(key, fallback string) string {
	if val := s.lookup(key); val != "" {
		return val
	}
	return fallback
}

func (s source) integer(key string, fallback int) int {
	if val := s.lookup(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func (s source) boolean(key string, fallback bool) bool {
	if val := s.lookup(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
