package config

import (
	"log/slog"
	"strings"

	"github.com/joho/godotenv"

	"github.com/soaringjerry/Synform/internal/utils"
)

type Config struct {
	Addr string
	// SQLitePath selects the sqlite store; empty keeps forms in memory.
	SQLitePath string
	// SnapshotPath persists the in-memory store between runs and seeds the
	// sqlite database on its first start.
	SnapshotPath  string
	MigrationsDir string
	JWTSecret     string

	LogLevel   string
	LogFile    string
	LogMaxSize int

	Languages       []string
	DefaultLanguage string
	EvalCacheSize   int

	StaticDir   string
	CORSOrigins []string

	Commit    string
	BuildTime string
}

// Load reads .env when present, then the SYNFORM_* environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := Config{
		Addr:            utils.SafeEnv("SYNFORM_ADDR", ":8080"),
		SQLitePath:      utils.SafeEnv("SYNFORM_SQLITE_PATH", ""),
		SnapshotPath:    utils.SafeEnv("SYNFORM_SNAPSHOT_PATH", ""),
		MigrationsDir:   utils.SafeEnv("SYNFORM_MIGRATIONS_DIR", ""),
		JWTSecret:       utils.SafeEnv("SYNFORM_JWT_SECRET", ""),
		LogLevel:        strings.ToLower(utils.SafeEnv("SYNFORM_LOG_LEVEL", "info")),
		LogFile:         utils.SafeEnv("SYNFORM_LOG_FILE", ""),
		LogMaxSize:      utils.EnvInt("SYNFORM_LOG_MAX_SIZE_MB", 50),
		Languages:       utils.EnvList("SYNFORM_LANGUAGES", []string{"EN", "RO"}),
		DefaultLanguage: utils.SafeEnv("SYNFORM_DEFAULT_LANGUAGE", "EN"),
		EvalCacheSize:   utils.EnvInt("SYNFORM_EVAL_CACHE", 256),
		StaticDir:       utils.SafeEnv("SYNFORM_STATIC_DIR", ""),
		CORSOrigins:     utils.EnvList("SYNFORM_CORS_ORIGINS", nil),
		Commit:          utils.SafeEnv("SYNFORM_COMMIT", ""),
		BuildTime:       utils.SafeEnv("SYNFORM_BUILD_TIME", ""),
	}
	cfg.normalize()
	return cfg
}

// normalize upper-cases language codes and makes sure the default language
// is listed first among the configured ones.
func (c *Config) normalize() {
	c.DefaultLanguage = strings.ToUpper(strings.TrimSpace(c.DefaultLanguage))
	seen := map[string]bool{}
	langs := make([]string, 0, len(c.Languages)+1)
	if c.DefaultLanguage != "" {
		langs = append(langs, c.DefaultLanguage)
		seen[c.DefaultLanguage] = true
	}
	for _, l := range c.Languages {
		l = strings.ToUpper(strings.TrimSpace(l))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		langs = append(langs, l)
	}
	c.Languages = langs
	if c.DefaultLanguage == "" && len(langs) > 0 {
		c.DefaultLanguage = langs[0]
	}
	if c.EvalCacheSize < 0 {
		c.EvalCacheSize = 0
	}
}
