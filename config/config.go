package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram TelegramConfig
	Filter   FilterConfig
	Dedup    DedupConfig
	Proxy    ProxyConfig
	Browser  BrowserConfig
	Server   ServerConfig
	S3       S3Config
	Patterns PatternConfig

	DBPath      string
	DatabaseURL string
	DigestCron  string
}

type TelegramConfig struct {
	BotToken       string
	ChatID         string
	DisablePreview bool
}

type FilterConfig struct {
	MinLandM2 int
}

type DedupConfig struct {
	TTL time.Duration
	// MarkPolicy decides when a URL is recorded as seen: "eager" marks
	// before the fetch (a failed render stays suppressed for the full
	// TTL), "onsuccess" marks only once the listing was consumed, so
	// transient failures and challenge blocks remain retryable.
	MarkPolicy string
}

type ProxyConfig struct {
	Server   string
	Username string
	Password string
}

type BrowserConfig struct {
	Headless     bool
	NavTimeout   time.Duration
	SettleDelay  time.Duration
	MaxTextChars int
}

type ServerConfig struct {
	ListenAddr string
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// PatternConfig accumulates site-specific extraction patterns and
// challenge markers loaded from config/patterns/*.yaml, applied on top
// of the built-ins.
type PatternConfig struct {
	LandPatterns     []string
	ChallengeMarkers []string
}

type patternPack struct {
	ID               string   `yaml:"id"`
	LandPatterns     []string `yaml:"land_patterns"`
	ChallengeMarkers []string `yaml:"challenge_markers"`
}

const patternsDir = "config/patterns"

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:         os.Getenv("TELEGRAM_CHAT_ID"),
			DisablePreview: os.Getenv("TELEGRAM_DISABLE_PREVIEW") == "true",
		},
		Filter: FilterConfig{
			MinLandM2: getEnvInt("MIN_LAND_M2", 0),
		},
		Dedup: DedupConfig{
			TTL:        time.Duration(getEnvInt("DEDUP_TTL_SECONDS", 86400)) * time.Second,
			MarkPolicy: getEnv("DEDUP_MARK_POLICY", "eager"),
		},
		Proxy: ProxyConfig{
			Server:   os.Getenv("PROXY_SERVER"),
			Username: os.Getenv("PROXY_USER"),
			Password: os.Getenv("PROXY_PASS"),
		},
		Browser: BrowserConfig{
			Headless:     os.Getenv("HEADLESS") != "false",
			NavTimeout:   time.Duration(getEnvInt("NAV_TIMEOUT_MS", 45000)) * time.Millisecond,
			SettleDelay:  time.Duration(getEnvInt("POST_LOAD_WAIT_MS", 1500)) * time.Millisecond,
			MaxTextChars: getEnvInt("MAX_TEXT_CHARS", 250000),
		},
		Server: ServerConfig{
			ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		DBPath:      getEnv("DB_PATH", "land_alert.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DigestCron:  os.Getenv("DIGEST_CRON"),
	}

	switch cfg.Dedup.MarkPolicy {
	case "eager", "onsuccess":
	default:
		return nil, fmt.Errorf("invalid DEDUP_MARK_POLICY %q (want eager or onsuccess)", cfg.Dedup.MarkPolicy)
	}

	if err := cfg.loadPatternPacks(patternsDir); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadPatternPacks(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var pack patternPack
		if err := yaml.Unmarshal(data, &pack); err != nil {
			return fmt.Errorf("parse pattern pack %s: %w", path, err)
		}

		c.Patterns.LandPatterns = append(c.Patterns.LandPatterns, pack.LandPatterns...)
		c.Patterns.ChallengeMarkers = append(c.Patterns.ChallengeMarkers, pack.ChallengeMarkers...)
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
