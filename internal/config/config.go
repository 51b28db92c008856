package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

// Snapshot store backends
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

const (
	defaultListingsFile = "configs/listings.yaml"
	defaultBaseURL      = "https://eu-careers.europa.eu/en/job-opportunities/open-for-application"
	defaultMaxPages     = 100
)

// Config contains runtime settings for the crawler and the MCP server
type Config struct {
	LogLevel string
	Host     string // default 0.0.0.0
	Port     string // default PORT env or 8080

	Listing struct {
		BaseURL   string
		PageParam string
		UserAgent string
		MaxPages  int
	}
	ListingsFile string
	Listings     []domain.Listing

	Snapshot struct {
		Store           string // file, redis or memory
		Dir             string
		Delimiter       string
		ArchiveRawPages bool
	}
	Redis struct {
		Addr   string
		Prefix string
	}

	DatabaseURL string
	Neo4j       struct {
		URI      string
		Username string
		Password string
	}

	Telegram struct {
		Token  string
		ChatID int64
	}
	Kafka struct {
		Broker string
		Topic  string
	}
	Sheets struct {
		CredentialsPath string
		SpreadsheetID   string
		Range           string
	}
}

// Load reads an optional .env file, then environment variables and the listings file
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		LogLevel:     "info",
		Host:         "0.0.0.0",
		Port:         "8080",
		ListingsFile: defaultListingsFile,
	}
	cfg.Listing.BaseURL = defaultBaseURL
	cfg.Listing.PageParam = "page"
	cfg.Listing.MaxPages = defaultMaxPages
	cfg.Snapshot.Store = StoreFile
	cfg.Snapshot.Dir = "data"
	cfg.Snapshot.Delimiter = "|"

	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.Host, "MCP_HOST")
	setString(&cfg.Port, "PORT")

	setString(&cfg.Listing.BaseURL, "LISTING_BASE_URL")
	setString(&cfg.Listing.PageParam, "LISTING_PAGE_PARAM")
	setString(&cfg.Listing.UserAgent, "LISTING_USER_AGENT")
	setString(&cfg.ListingsFile, "LISTINGS_FILE")

	setString(&cfg.Snapshot.Store, "SNAPSHOT_STORE")
	cfg.Snapshot.Store = strings.ToLower(cfg.Snapshot.Store)
	setString(&cfg.Snapshot.Dir, "SNAPSHOT_DIR")
	setString(&cfg.Snapshot.Delimiter, "SNAPSHOT_DELIMITER")

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Prefix = os.Getenv("REDIS_PREFIX")

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.Neo4j.URI = os.Getenv("NEO4J_URI")
	cfg.Neo4j.Username = os.Getenv("NEO4J_USERNAME")
	cfg.Neo4j.Password = os.Getenv("NEO4J_PASSWORD")

	cfg.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Sheets.CredentialsPath = os.Getenv("SHEETS_CREDENTIALS_PATH")
	cfg.Sheets.SpreadsheetID = os.Getenv("SHEETS_SPREADSHEET_ID")
	cfg.Sheets.Range = os.Getenv("SHEETS_RANGE")

	var invalid []string

	if v := os.Getenv("LISTING_MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > defaultMaxPages {
			invalid = append(invalid, "LISTING_MAX_PAGES")
		} else {
			cfg.Listing.MaxPages = n
		}
	}

	if v := os.Getenv("ARCHIVE_RAW_PAGES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, "ARCHIVE_RAW_PAGES")
		} else {
			cfg.Snapshot.ArchiveRawPages = b
		}
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			invalid = append(invalid, "TELEGRAM_CHAT_ID")
		} else {
			cfg.Telegram.ChatID = id
		}
	}

	if len([]rune(cfg.Snapshot.Delimiter)) != 1 || strings.ContainsAny(cfg.Snapshot.Delimiter, "\r\n") {
		invalid = append(invalid, "SNAPSHOT_DELIMITER")
	}

	switch cfg.Snapshot.Store {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		invalid = append(invalid, "SNAPSHOT_STORE")
	}

	if _, err := url.ParseRequestURI(cfg.Listing.BaseURL); err != nil {
		invalid = append(invalid, "LISTING_BASE_URL")
	}

	if len(invalid) > 0 {
		return cfg, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	var missingVars []string

	if cfg.Snapshot.Store == StoreRedis && cfg.Redis.Addr == "" {
		missingVars = append(missingVars, "REDIS_ADDR")
	}

	if cfg.Neo4j.URI != "" {
		if cfg.Neo4j.Username == "" {
			missingVars = append(missingVars, "NEO4J_USERNAME")
		}
		if cfg.Neo4j.Password == "" {
			missingVars = append(missingVars, "NEO4J_PASSWORD")
		}
	}

	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID == 0 {
		missingVars = append(missingVars, "TELEGRAM_CHAT_ID")
	}

	if cfg.Kafka.Broker != "" && cfg.Kafka.Topic == "" {
		missingVars = append(missingVars, "KAFKA_TOPIC")
	}

	if cfg.Sheets.SpreadsheetID != "" && cfg.Sheets.CredentialsPath == "" {
		missingVars = append(missingVars, "SHEETS_CREDENTIALS_PATH")
	}

	if len(missingVars) > 0 {
		return cfg, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	listings, err := LoadListings(cfg.ListingsFile)
	if err != nil {
		return cfg, err
	}
	cfg.Listings = listings

	return cfg, nil
}

// Neo4jEnabled reports whether Neo4j persistence is configured
func (c Config) Neo4jEnabled() bool {
	return c.Neo4j.URI != ""
}

// SiteURL is the scheme and host of the listing base URL, used to resolve relative job links
func (c Config) SiteURL() string {
	u, err := url.Parse(c.Listing.BaseURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// FindListing returns the configured listing with code
func (c Config) FindListing(code string) (domain.Listing, bool) {
	for _, l := range c.Listings {
		if l.Code == code {
			return l, true
		}
	}
	return domain.Listing{}, false
}

type listingsFile struct {
	Listings []domain.Listing `yaml:"listings"`
}

// LoadListings reads and validates the listings YAML file
func LoadListings(path string) ([]domain.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read listings file: %w", err)
	}
	return ParseListings(data)
}

// ParseListings decodes a listings document; codes must be unique and non-empty
func ParseListings(data []byte) ([]domain.Listing, error) {
	var f listingsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse listings: %w", err)
	}
	if len(f.Listings) == 0 {
		return nil, fmt.Errorf("parse listings: no listings configured")
	}

	seen := make(map[string]struct{}, len(f.Listings))
	for i, l := range f.Listings {
		code := strings.TrimSpace(l.Code)
		if code == "" || strings.ContainsAny(code, `/\`) {
			return nil, fmt.Errorf("parse listings: listing %d: invalid code %q", i, l.Code)
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("parse listings: duplicate code %q", code)
		}
		if l.PositionType != "" && !l.PositionType.Valid() {
			return nil, fmt.Errorf("parse listings: listing %q: unknown position type %q", code, l.PositionType)
		}
		seen[code] = struct{}{}
		f.Listings[i].Code = code
	}

	return f.Listings, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
