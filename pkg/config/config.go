package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"livestock-sync/internal/livestock_sync/model"
	"livestock-sync/internal/livestock_sync/source"
)

const (
	DefaultPath   = "config/config.yaml"
	DefaultDBName = "Livestock_Data_Hub"
)

type MongoConfig struct {
	URI                    string        `yaml:"uri"`
	DBName                 string        `yaml:"dbname"`
	ServerSelectionTimeout time.Duration `yaml:"server_selection_timeout"`
}

type SyncConfig struct {
	Threshold   time.Duration `yaml:"threshold"`
	BatchLimit  int           `yaml:"batch_limit"`
	Pacing      time.Duration `yaml:"pacing"`
	Timezone    string        `yaml:"timezone"`
	AnchorHours []int         `yaml:"anchor_hours"`
}

type DetailConfig struct {
	Options []int `yaml:"options"`
}

type SourcesConfig struct {
	FarmListURL   string        `yaml:"farm_list_url"`
	AnimalListURL string        `yaml:"animal_list_url"`
	HistoryURL    string        `yaml:"history_url"`
	GradeURL      string        `yaml:"grade_url"`
	Timeout       time.Duration `yaml:"timeout"`
	FarmAPIKey    string        `yaml:"farm_api_key"`
	ServiceKey    string        `yaml:"service_key"`
}

type Credential struct {
	ID  string `yaml:"id"`
	Key string `yaml:"key"`
}

type CredentialsConfig struct {
	InstitutionMarker string     `yaml:"institution_marker"`
	Default           Credential `yaml:"default"`
	Institution       Credential `yaml:"institution"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Debug bool `yaml:"debug"`
}

type Config struct {
	Mongo       MongoConfig       `yaml:"mongo"`
	Sync        SyncConfig        `yaml:"sync"`
	Detail      DetailConfig      `yaml:"detail"`
	Sources     SourcesConfig     `yaml:"sources"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// Default 기본 설정값.
func Default() *Config {
	return &Config{
		Mongo: MongoConfig{
			DBName:                 DefaultDBName,
			ServerSelectionTimeout: 5 * time.Second,
		},
		Sync: SyncConfig{
			Threshold:   24 * time.Hour,
			BatchLimit:  500,
			Pacing:      100 * time.Millisecond,
			Timezone:    "Asia/Seoul",
			AnchorHours: []int{0, 6, 12, 18},
		},
		Detail: DetailConfig{Options: model.AllHistoryOptions()},
		Sources: SourcesConfig{
			FarmListURL:   "https://app.base44.com/api/apps/68ccb7f3c0a6ef99bbf4ad23/entities/Farm",
			AnimalListURL: "https://api.mtrace.go.kr/rest/myFarmData/farmUniqNoCattleBrdIndvd",
			HistoryURL:    "http://data.ekape.or.kr/openapi-data/service/user/animalTrace/traceNoSearch",
			GradeURL:      "http://data.ekape.or.kr/openapi-data/service/user/grade/confirm/cattle",
			Timeout:       source.DefaultTimeout,
		},
		Credentials: CredentialsConfig{InstitutionMarker: model.DefaultInstitutionMarker},
		Server:      ServerConfig{Addr: ":8080"},
	}
}

// Load reads the YAML file at path (missing file means defaults), then the optional .env
// file, then applies secrets from the environment.
func Load(path, envPath string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env %s: %w", envPath, err)
		}
	}
	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	override(&c.Mongo.URI, "MONGO_URI")
	override(&c.Sources.FarmAPIKey, "BASE44_KEY")
	override(&c.Sources.ServiceKey, "EKAPE_KEY")
	override(&c.Credentials.Default.ID, "MTRACE_ID")
	override(&c.Credentials.Default.Key, "MTRACE_KEY")
	override(&c.Credentials.Institution.ID, "CNU_MTRACE_ID")
	override(&c.Credentials.Institution.Key, "CNU_MTRACE_KEY")
}

// Validate reports the first setting that would keep the pipeline from starting.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("mongo uri is required (MONGO_URI)")
	}
	if c.Mongo.DBName == "" {
		return errors.New("mongo dbname is required")
	}
	if c.Sync.Threshold <= 0 {
		return fmt.Errorf("sync threshold must be positive, got %s", c.Sync.Threshold)
	}
	if c.Sync.BatchLimit <= 0 {
		return fmt.Errorf("sync batch_limit must be positive, got %d", c.Sync.BatchLimit)
	}
	if c.Sync.Pacing < 0 {
		return fmt.Errorf("sync pacing must not be negative, got %s", c.Sync.Pacing)
	}
	for _, h := range c.Sync.AnchorHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("sync anchor hour out of range: %d", h)
		}
	}
	if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
		return fmt.Errorf("sync timezone: %w", err)
	}
	for _, opt := range c.Detail.Options {
		if opt < 1 || opt > model.HistoryOptionCount {
			return fmt.Errorf("detail option out of range: %d", opt)
		}
	}
	return nil
}

// Location returns the schedule time zone. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Sync.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) Routing() model.CredentialRouting {
	return model.CredentialRouting{
		Default:           model.CredentialPair{ID: c.Credentials.Default.ID, Key: c.Credentials.Default.Key},
		Institution:       model.CredentialPair{ID: c.Credentials.Institution.ID, Key: c.Credentials.Institution.Key},
		InstitutionMarker: c.Credentials.InstitutionMarker,
	}
}

func (c *Config) Endpoints() source.Endpoints {
	return source.Endpoints{
		FarmListURL:   c.Sources.FarmListURL,
		AnimalListURL: c.Sources.AnimalListURL,
		HistoryURL:    c.Sources.HistoryURL,
		GradeURL:      c.Sources.GradeURL,
	}
}
