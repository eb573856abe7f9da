package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the kiosk configuration.
type Config struct {
	Kiosk    KioskConfig    `yaml:"kiosk"`
	Content  ContentConfig  `yaml:"content"`
	Command  CommandConfig  `yaml:"command"`
	Storage  StorageConfig  `yaml:"storage"`
	Speech   SpeechConfig   `yaml:"speech"`
	Feedback FeedbackConfig `yaml:"feedback"`
	Printer  PrinterConfig  `yaml:"printer"`
	Audio    AudioConfig    `yaml:"audio"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Admin    AdminConfig    `yaml:"admin"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File  string `yaml:"file"`  // optional log file in addition to stderr
}

// KioskConfig holds the listen loop and quota settings.
type KioskConfig struct {
	DailyLimit         int    `yaml:"daily_limit"`
	ListenTimeoutSec   int    `yaml:"listen_timeout_sec"`
	PhraseTimeLimitSec int    `yaml:"phrase_time_limit_sec"`
	Language           string `yaml:"language"`
	RetryDelayMs       int    `yaml:"retry_delay_ms"`
	Timezone           string `yaml:"timezone"` // IANA name; empty = host local time
}

// ContentConfig holds the content gate settings.
type ContentConfig struct {
	MaxLength        int      `yaml:"max_length"`
	MaxRepeat        int      `yaml:"max_repeat"`
	BlockedTerms     []string `yaml:"blocked_terms"`
	SafeTerms        []string `yaml:"safe_terms"`
	EducationalTerms []string `yaml:"educational_terms"`
	Suggestions      []string `yaml:"suggestions"`
}

// CommandConfig holds the print-intent keyword sets.
type CommandConfig struct {
	PrintKeywords   []string `yaml:"print_keywords"`
	PictureKeywords []string `yaml:"picture_keywords"`
}

// StorageConfig holds quota persistence settings.
type StorageConfig struct {
	Driver           string   `yaml:"driver"` // file, sqlite, valkey, redis (default: file)
	Path             string   `yaml:"path"`   // file or sqlite path
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Key              string   `yaml:"key"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SpeechConfig selects the speech source.
type SpeechConfig struct {
	Driver string `yaml:"driver"` // console, openai (default: console)
	Model  string `yaml:"model"`
}

// FeedbackConfig selects the feedback sink.
type FeedbackConfig struct {
	Driver    string            `yaml:"driver"` // log, openai (default: log)
	AssetsDir string            `yaml:"assets_dir"`
	Model     string            `yaml:"model"`
	Voice     string            `yaml:"voice"`
	Speed     float64           `yaml:"speed"`
	Messages  map[string]string `yaml:"messages"`
}

// PrinterConfig selects the print sink.
type PrinterConfig struct {
	Driver     string `yaml:"driver"` // cups, spool (default: spool)
	Name       string `yaml:"name"`   // CUPS destination; empty = system default
	SpoolDir   string `yaml:"spool_dir"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// AudioConfig holds the external recorder and player commands.
type AudioConfig struct {
	RecordCommand []string `yaml:"record_command"`
	PlayCommand   []string `yaml:"play_command"`
	PlayMP3       []string `yaml:"play_mp3_command"`
}

// OpenAIConfig holds the OpenAI-compatible API settings shared by STT and TTS.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// AdminConfig holds the admin HTTP API settings.
type AdminConfig struct {
	Enabled           bool     `yaml:"enabled"`
	Port              int      `yaml:"port"`
	APIKeys           []string `yaml:"api_keys"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
	ReadTimeoutSec    int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec   int      `yaml:"write_timeout_sec"`
	ShutdownSec       int      `yaml:"shutdown_timeout_sec"`
}

// ListenTimeout returns the listen timeout as a duration.
func (k KioskConfig) ListenTimeout() time.Duration {
	return time.Duration(k.ListenTimeoutSec) * time.Second
}

// PhraseTimeLimit returns the maximum recorded phrase length.
func (k KioskConfig) PhraseTimeLimit() time.Duration {
	return time.Duration(k.PhraseTimeLimitSec) * time.Second
}

// RetryDelay returns the pause after a failed cycle.
func (k KioskConfig) RetryDelay() time.Duration {
	return time.Duration(k.RetryDelayMs) * time.Millisecond
}

// Location resolves the configured day-boundary time zone.
func (k KioskConfig) Location() (*time.Location, error) {
	if k.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(k.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", k.Timezone, err)
	}
	return loc, nil
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Kiosk.DailyLimit == 0 {
		c.Kiosk.DailyLimit = 10
	}
	if c.Kiosk.ListenTimeoutSec <= 0 {
		c.Kiosk.ListenTimeoutSec = 5
	}
	if c.Kiosk.PhraseTimeLimitSec <= 0 {
		c.Kiosk.PhraseTimeLimitSec = 10
	}
	if c.Kiosk.Language == "" {
		c.Kiosk.Language = "fi-FI"
	}
	if c.Kiosk.RetryDelayMs <= 0 {
		c.Kiosk.RetryDelayMs = 1000
	}

	if c.Content.MaxLength <= 0 {
		c.Content.MaxLength = 200
	}
	if c.Content.MaxRepeat <= 0 {
		c.Content.MaxRepeat = 5
	}
	if c.Content.BlockedTerms == nil {
		c.Content.BlockedTerms = []string{"perkele", "helvetti", "saatana", "vittu", "jumalauta"}
	}
	if c.Content.SafeTerms == nil {
		c.Content.SafeTerms = []string{
			"kissa", "koira", "lintu", "kukka", "aurinko", "kuu", "tähti",
			"perhe", "ystävä", "leikki", "kirja", "väri", "numero",
			"eläin", "kala", "perhonen", "sieni", "puu", "lehti",
		}
	}
	if c.Content.EducationalTerms == nil {
		c.Content.EducationalTerms = []string{
			"oppi", "laske", "kirjain", "numero", "väri", "muoto",
			"historia", "tiede", "luonto", "matematiikka", "lukeminen",
		}
	}
	if c.Content.Suggestions == nil {
		c.Content.Suggestions = []string{
			"Mitä jos tulostaisimme kuvan kissasta?",
			"Haluaisitko tulostaa värityskuvan?",
			"Voisimme tulostaa hauskan tarinan!",
			"Mitä jos tehdään kuva perhosesta?",
		}
	}

	if c.Command.PrintKeywords == nil {
		c.Command.PrintKeywords = []string{"tulosta", "kirjoita", "piirtää", "kuva", "tee"}
	}
	if c.Command.PictureKeywords == nil {
		c.Command.PictureKeywords = []string{"kuva", "piirros"}
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case "sqlite":
			c.Storage.Path = "data/kidprint.db"
		default:
			c.Storage.Path = "data/daily_usage.json"
		}
	}
	if c.Storage.Key == "" {
		c.Storage.Key = "kidprint:quota"
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}

	if c.Speech.Driver == "" {
		c.Speech.Driver = "console"
	}
	if c.Speech.Model == "" {
		c.Speech.Model = "whisper-1"
	}

	if c.Feedback.Driver == "" {
		c.Feedback.Driver = "log"
	}
	if c.Feedback.Model == "" {
		c.Feedback.Model = "tts-1"
	}
	if c.Feedback.Voice == "" {
		c.Feedback.Voice = "alloy"
	}
	if c.Feedback.Speed <= 0 {
		c.Feedback.Speed = 0.9
	}

	if c.Printer.Driver == "" {
		c.Printer.Driver = "spool"
	}
	if c.Printer.SpoolDir == "" {
		c.Printer.SpoolDir = "data/spool"
	}
	if c.Printer.TimeoutSec <= 0 {
		c.Printer.TimeoutSec = 30
	}

	if len(c.Audio.RecordCommand) == 0 {
		c.Audio.RecordCommand = []string{"arecord", "-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "wav"}
	}
	if len(c.Audio.PlayCommand) == 0 {
		c.Audio.PlayCommand = []string{"aplay", "-q", "-"}
	}
	if len(c.Audio.PlayMP3) == 0 {
		c.Audio.PlayMP3 = []string{"mpg123", "-q", "-"}
	}

	if c.Admin.Port <= 0 {
		c.Admin.Port = 8088
	}
	if c.Admin.RequestsPerMinute <= 0 {
		c.Admin.RequestsPerMinute = 60
	}
	if c.Admin.ReadTimeoutSec <= 0 {
		c.Admin.ReadTimeoutSec = 10
	}
	if c.Admin.WriteTimeoutSec <= 0 {
		c.Admin.WriteTimeoutSec = 10
	}
	if c.Admin.ShutdownSec <= 0 {
		c.Admin.ShutdownSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Kiosk.DailyLimit <= 0 {
		return fmt.Errorf("kiosk.daily_limit must be positive, got %d", c.Kiosk.DailyLimit)
	}
	if _, err := c.Kiosk.Location(); err != nil {
		return fmt.Errorf("kiosk.timezone: %w", err)
	}
	if len(c.Command.PrintKeywords) == 0 {
		return fmt.Errorf("command.print_keywords must not be empty")
	}

	switch c.Storage.Driver {
	case "file", "sqlite":
	case "valkey", "redis":
		if len(c.Storage.Addrs) == 0 {
			return fmt.Errorf("storage.addrs is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver must be one of file, sqlite, valkey, redis, got %q", c.Storage.Driver)
	}

	switch c.Speech.Driver {
	case "console", "openai":
	default:
		return fmt.Errorf("speech.driver must be \"console\" or \"openai\", got %q", c.Speech.Driver)
	}
	switch c.Feedback.Driver {
	case "log", "openai":
	default:
		return fmt.Errorf("feedback.driver must be \"log\" or \"openai\", got %q", c.Feedback.Driver)
	}
	if (c.Speech.Driver == "openai" || c.Feedback.Driver == "openai") && c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required when an openai driver is selected")
	}

	switch c.Printer.Driver {
	case "cups", "spool":
	default:
		return fmt.Errorf("printer.driver must be \"cups\" or \"spool\", got %q", c.Printer.Driver)
	}

	if c.Admin.Enabled && c.Admin.Port > 65535 {
		return fmt.Errorf("admin.port must be between 1 and 65535, got %d", c.Admin.Port)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
