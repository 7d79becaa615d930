package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Env string `yaml:"env"`
	} `yaml:"server"`

	API struct {
		BaseURL            string        `yaml:"base_url"`
		Timeout            time.Duration `yaml:"timeout"`
		CreatePath         string        `yaml:"create_path"`   // /api/plans или /api/add-plan
		UpdateMethod       string        `yaml:"update_method"` // PUT или PATCH
		MaxParallelDeletes int           `yaml:"max_parallel_deletes"`
	} `yaml:"api"`

	Session struct {
		Path string `yaml:"path"`
	} `yaml:"session"`

	UI struct {
		PageSize          int           `yaml:"page_size"`
		Debounce          time.Duration `yaml:"debounce"`
		DebounceThreshold int           `yaml:"debounce_threshold"` // с какого размера списка поиск debounce-ится
		NotificationTTL   time.Duration `yaml:"notification_ttl"`
		PlanTypes         []string      `yaml:"plan_types"`
		PopularType       string        `yaml:"popular_type"`
		AnalyticsDays     int           `yaml:"analytics_days"`
		Currency          string        `yaml:"currency"` // символ в таблицах тарифов
	} `yaml:"ui"`

	Workers struct {
		RefreshSchedule      string        `yaml:"refresh_schedule"`
		SessionCheckInterval time.Duration `yaml:"session_check_interval"`
	} `yaml:"workers"`

	Pricing Pricing `yaml:"pricing"`
}

var (
	AppConfig *Config
	loadMu    sync.Mutex
)

// Default возвращает конфигурацию со всеми значениями по умолчанию
func Default() *Config {
	var cfg Config

	cfg.Server.Env = "quiet"

	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.Timeout = 10 * time.Second
	cfg.API.CreatePath = "/api/plans"
	cfg.API.UpdateMethod = "PUT"
	cfg.API.MaxParallelDeletes = 4

	cfg.Session.Path = defaultSessionPath()

	cfg.UI.PageSize = 10
	cfg.UI.Debounce = 200 * time.Millisecond
	cfg.UI.DebounceThreshold = 500
	cfg.UI.NotificationTTL = 5 * time.Second
	cfg.UI.PlanTypes = []string{"Basic", "Standard", "Premium"}
	cfg.UI.PopularType = "Standard"
	cfg.UI.AnalyticsDays = 30
	cfg.UI.Currency = "₹"

	cfg.Workers.RefreshSchedule = "@every 1m"
	cfg.Workers.SessionCheckInterval = time.Minute

	cfg.Pricing = DefaultPricing()

	return &cfg
}

// Load читает YAML (если файл есть) поверх значений по умолчанию,
// затем применяет переменные окружения.
// Отсутствующий файл не ошибка: консоль работает и без него.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to open config file at %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig загружает глобальную конфигурацию (.env -> CONFIG_PATH -> env)
func LoadConfig() (*Config, error) {
	loadMu.Lock()
	defer loadMu.Unlock()

	// .env необязателен
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, err
	}
	AppConfig = cfg
	return cfg, nil
}

func GetConfig() *Config {
	if AppConfig == nil {
		if _, err := LoadConfig(); err != nil {
			AppConfig = Default()
		}
	}
	return AppConfig
}

// Validate проверяет значения, которые нельзя молча подправить
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	switch c.API.UpdateMethod {
	case "PUT", "PATCH":
	default:
		return fmt.Errorf("api.update_method must be PUT or PATCH, got %q", c.API.UpdateMethod)
	}
	if c.UI.PageSize < 1 {
		return fmt.Errorf("ui.page_size must be positive, got %d", c.UI.PageSize)
	}
	if c.API.MaxParallelDeletes < 1 {
		c.API.MaxParallelDeletes = 1
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CONSOLE_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("CONSOLE_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("CONSOLE_SESSION_PATH"); v != "" {
		cfg.Session.Path = v
	}
	if v := os.Getenv("CONSOLE_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CONSOLE_PAGE_SIZE: %w", err)
		}
		cfg.UI.PageSize = n
	}
	return nil
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".subscription_console/session.json"
	}
	return filepath.Join(home, ".subscription_console", "session.json")
}
