package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — конфигурация веб-фронтенда
type Config struct {
	Env        string           `yaml:"env" env-default:"development"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Gateways   GatewaysConfig   `yaml:"gateways"`
	Session    SessionConfig    `yaml:"session"`
	CSRF       CSRFConfig       `yaml:"csrf"`
	Admin      AdminConfig      `yaml:"admin"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// GatewaysConfig адреса удаленных шлюзов
type GatewaysConfig struct {
	AuthURL    string        `yaml:"auth_url" env:"AUTH_GATEWAY_URL" env-required:"true"`
	GiftsURL   string        `yaml:"gifts_url" env:"GIFTS_GATEWAY_URL" env-required:"true"`
	AdminURL   string        `yaml:"admin_url" env:"ADMIN_GATEWAY_URL" env-required:"true"`
	RewardsURL string        `yaml:"rewards_url" env:"REWARDS_GATEWAY_URL"` // пусто - ежедневная награда выключена
	Timeout    time.Duration `yaml:"timeout" env-default:"10s"`
}

// SessionConfig настройка cookie с сессией
type SessionConfig struct {
	CookieName string        `yaml:"cookie_name" env-default:"subculture_session"`
	TTL        time.Duration `yaml:"ttl" env-default:"168h"`
	Secret     string        `yaml:"-" env:"SESSION_SECRET" env-required:"true"`
	Secure     bool          `yaml:"secure" env-default:"false"`
}

// CSRFConfig настройка защиты форм
type CSRFConfig struct {
	Key    string `yaml:"-" env:"CSRF_KEY" env-required:"true"` // 32 байта
	Secure bool   `yaml:"secure" env-default:"false"`
}

type AdminConfig struct {
	ShowPasswordHashes bool `yaml:"show_password_hashes" env-default:"false"`
}

// GatewayConfig — конфигурация эталонного бэкенда шлюзов
type GatewayConfig struct {
	Env        string           `yaml:"env" env-default:"development"`
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Economy    EconomyConfig    `yaml:"economy"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// EconomyConfig стартовый баланс и размер ежедневной награды
type EconomyConfig struct {
	StartBalance int `yaml:"start_balance" env-default:"1000"`
	DailyReward  int `yaml:"daily_reward" env-default:"100"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

// MustLoadGateway то же самое для бэкенда шлюзов
func MustLoadGateway() *GatewayConfig {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadGatewayByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	var cfg Config
	mustRead(configPath, &cfg)
	return &cfg
}

func MustLoadGatewayByPath(configPath string) *GatewayConfig {
	var cfg GatewayConfig
	mustRead(configPath, &cfg)
	return &cfg
}

func mustRead(configPath string, cfg any) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
		log.Fatalf("can't read config file %s: %v", configPath, err)
	}
}
