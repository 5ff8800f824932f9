package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Email    EmailConfig
	Outbox   OutboxConfig
	Sync     SyncConfig
}

// ServerConfig содержит настройки служебного HTTP-эндпоинта метрик
type ServerConfig struct {
	MetricsPort string `mapstructure:"metrics_port"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	// Для 'single', если не пуст, используется первый адрес из списка.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single' (для обратной совместимости).
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	// MaxRetries: Максимальное количество попыток переподключения (-1 - бесконечно).
	MaxRetries int `mapstructure:"max_retries"`

	// MinRetryBackoff: Минимальный интервал между попытками (в миллисекундах).
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`

	// MaxRetryBackoff: Максимальный интервал между попытками (в миллисекундах).
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// EmailConfig содержит настройки рассылки
type EmailConfig struct {
	// Enabled: при false используется noop-реализация
	Enabled      bool   `mapstructure:"enabled"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// OutboxConfig содержит настройки очереди внешних эффектов
type OutboxConfig struct {
	// BatchSize: сколько событий выбирается за один проход дренажа
	BatchSize int `mapstructure:"batch_size"`

	// MaxRetry: после стольких неудач событие исключается из выборки
	MaxRetry int `mapstructure:"max_retry"`

	// LockTTLSec: TTL координационного замка дренажа в секундах
	LockTTLSec int `mapstructure:"lock_ttl_sec"`
}

// SyncConfig содержит настройки фоновых заданий синхронизации
type SyncConfig struct {
	// ReminderIntervalHours: минимальный интервал между напоминаниями о согласии
	ReminderIntervalHours int `mapstructure:"reminder_interval_hours"`

	// GroupwareRPS: лимит запросов в секунду к внешней groupware-системе
	GroupwareRPS float64 `mapstructure:"groupware_rps"`

	// GroupwareBurst: допустимый всплеск запросов
	GroupwareBurst int `mapstructure:"groupware_burst"`

	// SnapshotTTLSec: TTL кеша снапшотов членства в секундах
	SnapshotTTLSec int `mapstructure:"snapshot_ttl_sec"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.metrics_port", "9090")
	vip.SetDefault("outbox.batch_size", 100)
	vip.SetDefault("outbox.max_retry", 10)
	vip.SetDefault("outbox.lock_ttl_sec", 300)
	vip.SetDefault("sync.reminder_interval_hours", 72)
	vip.SetDefault("sync.groupware_rps", 5)
	vip.SetDefault("sync.groupware_burst", 10)
	vip.SetDefault("sync.snapshot_ttl_sec", 60)

	// 2. Привязываем переменные окружения ЯВНО
	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции Email
	vip.BindEnv("email.enabled", "EMAIL_ENABLED")
	vip.BindEnv("email.resend_api_key", "EMAIL_RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")

	// Привязка для секции Outbox
	vip.BindEnv("outbox.batch_size", "OUTBOX_BATCH_SIZE")
	vip.BindEnv("outbox.max_retry", "OUTBOX_MAX_RETRY")
	vip.BindEnv("outbox.lock_ttl_sec", "OUTBOX_LOCK_TTL_SEC")

	// Привязка для секции Sync
	vip.BindEnv("sync.reminder_interval_hours", "SYNC_REMINDER_INTERVAL_HOURS")
	vip.BindEnv("sync.groupware_rps", "SYNC_GROUPWARE_RPS")
	vip.BindEnv("sync.groupware_burst", "SYNC_GROUPWARE_BURST")
	vip.BindEnv("sync.snapshot_ttl_sec", "SYNC_SNAPSHOT_TTL_SEC")

	// Привязка для Server
	vip.BindEnv("server.metrics_port", "SERVER_METRICS_PORT")

	// 3. Путь к файлу конфигурации
	if configPath != "" {
		vip.SetConfigFile(configPath)
		// 4. Файл не обязателен: переменных окружения и умолчаний достаточно
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
			}
		}
	}

	// 5. Раскладываем в структуру
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка демаршалинга конфигурации: %w", err)
	}

	return &cfg, nil
}
