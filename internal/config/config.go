package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig содержит конфигурацию приложения
type AppConfig struct {
	ServerPort  string
	GinMode     string
	KafkaEnable bool
	KafkaBroker string
	KafkaTopic  string
	Device      DeviceConfig
	Logging     LoggerConfig
}

// DeviceConfig содержит настройки подключения к контроллеру DMC
type DeviceConfig struct {
	Address        string
	CommandTimeout time.Duration
	PollInterval   time.Duration
	ArrayChunkSize int
	ChunkRetries   int
	FaultLimit     int
	MaxJogSpeed    float64
	AlertCapacity  int
}

// LoggerConfig содержит настройки логгера
type LoggerConfig struct {
	Level string
}

// LoadConfiguration загружает конфигурацию из .env файла или переменных окружения
func LoadConfiguration() (*AppConfig, error) {
	_ = godotenv.Load()

	config := &AppConfig{
		ServerPort:  getEnv("APP_PORT", "8082"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		KafkaEnable: getEnvAsBool("KAFKA_ENABLE", false),
		KafkaBroker: getEnv("KAFKA_BROKER", "localhost:9092"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "dmc_status"),
		Device: DeviceConfig{
			Address:        getEnv("DMC_ADDRESS", "192.168.0.50:23"),
			CommandTimeout: time.Duration(getEnvAsInt("DMC_TIMEOUT_MS", 1000)) * time.Millisecond,
			PollInterval:   time.Duration(getEnvAsInt("DMC_POLL_INTERVAL_MS", 100)) * time.Millisecond,
			ArrayChunkSize: getEnvAsInt("DMC_ARRAY_CHUNK_SIZE", 50),
			ChunkRetries:   getEnvAsInt("DMC_CHUNK_RETRY_LIMIT", 3),
			FaultLimit:     getEnvAsInt("DMC_FAULT_LIMIT", 5),
			MaxJogSpeed:    float64(getEnvAsInt("DMC_MAX_JOG_SPEED", 100000)),
			AlertCapacity:  getEnvAsInt("DMC_ALERT_CAPACITY", 100),
		},
		Logging: LoggerConfig{
			Level: getEnv("LOGGER_LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(name string, defaultValue int) int {
	valueStr := getEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	val, _ := strconv.ParseBool(value)
	return val
}
