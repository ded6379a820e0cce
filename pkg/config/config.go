package config

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

func New() Config {
	return Config{
		Environment: requireEnv("ENVIRONMENT"),
		BasePath:    requireEnv("BASE_PATH"),
		Logger: Logger{
			Level:       getEnvWithDefault("LOG_LEVEL", "info"),
			PrettyPrint: getEnvAsBoolWithDefault("LOG_PRETTY", false),
		},
		Postgresql: Postgresql{
			Host:         requireEnv("DATABASE_HOST"),
			Port:         requireEnvAsInt("DATABASE_PORT"),
			Username:     requireEnv("DATABASE_USERNAME"),
			Password:     requireEnv("DATABASE_PASSWORD"),
			DatabaseName: requireEnv("DATABASE_NAME"),
		},
		RabbitMqURL: RabbitMQ{
			Host:     requireEnv("RABBITMQ_HOST"),
			Port:     requireEnvAsInt("RABBITMQ_PORT"),
			Username: requireEnv("RABBITMQ_USERNAME"),
			Password: requireEnv("RABBITMQ_PASSWORD"),
		},
		Redis: Redis{
			Host: requireEnv("REDIS_HOST"),
			Port: requireEnvAsInt("REDIS_PORT"),
		},
		Authentication: Authentication{
			PrivateKey:                   requireEnv("PRIVATE_KEY"),
			AccessTokenExpirationSeconds: requireEnvAsInt("ACCESS_TOKEN_EXPIRATION_IN_SECONDS"),
		},
		AdminUser: User{
			Username: requireEnv("ADMIN_USER_USERNAME"),
			Password: requireEnv("ADMIN_USER_PASSWORD"),
		},
		AgeIdentity: requireEnv("AGE_IDENTITY"),
		S3: S3{
			Bucket: os.Getenv("S3_BUCKET"),
			Region: getEnvWithDefault("AWS_REGION", "eu-west-1"),
		},
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvAsIntWithDefault("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnvWithDefault("SMTP_FROM", "SkyPortal <no-reply@skyportal.io>"),
		},
		TNS: TNS{
			URL:           getEnvWithDefault("TNS_URL", "https://www.wis-tns.org"),
			SandboxURL:    getEnvWithDefault("TNS_SANDBOX_URL", "https://sandbox.wis-tns.org"),
			MappingFile:   os.Getenv("TNS_MAPPING_FILE"),
			RateLimit:     getEnvAsIntWithDefault("TNS_RATE_LIMIT", 10),
			RateWindowSec: getEnvAsIntWithDefault("TNS_RATE_WINDOW_SECONDS", 60),
		},
		Hermes: Hermes{
			URL:   getEnvWithDefault("HERMES_URL", "https://hermes.lco.global"),
			Token: os.Getenv("HERMES_TOKEN"),
		},
		JaegerURL:                    os.Getenv("JAEGER_URL"),
		PhotometryDetectionThreshold: getEnvAsFloatWithDefault("PHOTOMETRY_DETECTION_THRESHOLD", 3),
	}
}

type Config struct {
	Environment                  string
	BasePath                     string
	Logger                       Logger
	Postgresql                   Postgresql
	RabbitMqURL                  RabbitMQ
	Redis                        Redis
	Authentication               Authentication
	AdminUser                    User
	AgeIdentity                  string
	S3                           S3
	SMTP                         SMTP
	TNS                          TNS
	Hermes                       Hermes
	JaegerURL                    string
	PhotometryDetectionThreshold float64
}

type Logger struct {
	Level       string
	PrettyPrint bool
}

// SlogLevel parses the configured level falling back to info.
func (l Logger) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

type Postgresql struct {
	Host         string
	Port         int
	Username     string
	Password     string
	DatabaseName string
}

type RabbitMQ struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (r RabbitMQ) GetUrl() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", r.Username, r.Password, r.Host, r.Port)
}

type Redis struct {
	Host string
	Port int
}

func (r Redis) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type Authentication struct {
	PrivateKey                   string
	AccessTokenExpirationSeconds int
}

// GetPrivateKey parses the PEM encoded RSA private key used to sign access tokens.
func (a Authentication) GetPrivateKey() (*rsa.PrivateKey, error) {
	decode, _ := pem.Decode([]byte(strings.ReplaceAll(a.PrivateKey, `\n`, "\n")))
	if decode == nil {
		return nil, errors.New("failed to decode private key")
	}

	if pkcs1, err := x509.ParsePKCS1PrivateKey(decode.Bytes); err == nil {
		return pkcs1, nil
	}

	privateKey, err := x509.ParsePKCS8PrivateKey(decode.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %v", err)
	}

	rsaPrivateKey, ok := privateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("failed to cast private key to *rsa.PrivateKey")
	}

	return rsaPrivateKey, nil
}

type User struct {
	Username string
	Password string
}

type S3 struct {
	Bucket string
	Region string
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type TNS struct {
	URL           string
	SandboxURL    string
	MappingFile   string
	RateLimit     int
	RateWindowSec int
}

type Hermes struct {
	URL   string
	Token string
}

func requireEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("Can't find environment variable: %s\n", key)
	}
	return value
}

func requireEnvAsInt(key string) int {
	valueStr := requireEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("Can't parse value as integer: %s", err.Error())
	}
	return value
}

func getEnvWithDefault(key string, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	return value
}

func getEnvAsIntWithDefault(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Can't parse %s as integer: %s", key, err.Error())
	}
	return i
}

func getEnvAsFloatWithDefault(key string, fallback float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatalf("Can't parse %s as float: %s", key, err.Error())
	}
	return f
}

func getEnvAsBoolWithDefault(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Fatalf("Can't parse %s as bool: %s", key, err.Error())
	}
	return b
}
