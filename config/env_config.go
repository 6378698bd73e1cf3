package config

import (
	"os"
	"strconv"
	"strings"
)

type EnvConfig struct {
	Postgres struct {
		Host     string
		Database string
		Username string
		Password string
		Port     string
	}
	JWT struct {
		SecretKey string
		Algorithm string
		Expire    int
	}
	CORS struct {
		AllowDomains string
		GlobalDomain string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		Database int
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	S3 struct {
		Endpoint        string
		Region          string
		AccessKeyID     string
		SecretAccessKey string
		Bucket          string
		Prefix          string
		UseSSL          bool
		PublicDomain    string
		// PreviewURLExpireIn is the TTL (seconds) of signed read URLs.
		PreviewURLExpireIn int
		// UploadURLExpireIn is the TTL (seconds) of presigned PUT URLs.
		UploadURLExpireIn  int
		UsePresignedUpload bool
	}
	OTLP struct {
		Endpoint    string
		ServiceName string
	}
	Environment struct {
		Mode string
	}
	DomainName string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.Host = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = os.Getenv("PGPOOL_PORT")
	if config.Postgres.Port == "" {
		config.Postgres.Port = "5432"
	}

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")
	config.JWT.Algorithm = os.Getenv("JWT_ALGORITHM")
	if val := os.Getenv("JWT_EXPIRE"); val != "" {
		config.JWT.Expire, _ = strconv.Atoi(val)
	} else {
		config.JWT.Expire = 3600 * 24 * 7
	}

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")
	config.CORS.GlobalDomain = os.Getenv("GLOBAL_DOMAIN")

	// Redis
	config.Redis.Host = os.Getenv("REDIS_HOST")
	if config.Redis.Host == "" {
		config.Redis.Host = "localhost"
	}
	config.Redis.Port = os.Getenv("REDIS_PORT")
	if config.Redis.Port == "" {
		config.Redis.Port = "6379"
	}
	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	if config.RabbitMQ.Host == "" {
		config.RabbitMQ.Host = "localhost"
	}
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}

	// S3 / MinIO
	config.S3.Endpoint = os.Getenv("S3_ENDPOINT")
	config.S3.Region = os.Getenv("S3_REGION")
	if config.S3.Region == "" {
		config.S3.Region = "us-east-1"
	}
	config.S3.AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	config.S3.SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	config.S3.Bucket = os.Getenv("S3_BUCKET")
	config.S3.Prefix = normalizePrefix(os.Getenv("S3_PREFIX"))
	config.S3.UseSSL = os.Getenv("S3_USE_SSL") == "true"
	config.S3.PublicDomain = os.Getenv("S3_PUBLIC_DOMAIN")
	if val, err := strconv.Atoi(os.Getenv("S3_PREVIEW_URL_EXPIRE_IN")); err == nil && val > 0 {
		config.S3.PreviewURLExpireIn = val
	} else {
		config.S3.PreviewURLExpireIn = 7200
	}
	if val, err := strconv.Atoi(os.Getenv("S3_UPLOAD_URL_EXPIRE_IN")); err == nil && val > 0 {
		config.S3.UploadURLExpireIn = val
	} else {
		config.S3.UploadURLExpireIn = 900
	}
	config.S3.UsePresignedUpload = os.Getenv("USE_PRESIGNED_UPLOAD") == "true"

	// OTLP
	otlpEndpoint := os.Getenv("OTLP_ENDPOINT")
	otlpEndpoint = strings.TrimPrefix(otlpEndpoint, "https://")
	otlpEndpoint = strings.TrimPrefix(otlpEndpoint, "http://")
	config.OTLP.Endpoint = otlpEndpoint
	config.OTLP.ServiceName = os.Getenv("SERVICE_NAME")
	if config.OTLP.ServiceName == "" {
		config.OTLP.ServiceName = "docnest-upload-service"
	}

	config.Environment.Mode = os.Getenv("DEPLOY_ENV")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}

	config.DomainName = os.Getenv("DOMAIN_NAME")
	if config.DomainName == "" {
		config.DomainName = "localhost:8080"
	}

	return &config
}

// normalizePrefix guarantees a non-empty prefix ends with exactly one slash.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
