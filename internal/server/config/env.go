package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/1anshu-stack/backend/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays values from environment variables. A dotenv file is read
// first: the path given with -env, otherwise ./.env when it exists. Variables
// already present in the process environment win over the file.
//
// Recognised variables:
//
//	HTTP_ADDR, GRPC_ADDR, ROUTE_PREFIX, DATABASE_DSN,
//	ACCESS_TOKEN_SECRET, ACCESS_TOKEN_EXPIRY, REFRESH_TOKEN_SECRET, REFRESH_TOKEN_EXPIRY,
//	S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_PUBLIC_URL,
//	UPLOAD_DIR, CORS_ORIGIN, JSON_BODY_LIMIT, MULTIPART_LIMIT, RATE_LIMIT, REDIS_URL,
//	LOG_LEVEL, LOG_FORMAT
//
// Malformed numeric or duration values panic, like the JSON and flag stages.
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlags()
	if envFile == "" {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&config.HTTPAddr, "HTTP_ADDR")
	setString(&config.GRPCAddr, "GRPC_ADDR")
	setString(&config.RoutePrefix, "ROUTE_PREFIX")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.AccessTokenSecret, "ACCESS_TOKEN_SECRET")
	setDuration(&config.AccessTokenTTL, "ACCESS_TOKEN_EXPIRY")
	setString(&config.RefreshTokenSecret, "REFRESH_TOKEN_SECRET")
	setDuration(&config.RefreshTokenTTL, "REFRESH_TOKEN_EXPIRY")
	setString(&config.S3AccessKey, "S3_ACCESS_KEY")
	setString(&config.S3SecretKey, "S3_SECRET_KEY")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_ENDPOINT")
	setString(&config.S3PublicBaseURL, "S3_PUBLIC_URL")
	setString(&config.UploadDir, "UPLOAD_DIR")
	setString(&config.CORSOrigin, "CORS_ORIGIN")
	setInt64(&config.JSONBodyLimit, "JSON_BODY_LIMIT")
	setInt64(&config.MultipartLimit, "MULTIPART_LIMIT")
	setString(&config.RateLimit, "RATE_LIMIT")
	setString(&config.RedisURL, "REDIS_URL")
	setString(&config.LogLevel, "LOG_LEVEL")
	setString(&config.LogFormat, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt64(dst *int64, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	d, err := ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}

// ParseDuration accepts time.ParseDuration syntax plus a whole-day suffix
// ("10d"), which is how token expiries are usually written in .env files.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
