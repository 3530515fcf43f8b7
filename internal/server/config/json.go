package config

import (
	"encoding/json"
	"os"

	"github.com/1anshu-stack/backend/internal/flagx"
	"github.com/1anshu-stack/backend/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted. Fields
// left out of the file keep the value from the earlier stages.
type JsonConfig struct {
	HTTPAddr           *string         `json:"http_addr"`
	GRPCAddr           *string         `json:"grpc_addr"`
	RoutePrefix        *string         `json:"route_prefix"`
	DatabaseDSN        *string         `json:"database_dsn"`
	AccessTokenSecret  *string         `json:"access_token_secret"`
	RefreshTokenSecret *string         `json:"refresh_token_secret"`
	AccessTokenTTL     *timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL    *timex.Duration `json:"refresh_token_ttl"`
	S3AccessKey        *string         `json:"s3_access_key"`
	S3SecretKey        *string         `json:"s3_secret_key"`
	S3Bucket           *string         `json:"s3_bucket"`
	S3Region           *string         `json:"s3_region"`
	S3BaseEndpoint     *string         `json:"s3_base_endpoint"`
	S3PublicBaseURL    *string         `json:"s3_public_base_url"`
	UploadDir          *string         `json:"upload_dir"`
	CORSOrigin         *string         `json:"cors_origin"`
	JSONBodyLimit      *int64          `json:"json_body_limit"`
	MultipartLimit     *int64          `json:"multipart_limit"`
	RateLimit          *string         `json:"rate_limit"`
	RedisURL           *string         `json:"redis_url"`
	LogLevel           *string         `json:"log_level"`
	LogFormat          *string         `json:"log_format"`
}

// parseJson loads the file named by -c or -config into config.
// Nothing happens when neither flag is given; an unreadable or
// invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	str := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}

	str(&config.HTTPAddr, c.HTTPAddr)
	str(&config.GRPCAddr, c.GRPCAddr)
	str(&config.RoutePrefix, c.RoutePrefix)
	str(&config.DatabaseDSN, c.DatabaseDSN)
	str(&config.AccessTokenSecret, c.AccessTokenSecret)
	str(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	str(&config.S3AccessKey, c.S3AccessKey)
	str(&config.S3SecretKey, c.S3SecretKey)
	str(&config.S3Bucket, c.S3Bucket)
	str(&config.S3Region, c.S3Region)
	str(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	str(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	str(&config.UploadDir, c.UploadDir)
	str(&config.CORSOrigin, c.CORSOrigin)
	str(&config.RateLimit, c.RateLimit)
	str(&config.RedisURL, c.RedisURL)
	str(&config.LogLevel, c.LogLevel)
	str(&config.LogFormat, c.LogFormat)

	if c.AccessTokenTTL != nil {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL != nil {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.JSONBodyLimit != nil {
		config.JSONBodyLimit = *c.JSONBodyLimit
	}
	if c.MultipartLimit != nil {
		config.MultipartLimit = *c.MultipartLimit
	}
}
