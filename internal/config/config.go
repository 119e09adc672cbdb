package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	ModelPath     string
	MetadataPath  string
	OnnxLibPath   string
	UploadDir     string
	AllowedOrigin string
	MaxUploadMB   int
	LogLevel      string
}

// Load reads the optional .env file and then the process environment.
func Load() *Config {
	// A missing .env is fine, the environment alone is enough.
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "5000"),
		ModelPath:     getEnv("MODEL_PATH", "model/model.onnx"),
		MetadataPath:  getEnv("MODEL_METADATA_PATH", "model/model_metadata.json"),
		OnnxLibPath:   getEnv("ONNXRUNTIME_LIB", ""),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		MaxUploadMB:   getEnvInt("MAX_UPLOAD_MB", 10),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// MaxUploadBytes is the multipart size cap derived from MaxUploadMB.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}
