package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"vaani/internal/audio"
	"vaani/internal/transcript"
	"vaani/internal/whisper"
)

type Config struct {
	Port    string
	DataDir string
	DBPath  string

	Engine        string
	Model         string
	Language      string
	InitialPrompt string
	OpenAIKey     string

	NoSpeechThreshold    float64
	SilenceThresholdDBFS float64

	MaxUploadBytes int64
}

const defaultMaxUploadBytes = 512 << 20

// Load reads configuration from the environment, picking up a .env file
// when one is present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:                 getEnv("VAANI_PORT", "8080"),
		DataDir:              os.Getenv("VAANI_DATA_DIR"),
		DBPath:               os.Getenv("VAANI_DB_PATH"),
		Engine:               getEnv("VAANI_ENGINE", "auto"),
		Model:                getEnv("VAANI_MODEL", whisper.DefaultModel),
		Language:             getEnv("VAANI_LANGUAGE", whisper.DefaultLanguage),
		InitialPrompt:        os.Getenv("VAANI_PROMPT"),
		OpenAIKey:            os.Getenv("OPENAI_API_KEY"),
		NoSpeechThreshold:    getEnvFloat("VAANI_NO_SPEECH_THRESHOLD", transcript.DefaultNoSpeechThreshold),
		SilenceThresholdDBFS: getEnvFloat("VAANI_SILENCE_THRESHOLD_DBFS", audio.DefaultSilenceThresholdDBFS),
		MaxUploadBytes:       getEnvInt64("VAANI_MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
