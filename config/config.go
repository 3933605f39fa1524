package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment        string
	HTTPPort           string
	HTTPSPort          string
	Domains            []string
	CertCacheDir       string
	LogDir             string
	GeminiAPIKey       string
	GeminiAPIURL       string
	GeminiEmbeddingURL string
	SearchTopK         int
	SearchMinScore     float64
	ContextMaxChars    int
	LLMMaxRetries      int
	LLMRetryBaseDelay  time.Duration
	PipelineTimeout    time.Duration
	BhashiniUserID     string
	BhashiniAPIKey     string
	BhashiniAuthURL    string
	BhashiniComputeURL string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioFromNumber   string
	OpsAlertNumber     string
	AlertCooldown      time.Duration
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		HTTPPort:           getEnv("HTTP_PORT", "8086"),
		HTTPSPort:          getEnv("HTTPS_PORT", "443"),
		Domains:            []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir:       getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		LogDir:             getEnv("LOG_DIR", "logs/chatbot"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiAPIURL:       getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"),
		GeminiEmbeddingURL: getEnv("GEMINI_EMBEDDING_URL", "https://generativelanguage.googleapis.com/v1beta/models/text-embedding-004:embedContent"),
		SearchTopK:         getEnvAsInt("SEARCH_TOP_K", 5),
		SearchMinScore:     getEnvAsFloat("SEARCH_MIN_SCORE", 0.7),
		ContextMaxChars:    getEnvAsInt("CONTEXT_MAX_CHARS", 4000),
		LLMMaxRetries:      getEnvAsInt("LLM_MAX_RETRIES", 3),
		LLMRetryBaseDelay:  time.Duration(getEnvAsInt("LLM_RETRY_BASE_DELAY_MS", 1000)) * time.Millisecond,
		PipelineTimeout:    time.Duration(getEnvAsInt("PIPELINE_TIMEOUT_SECONDS", 30)) * time.Second,
		BhashiniUserID:     getEnv("BHASHINI_USER_ID", ""),
		BhashiniAPIKey:     getEnv("BHASHINI_API_KEY", ""),
		BhashiniAuthURL:    getEnv("BHASHINI_AUTH_URL", "https://meity-auth.ulcacontrib.org/ulca/apis/v0/model/getModelsPipeline"),
		BhashiniComputeURL: getEnv("BHASHINI_COMPUTE_URL", "https://dhruva-api.bhashini.gov.in/services/inference/pipeline"),
		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:   getEnv("TWILIO_FROM_NUMBER", ""),
		OpsAlertNumber:     getEnv("OPS_ALERT_NUMBER", ""),
		AlertCooldown:      time.Duration(getEnvAsInt("ALERT_COOLDOWN_SECONDS", 900)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
