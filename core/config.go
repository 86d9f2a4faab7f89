package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env                       string // DEV (local; default), TEST, QA, PROD
		Build                     string
		AppName                   string
		Debug                     bool
		TestMode                  bool
		SecretKey                 string
		FrontendBaseURL           string
		DefaultFromEmail          mail.Address
		PasswordResetTimeoutDelta time.Duration
		RollbarToken              string
		SendgridApiKey            string

		Server    ServerConfig
		Database  DatabaseConfig
		Sentiment SentimentConfig
		Assistant AssistantConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | memory
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// SentimentConfig configures the remote text-classification model used by the journal.
	// An empty APIToken disables the remote model; the rule-based scorer is then always used.
	SentimentConfig struct {
		APIURL             string
		Model              string
		APIToken           string
		Timeout            time.Duration
		RateLimit          float64 // requests per second; <= 0 means unlimited
		RateBurst          int
		BreakerMaxFailures uint32
		BreakerOpenTimeout time.Duration
	}

	// AssistantConfig configures the hosted chat model behind the chatbot and the assignment help.
	// An empty APIToken disables it; canned replies are then always used.
	AssistantConfig struct {
		APIURL             string
		Model              string
		APIToken           string
		MaxTokens          int
		Temperature        float64
		Timeout            time.Duration
		RateLimit          float64 // requests per second; <= 0 means unlimited
		RateBurst          int
		BreakerMaxFailures uint32
		BreakerOpenTimeout time.Duration
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", true)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Ustawi")
	v.SetDefault("secretKey", "n8e$-qw7)zk&o=5ub+2l^rr4(c!t#y*vx(#j0m^e3hs9gf1a")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "Ustawi <noreply@localhost>")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 15*time.Minute)
	v.SetDefault("server.jwtRefreshExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "ustawi")
	v.SetDefault("database.user", "ustawi")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("sentiment.apiURL", "https://api-inference.huggingface.co/models")
	v.SetDefault("sentiment.model", "nlptown/bert-base-multilingual-uncased-sentiment")
	v.SetDefault("sentiment.apiToken", "")
	v.SetDefault("sentiment.timeout", 8*time.Second)
	v.SetDefault("sentiment.rateLimit", 5.0)
	v.SetDefault("sentiment.rateBurst", 10)
	v.SetDefault("sentiment.breakerMaxFailures", 5)
	v.SetDefault("sentiment.breakerOpenTimeout", 30*time.Second)

	v.SetDefault("assistant.apiURL", "https://router.huggingface.co/v1/chat/completions")
	v.SetDefault("assistant.model", "openai/gpt-oss-20b:groq")
	v.SetDefault("assistant.apiToken", "")
	v.SetDefault("assistant.maxTokens", 400)
	v.SetDefault("assistant.temperature", 0.7)
	v.SetDefault("assistant.timeout", 20*time.Second)
	v.SetDefault("assistant.rateLimit", 2.0)
	v.SetDefault("assistant.rateBurst", 5)
	v.SetDefault("assistant.breakerMaxFailures", 3)
	v.SetDefault("assistant.breakerOpenTimeout", time.Minute)
}

// NewConfig loads the configuration from defaults, the optional `.env.<env>` file and the environment.
// Environment variables are prefixed with the environment name, eg. DEV_SENTIMENT_APITOKEN.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	confDir := os.Getenv("CONFIG_DIR")
	if confDir == "" {
		confDir = "config"
	}
	dotEnvPath := filepath.Join(confDir, ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return fromViper(env, v)
}

func fromViper(env string, v *viper.Viper) *Config {
	fromEmail, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	return &Config{
		Env:                       env,
		Build:                     v.GetString("build"),
		AppName:                   v.GetString("appName"),
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		SecretKey:                 v.GetString("secretKey"),
		FrontendBaseURL:           v.GetString("frontendBaseURL"),
		DefaultFromEmail:          *fromEmail,
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		RollbarToken:              v.GetString("rollbarToken"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			ReadTimeout:               v.GetDuration("server.readTimeout"),
			WriteTimeout:              v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Sentiment: SentimentConfig{
			APIURL:             v.GetString("sentiment.apiURL"),
			Model:              v.GetString("sentiment.model"),
			APIToken:           v.GetString("sentiment.apiToken"),
			Timeout:            v.GetDuration("sentiment.timeout"),
			RateLimit:          v.GetFloat64("sentiment.rateLimit"),
			RateBurst:          v.GetInt("sentiment.rateBurst"),
			BreakerMaxFailures: v.GetUint32("sentiment.breakerMaxFailures"),
			BreakerOpenTimeout: v.GetDuration("sentiment.breakerOpenTimeout"),
		},
		Assistant: AssistantConfig{
			APIURL:             v.GetString("assistant.apiURL"),
			Model:              v.GetString("assistant.model"),
			APIToken:           v.GetString("assistant.apiToken"),
			MaxTokens:          v.GetInt("assistant.maxTokens"),
			Temperature:        v.GetFloat64("assistant.temperature"),
			Timeout:            v.GetDuration("assistant.timeout"),
			RateLimit:          v.GetFloat64("assistant.rateLimit"),
			RateBurst:          v.GetInt("assistant.rateBurst"),
			BreakerMaxFailures: v.GetUint32("assistant.breakerMaxFailures"),
			BreakerOpenTimeout: v.GetDuration("assistant.breakerOpenTimeout"),
		},
	}
}

// NewTestConfig returns the defaults with test mode on and no remote sentiment model.
func NewTestConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	v.Set("debug", false)
	v.Set("testMode", true)
	v.Set("secretKey", "secret")
	v.Set("database.engine", "memory")
	return fromViper("TEST", v)
}
