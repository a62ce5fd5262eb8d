// Package config loads the process configuration from the environment,
// optionally seeded by a .env file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	LLMAPIKey string
	LLMAPIURL string
	// Model is the default completion model; agents may override it.
	Model           string
	EmbeddingsModel string
	// SentimentModel runs the pre-turn escalation classifier.
	SentimentModel string

	DatabaseDSN string

	PaymentBaseURL     string
	CurrencyLabel      string
	DefaultCountryCode string

	// ConversationDuration is the in-memory history expiry.
	ConversationDuration time.Duration
	SweepSchedule        string
}

// FromEnv reads SOKONI_* variables. A missing .env file is not an
// error; missing required variables are.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		LLMAPIKey:          os.Getenv("SOKONI_LLM_API_KEY"),
		LLMAPIURL:          os.Getenv("SOKONI_LLM_API_URL"),
		Model:              os.Getenv("SOKONI_MODEL"),
		EmbeddingsModel:    os.Getenv("SOKONI_EMBEDDINGS_MODEL"),
		SentimentModel:     os.Getenv("SOKONI_SENTIMENT_MODEL"),
		DatabaseDSN:        os.Getenv("SOKONI_DB_DSN"),
		PaymentBaseURL:     os.Getenv("SOKONI_PAYMENT_BASE_URL"),
		CurrencyLabel:      os.Getenv("SOKONI_CURRENCY_LABEL"),
		DefaultCountryCode: os.Getenv("SOKONI_DEFAULT_COUNTRY_CODE"),
		SweepSchedule:      os.Getenv("SOKONI_SWEEP_SCHEDULE"),
	}

	if c.LLMAPIKey == "" {
		return nil, fmt.Errorf("SOKONI_LLM_API_KEY not set")
	}
	if c.DatabaseDSN == "" {
		return nil, fmt.Errorf("SOKONI_DB_DSN not set")
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.EmbeddingsModel == "" {
		c.EmbeddingsModel = "text-embedding-3-small"
	}
	if c.SentimentModel == "" {
		c.SentimentModel = c.Model
	}

	c.ConversationDuration = time.Hour
	if v := os.Getenv("SOKONI_CONVERSATION_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SOKONI_CONVERSATION_DURATION %q: %w", v, err)
		}
		c.ConversationDuration = d
	}

	return c, nil
}
