package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

type BotConfig struct {
	ID                      string  `json:"id"`
	RulesPath               string  `json:"rules_path"`
	GrammarsPath            string  `json:"grammars_path"`
	PremiseThreshold        float64 `json:"premise_threshold"`
	FaqThreshold            float64 `json:"faq_threshold"`
	ComprehensionThreshold  float64 `json:"comprehension_threshold"`
	FactSimilarityThreshold float64 `json:"fact_similarity_threshold"`
	SmalltalkRuleThreshold  float64 `json:"smalltalk_rule_threshold"`
	PremiseIsAnswer         bool    `json:"premise_is_answer"`
	EnableSmalltalk         *bool   `json:"enable_smalltalk"`
	ForceQuestionAnswering  bool    `json:"force_question_answering"`
	TurnFallback            string  `json:"turn_fallback"`
}

// SmalltalkEnabled reports the smalltalk switch. The key is a pointer so
// a config file that omits it gets the on-by-default behavior instead of
// a silent false.
func (b *BotConfig) SmalltalkEnabled() bool {
	return b.EnableSmalltalk == nil || *b.EnableSmalltalk
}

type OracleConfig struct {
	URL               string  `json:"url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	SynonymyThreshold float64 `json:"synonymy_threshold"`
}

type RelevanceConfig struct {
	EmbeddingURL string `json:"embedding_url"`
	Qdrant       struct {
		URL        string `json:"url"`
		Collection string `json:"collection"`
		APIKey     string `json:"api_key"`
		Dims       int    `json:"dims"`
	} `json:"qdrant"`
}

type Config struct {
	Server struct {
		Host      string `json:"host"`
		Port      int    `json:"port"`
		Subpath   string `json:"subpath"`
		JWTSecret string `json:"jwtSecret"`
	} `json:"server"`
	Postgres struct {
		DSN string `json:"dsn"`
	} `json:"postgres"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	Bot       BotConfig       `json:"bot"`
	Oracle    OracleConfig    `json:"oracle"`
	Relevance RelevanceConfig `json:"relevance"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton)
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		// Minimal validation
		if c.Server.JWTSecret == "" {
			cfgErr = errors.New("jwtSecret must be set in config")
			return
		}
		if c.Bot.ID == "" {
			cfgErr = errors.New("bot.id must be set in config")
			return
		}
		if c.Bot.RulesPath == "" {
			cfgErr = errors.New("bot.rules_path must be set in config")
			return
		}
		if c.Oracle.URL == "" {
			cfgErr = errors.New("oracle.url must be set in config")
			return
		}
		applyDefaults(&c)
		cfg = &c
	})
	return cfg, cfgErr
}

func applyDefaults(c *Config) {
	if c.Bot.PremiseThreshold == 0 {
		c.Bot.PremiseThreshold = 0.6
	}
	if c.Bot.FaqThreshold == 0 {
		c.Bot.FaqThreshold = 0.7
	}
	if c.Bot.ComprehensionThreshold == 0 {
		c.Bot.ComprehensionThreshold = 0.70
	}
	if c.Bot.FactSimilarityThreshold == 0 {
		c.Bot.FactSimilarityThreshold = 0.20
	}
	if c.Bot.SmalltalkRuleThreshold == 0 {
		c.Bot.SmalltalkRuleThreshold = 0.7
	}
	if c.Oracle.TimeoutSeconds == 0 {
		c.Oracle.TimeoutSeconds = 20
	}
	if c.Oracle.SynonymyThreshold == 0 {
		c.Oracle.SynonymyThreshold = 0.7
	}
	if c.Relevance.Qdrant.Dims == 0 {
		c.Relevance.Qdrant.Dims = 768
	}
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
