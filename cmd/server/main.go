package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"go-dialog/internal/api"
	"go-dialog/internal/config"
	"go-dialog/internal/db"
	"go-dialog/internal/dialogue"
	"go-dialog/internal/facts"
	"go-dialog/internal/oracle"
	redisdb "go-dialog/internal/redis"
	"go-dialog/internal/relevance"
	"go-dialog/internal/scripting"
	"go-dialog/internal/session"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	rdb := redisdb.NewClient(cfg)

	store, err := facts.NewGormStore(db.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fact store error: %v\n", err)
		os.Exit(1)
	}

	repo, err := scripting.NewLoader().Load(cfg.Bot.RulesPath, cfg.Bot.GrammarsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rule load error: %v\n", err)
		os.Exit(1)
	}

	remote := oracle.NewRemote(
		cfg.Oracle.URL,
		time.Duration(cfg.Oracle.TimeoutSeconds)*time.Second,
		cfg.Oracle.SynonymyThreshold,
	)

	oracles := dialogue.Oracles{
		Modality:       remote,
		Intent:         remote,
		Interpreter:    remote,
		Synonymy:       remote,
		Lexical:        oracle.NewJaccard(cfg.Oracle.SynonymyThreshold),
		Relevancy:      remote,
		EnoughPremises: remote,
		AnswerGen:      remote,
		Faq:            remote,
		NoInfo:         remote,
		Tagger:         remote,
	}

	// With Qdrant configured, relevancy runs on locally cached embeddings
	// instead of round-tripping every premise through the oracle.
	if cfg.Relevance.Qdrant.URL != "" {
		cache, err := relevance.NewCache(
			cfg.Relevance.Qdrant.URL,
			cfg.Relevance.Qdrant.Collection,
			cfg.Relevance.Qdrant.APIKey,
			uint64(cfg.Relevance.Qdrant.Dims),
		)
		if err != nil {
			log.Printf("[Main] WARNING: qdrant cache unavailable, falling back to oracle relevancy: %v", err)
		} else {
			embedder := relevance.NewEmbedder(cfg.Relevance.EmbeddingURL)
			oracles.Relevancy = relevance.NewVectorRelevancy(embedder, cache)
			log.Printf("[Main] Vector relevancy enabled (collection %q)", cfg.Relevance.Qdrant.Collection)
		}
	}

	engineCfg := dialogue.Config{
		PremiseThreshold:        cfg.Bot.PremiseThreshold,
		FaqThreshold:            cfg.Bot.FaqThreshold,
		ComprehensionThreshold:  cfg.Bot.ComprehensionThreshold,
		FactSimilarityThreshold: cfg.Bot.FactSimilarityThreshold,
		SmalltalkRuleThreshold:  cfg.Bot.SmalltalkRuleThreshold,
		PremiseIsAnswer:         cfg.Bot.PremiseIsAnswer,
		EnableSmalltalk:         cfg.Bot.SmalltalkEnabled(),
		ForceQuestionAnswering:  cfg.Bot.ForceQuestionAnswering,
		TurnFallback:            cfg.Bot.TurnFallback,
	}
	if engineCfg.TurnFallback == "" {
		engineCfg.TurnFallback = dialogue.DefaultConfig().TurnFallback
	}

	engine := dialogue.NewEngine(cfg.Bot.ID, repo, session.NewRegistry(), store, oracles, engineCfg, nil)

	r := api.SetupRouter(cfg, rdb, engine, store)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s%s\n", addr, cfg.Server.Subpath)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
