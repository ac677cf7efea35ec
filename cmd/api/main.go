package main

import (
	"context"
	"fmt"
	"log"

	"vantage/internal/cache/results"
	"vantage/internal/config"
	"vantage/internal/llm"
	"vantage/internal/llmclient"
	"vantage/internal/objstore"
	"vantage/internal/pipeline"
	"vantage/internal/profilestore"
	"vantage/internal/server"
	"vantage/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client, err := buildClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("llm client: %v", err)
	}
	defer client.Close()

	mws := []llm.Middleware{llm.WithHooks(), llm.WithLogging(nil)}
	if cfg.LLM.RetryAttempts > 1 {
		mws = append(mws, llm.Retry(cfg.LLM.RetryAttempts, 0))
	}
	pipe := pipeline.New(llm.Wrap(client, mws...))

	sessions, err := session.NewStore(0)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	cache, err := results.NewDiskStore(cfg.Cache.ResultsDir)
	if err != nil {
		log.Fatalf("result cache: %v", err)
	}
	profiles, err := profilestore.NewFromEnv(cfg.Cache.ProfilePath)
	if err != nil {
		log.Fatalf("profile store: %v", err)
	}
	defer profiles.Close()

	var archive *objstore.S3Store
	if cfg.Archive.Enabled {
		archive, err = objstore.NewS3Store(objstore.S3Config{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			log.Fatalf("object storage: %v", err)
		}
	}

	srv := server.New(pipe, sessions, cache, profiles, archive)

	log.Printf("Starting Vantage API on %s (backend: %s)", cfg.Port, client.Name())
	if err := srv.Router().Run(cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func buildClient(ctx context.Context, cfg config.LLMConfig) (llmclient.TextClient, error) {
	switch cfg.Backend {
	case "watsonx":
		tokens := llmclient.NewIAMTokenSource(cfg.IBMAPIKey, "", nil)
		return llmclient.NewWatsonxClient(tokens, cfg.WatsonxURL, cfg.WatsonxModelID, cfg.WatsonxProjectID), nil
	case "gemini":
		return llmclient.NewGeminiClient(ctx, cfg.GeminiModel)
	case "fake":
		return llm.NewFakeClient(), nil
	default:
		return nil, fmt.Errorf("unknown LLM backend %q", cfg.Backend)
	}
}
