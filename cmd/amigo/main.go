package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/w-h-a/amigo/generator"
	anthropicgenerator "github.com/w-h-a/amigo/generator/anthropic"
	openaigenerator "github.com/w-h-a/amigo/generator/openai"
	"github.com/w-h-a/amigo/internal/handler"
	"github.com/w-h-a/amigo/internal/service"
	"github.com/w-h-a/amigo/memory/providers/store"
	filestore "github.com/w-h-a/amigo/memory/providers/store/file"
	memorystore "github.com/w-h-a/amigo/memory/providers/store/memory"
	postgresstore "github.com/w-h-a/amigo/memory/providers/store/postgres"
	"github.com/w-h-a/amigo/raindrop"
	"github.com/w-h-a/amigo/transcriber"
	"github.com/w-h-a/amigo/transcriber/elevenlabs"
)

var (
	cfg struct {
		// Server config
		Addr string `help:"Address to serve on" default:":5000" env:"AMIGO_ADDR"`

		// Store config
		Store         string `help:"Local store backend (file, memory, postgres)" default:"file" env:"AMIGO_STORE"`
		StoreLocation string `help:"File path or connection string for the local store" default:"data/memories.json" env:"AMIGO_STORE_LOCATION"`

		// Raindrop config
		RaindropURL       string `help:"Base URL of the raindrop provider" default:"" env:"RAINDROP_MCP_URL"`
		SmartMemoryKey    string `help:"Credential for the memory family" default:"" env:"SMARTMEMORY_API_KEY"`
		SmartSQLKey       string `help:"Credential for the query family" default:"" env:"SMARTSQL_API_KEY"`
		SmartInferenceKey string `help:"Credential for the inference family" default:"" env:"SMARTINFERENCE_API_KEY"`
		OrgId             string `help:"Organization identifier sent with raindrop calls" default:"" env:"RAINDROP_ORG_ID"`
		UserId            string `help:"User identifier sent with memory-family calls" default:"" env:"RAINDROP_USER_ID"`

		// Generator config (optional inference fallback)
		Generator    string `help:"Model provider for inference fallback (openai, anthropic)" default:"" env:"AMIGO_GENERATOR"`
		GeneratorKey string `help:"API key for the model provider" default:"" env:"AMIGO_GENERATOR_KEY"`
		Model        string `help:"Model identifier for inference fallback" default:"gpt-4o-mini" env:"AMIGO_MODEL"`

		// Transcription config
		ElevenKey string `help:"API key for speech-to-text" default:"" env:"ELEVEN_KEY"`
	}
)

func main() {
	// Parse inputs
	_ = godotenv.Load()
	_ = kong.Parse(&cfg)

	// Create local store
	var st store.Store
	switch cfg.Store {
	case "memory":
		st = memorystore.NewStore()
	case "postgres":
		st = postgresstore.NewStore(
			store.WithLocation(cfg.StoreLocation),
		)
	default:
		st = filestore.NewStore(
			store.WithLocation(cfg.StoreLocation),
		)
	}

	// Create raindrop client
	remote := raindrop.New(
		raindrop.WithBaseURL(cfg.RaindropURL),
		raindrop.WithMemoryKey(cfg.SmartMemoryKey),
		raindrop.WithQueryKey(cfg.SmartSQLKey),
		raindrop.WithInferenceKey(cfg.SmartInferenceKey),
		raindrop.WithOrgId(cfg.OrgId),
		raindrop.WithUserId(cfg.UserId),
	)

	// Create optional inference fallback
	var model generator.Generator
	switch cfg.Generator {
	case "openai":
		model = openaigenerator.NewGenerator(
			generator.WithApiKey(cfg.GeneratorKey),
			generator.WithModel(cfg.Model),
		)
	case "anthropic":
		model = anthropicgenerator.NewGenerator(
			generator.WithApiKey(cfg.GeneratorKey),
			generator.WithModel(cfg.Model),
		)
	}

	// Create optional transcriber
	var stt transcriber.Transcriber
	if len(cfg.ElevenKey) > 0 {
		stt = elevenlabs.NewTranscriber(
			transcriber.WithApiKey(cfg.ElevenKey),
		)
	}

	// Wire it together
	svc := service.New(st, remote, model)
	h := handler.New(svc, stt)

	slog.Info("memory amigo server running", "addr", cfg.Addr, "store", cfg.Store, "raindrop", remote.Configured())

	if err := http.ListenAndServe(cfg.Addr, h.Router()); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
