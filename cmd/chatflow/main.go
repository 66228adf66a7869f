// Copyright 2025 The Chatflow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	chatflow "github.com/chatflow/chatflow"
	"github.com/chatflow/chatflow/ai"
	"github.com/chatflow/chatflow/api"
	"github.com/chatflow/chatflow/ingestion"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file if it exists, so flags with EnvVars pick up values.
	_ = godotenv.Load()

	app := &cli.App{
		Name:   "chatflow",
		Usage:  "Conversational backend with document retrieval and web search",
		Flags:  globalFlags(),
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
				Flags:  append(dbFlags(), append(aiFlags(), serveFlags()...)...),
			},
			{
				Name:      "ingest",
				Usage:     "Ingest documents into a vector collection",
				Action:    ingestCommand,
				ArgsUsage: "<file> [<file>...]",
				Flags:     append(dbFlags(), append(aiFlags(), ingestFlags()...)...),
			},
			{
				Name:   "create-user",
				Usage:  "Create a user account",
				Action: createUserCommand,
				Flags:  append(dbFlags(), createUserFlags()...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Set logging level (debug, info, warn, error)",
			Value:   "info",
		},
	}
}

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			EnvVars:  []string{"CHATFLOW_DB"},
			Required: true,
		},
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "llm-host",
			Usage:   "OpenAI-compatible text generation host URL",
			EnvVars: []string{"CHATFLOW_LLM_HOST"},
			Value:   "http://localhost:8000/v1",
		},
		&cli.StringFlag{
			Name:    "llm-model",
			Usage:   "Text generation model name",
			EnvVars: []string{"CHATFLOW_LLM_MODEL"},
			Value:   "gemma-3-27b-it",
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			EnvVars: []string{"CHATFLOW_EMBEDDING_HOST"},
			Value:   "http://localhost:9000",
		},
		&cli.StringFlag{
			Name:    "qdrant-url",
			Usage:   "Qdrant server base URL",
			EnvVars: []string{"CHATFLOW_QDRANT_URL"},
			Value:   "http://localhost:6333",
		},
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Usage:   "Address for the HTTP server to listen on",
			EnvVars: []string{"CHATFLOW_LISTEN"},
			Value:   ":8080",
		},
		&cli.StringFlag{
			Name:     "auth-secret",
			Usage:    "Secret key for signing session tokens",
			EnvVars:  []string{"CHATFLOW_AUTH_SECRET"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "searx-url",
			Usage:   "SearxNG instance base URL",
			EnvVars: []string{"CHATFLOW_SEARX_URL"},
			Value:   "http://localhost:8888",
		},
		&cli.StringFlag{
			Name:    "collection",
			Usage:   "Default vector collection for retrieval",
			EnvVars: []string{"CHATFLOW_COLLECTION"},
			Value:   "documents",
		},
	}
}

func ingestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "owner",
			Aliases:  []string{"o"},
			Usage:    "Owner ID to attach to the ingested documents",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "collection",
			Usage: "Vector collection to ingest into",
			Value: "documents",
		},
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Maximum chunk size in characters",
			Value: ingestion.DefaultChunkSize,
		},
		&cli.IntFlag{
			Name:  "chunk-overlap",
			Usage: "Overlap between consecutive chunks in characters",
			Value: ingestion.DefaultChunkOverlap,
		},
	}
}

func createUserFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "username",
			Aliases:  []string{"u"},
			Usage:    "Username for the new account",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Aliases:  []string{"p"},
			Usage:    "Password for the new account",
			EnvVars:  []string{"CHATFLOW_PASSWORD"},
			Required: true,
		},
	}
}

func newAppFromFlags(c *cli.Context) (*chatflow.App, error) {
	aiConfig := ai.NewConfig(
		ai.WithLLMHost(c.String("llm-host")),
		ai.WithLLMModel(c.String("llm-model")),
		ai.WithEmbeddingHost(c.String("embedding-host")),
	)

	return chatflow.NewApp(c.String("db"),
		chatflow.WithAIConfig(aiConfig),
		chatflow.WithQdrantURL(c.String("qdrant-url")),
	)
}

func serveCommand(c *cli.Context) error {
	app, err := newAppFromFlags(c)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	chatSvc, err := app.NewChatService()
	if err != nil {
		return fmt.Errorf("failed to create chat service: %w", err)
	}
	defer chatSvc.Release()

	authSvc, err := app.NewAuthService(c.String("auth-secret"))
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}

	ingestor, err := app.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}

	answerer, err := app.NewAnswerer()
	if err != nil {
		return fmt.Errorf("failed to create answerer: %w", err)
	}

	searcher, err := app.NewWebSearchPipeline(c.String("searx-url"))
	if err != nil {
		return fmt.Errorf("failed to create web search pipeline: %w", err)
	}

	server, err := api.NewServer(authSvc, chatSvc, ingestor, answerer, searcher,
		api.WithDefaultCollection(c.String("collection")),
	)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	httpServer := &http.Server{
		Addr:    c.String("listen"),
		Handler: server.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func ingestCommand(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("at least one file path is required")
	}

	app, err := newAppFromFlags(c)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	ingestor, err := app.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}

	opts := &ingestion.IngestOptions{
		ChunkSize:    c.Int("chunk-size"),
		ChunkOverlap: c.Int("chunk-overlap"),
	}

	result, err := ingestor.Ingest(c.Context, paths, c.String("collection"), c.String("owner"), opts)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Collection: %s\n", result.Collection)
	fmt.Fprintf(os.Stderr, "Chunks indexed: %d\n", result.ChunksIndexed)
	fmt.Fprintf(os.Stderr, "Points upserted: %d\n", result.PointsUpserted)

	return nil
}

func createUserCommand(c *cli.Context) error {
	app, err := chatflow.NewApp(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	// The token secret is irrelevant for account creation but the auth
	// service requires one.
	authSvc, err := app.NewAuthService("create-user")
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}

	username := c.String("username")
	if err := authSvc.CreateUser(c.Context, username, c.String("password")); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Created user %q\n", username)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
