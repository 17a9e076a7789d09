package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"medibot/internal/adapters/embedding"
	"medibot/internal/adapters/filewatcher"
	"medibot/internal/adapters/llm"
	"medibot/internal/adapters/loader"
	"medibot/internal/adapters/vectordb"
	"medibot/internal/config"
	"medibot/internal/domain/ports"
	"medibot/internal/domain/usecases"
	httpserver "medibot/internal/infrastructure/http"
	"medibot/internal/tui"
)

var configPath string

func main() {
	// .env is optional; environment wins either way
	godotenv.Load()

	root := &cobra.Command{
		Use:   "medibot",
		Short: "Health information assistant over a local document index",
		Long: `Medibot answers health questions grounded in a local corpus of medical
documents. Build the passage index with "medibot index", then chat through
the web server ("medibot serve") or in the terminal ("medibot chat").`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")

	root.AddCommand(newServeCmd(), newChatCmd(), newIndexCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			embedder, err := buildEmbedder(cfg)
			if err != nil {
				return err
			}
			generator, err := buildGenerator(cfg)
			if err != nil {
				return err
			}

			index, err := vectordb.OpenIndex(cfg.Index.Path, embedder)
			if err != nil {
				return fmt.Errorf("opening passage index: %w", err)
			}
			defer index.Close()

			dialogue := usecases.NewDialogueController(index, generator, logger,
				cfg.Retrieval.TopK, cfg.Generator.MaxTokens, *cfg.Generator.Temperature)
			planner := usecases.NewPlanner(generator, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := httpserver.NewServer(dialogue, planner, logger, cfg.Server.Addr)
			return server.Start(ctx)
		},
	}
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			embedder, err := buildEmbedder(cfg)
			if err != nil {
				return err
			}
			generator, err := buildGenerator(cfg)
			if err != nil {
				return err
			}

			index, err := vectordb.OpenIndex(cfg.Index.Path, embedder)
			if err != nil {
				return fmt.Errorf("opening passage index: %w", err)
			}
			defer index.Close()

			dialogue := usecases.NewDialogueController(index, generator, nil,
				cfg.Retrieval.TopK, cfg.Generator.MaxTokens, *cfg.Generator.Temperature)

			program := tea.NewProgram(tui.New(dialogue), tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}
}

func newIndexCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "index <docs-dir>",
		Short: "Build the passage index from a directory of documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docsDir := args[0]

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			embedder, err := buildEmbedder(cfg)
			if err != nil {
				return err
			}

			store, err := vectordb.NewStore(cfg.Index.Path)
			if err != nil {
				return fmt.Errorf("opening passage store: %w", err)
			}
			defer store.Close()

			textLoader := loader.NewTextLoader()
			ingestor := usecases.NewIngestor(embedder, store, logger,
				cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := ingestDirectory(ctx, docsDir, textLoader, ingestor, logger); err != nil {
				return err
			}

			if !watch {
				return nil
			}

			watcher, err := filewatcher.NewCorpusWatcher(textLoader.SupportedExtensions())
			if err != nil {
				return err
			}
			defer watcher.Stop()

			events, err := watcher.Watch(ctx, docsDir)
			if err != nil {
				return err
			}
			logger.Info("watching for document changes", zap.String("dir", docsDir))

			for event := range events {
				handleFileEvent(ctx, event, textLoader, ingestor, logger)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep watching the directory and re-index changes")
	return cmd
}

func ingestDirectory(ctx context.Context, dir string, textLoader *loader.TextLoader, ingestor *usecases.Ingestor, logger *zap.Logger) error {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !textLoader.Supports(path) {
			return nil
		}
		doc, err := textLoader.Load(ctx, path)
		if err != nil {
			logger.Warn("skipping document", zap.String("path", path), zap.Error(err))
			return nil
		}
		if err := ingestor.Ingest(ctx, doc); err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		count++
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("index built", zap.Int("documents", count))
	return nil
}

func handleFileEvent(ctx context.Context, event ports.FileEvent, textLoader *loader.TextLoader, ingestor *usecases.Ingestor, logger *zap.Logger) {
	switch event.Operation {
	case ports.FileCreated, ports.FileModified:
		doc, err := textLoader.Load(ctx, event.Path)
		if err != nil {
			logger.Warn("skipping changed document", zap.String("path", event.Path), zap.Error(err))
			return
		}
		if err := ingestor.Ingest(ctx, doc); err != nil {
			logger.Error("re-indexing failed", zap.String("path", event.Path), zap.Error(err))
			return
		}
		logger.Info("re-indexed", zap.String("path", event.Path))
	case ports.FileDeleted:
		if err := ingestor.Delete(ctx, loader.DocumentID(event.Path)); err != nil {
			logger.Error("removing document failed", zap.String("path", event.Path), zap.Error(err))
			return
		}
		logger.Info("removed from index", zap.String("path", event.Path))
	}
}

// buildEmbedder constructs the configured embedding provider. The Hugging
// Face provider requires HF_TOKEN; a missing token is fatal here, before any
// server or chat loop starts.
func buildEmbedder(cfg *config.AppConfig) (ports.Embedder, error) {
	timeout := time.Duration(cfg.Embedder.TimeoutSecs) * time.Second
	switch cfg.Embedder.Type {
	case "huggingface":
		return embedding.NewHuggingFaceEmbedder(cfg.Embedder.BaseURL, cfg.Embedder.Model, os.Getenv("HF_TOKEN"), timeout)
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedder.BaseURL, cfg.Embedder.Model, timeout), nil
	default:
		return nil, errors.New("unknown embedder type: " + cfg.Embedder.Type)
	}
}

func buildGenerator(cfg *config.AppConfig) (ports.Generator, error) {
	timeout := time.Duration(cfg.Generator.TimeoutSecs) * time.Second
	switch cfg.Generator.Type {
	case "huggingface":
		return llm.NewHuggingFaceGenerator(cfg.Generator.BaseURL, cfg.Generator.Model, os.Getenv("HF_TOKEN"), timeout)
	case "ollama":
		return llm.NewOllamaGenerator(cfg.Generator.BaseURL, cfg.Generator.Model, timeout), nil
	default:
		return nil, errors.New("unknown generator type: " + cfg.Generator.Type)
	}
}
