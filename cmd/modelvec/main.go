// Copyright 2025 Kanddle
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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/kanddle/modelvec"
	"github.com/kanddle/modelvec/ai"
	"github.com/kanddle/modelvec/config"
	"github.com/kanddle/modelvec/server"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "modelvec",
		Usage: "Vector ingestion and similarity search over model metadata",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server",
				Action: serveCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:  "listen",
						Usage: "HTTP listen address",
						Value: config.DefaultListenAddr,
					},
				),
			},
			{
				Name:   "ingest",
				Usage:  "Run an ingestion pass over the source collection",
				Action: ingestCommand,
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Number of records per page",
						Value: config.DefaultPageSize,
					},
					&cli.IntFlag{
						Name:  "start-page",
						Usage: "First page to process (1-indexed)",
					},
					&cli.IntFlag{
						Name:  "end-page",
						Usage: "Last page to process (defaults to the final page)",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the vector store for similar documents",
				Action:    searchCommand,
				ArgsUsage: "<query>",
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of results",
						Value: 5,
					},
				),
			},
			{
				Name:   "progress",
				Usage:  "Report ingestion progress for the source collection",
				Action: progressCommand,
				Flags:  commonFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   config.DefaultDataDir,
		},
		&cli.StringFlag{
			Name:  "source-collection",
			Usage: "Source collection name",
			Value: config.DefaultSourceCollection,
		},
		&cli.StringFlag{
			Name:  "vector-collection",
			Usage: "Vector collection name",
			Value: config.DefaultVectorCollection,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "all-minilm",
		},
		&cli.IntFlag{
			Name:  "target-dim",
			Usage: "Project embeddings to this dimensionality (0 keeps native size)",
		},
		&cli.Int64Flag{
			Name:  "projection-seed",
			Usage: "Seed for the projection weight matrix",
			Value: 1,
		},
	}
}

// settingsFromFlags builds the process settings once from CLI flags.
func settingsFromFlags(c *cli.Context) (config.Settings, error) {
	settings := config.NewSettings()
	settings.DataDir = c.String("db")
	settings.SourceCollection = c.String("source-collection")
	settings.VectorCollection = c.String("vector-collection")
	settings.EmbeddingHost = c.String("embedding-host")
	settings.EmbeddingModel = c.String("embedding-model")
	settings.TargetDim = c.Int("target-dim")
	settings.ProjectionSeed = c.Int64("projection-seed")
	if c.IsSet("listen") {
		settings.ListenAddr = c.String("listen")
	}
	if c.IsSet("page-size") {
		settings.PageSize = c.Int("page-size")
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

func openDatabase(settings config.Settings) (*modelvec.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(settings.EmbeddingHost),
		ai.WithEmbeddingModel(settings.EmbeddingModel),
		ai.WithTargetDim(settings.TargetDim),
		ai.WithProjectionSeed(settings.ProjectionSeed),
	)

	return modelvec.NewDatabase(settings.DataDir,
		modelvec.WithAIConfig(aiConfig),
		modelvec.WithVectorCollection(settings.VectorCollection),
	)
}

func serveCommand(c *cli.Context) error {
	settings, err := settingsFromFlags(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(settings)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, err := db.NewPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	srv, err := server.NewServer(settings, pipeline, searcher, db.VectorRepository())
	if err != nil {
		return err
	}

	return srv.Run()
}

func ingestCommand(c *cli.Context) error {
	settings, err := settingsFromFlags(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(settings)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, err := db.NewPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	summary, err := pipeline.Run(context.Background(), settings.SourceCollection,
		settings.PageSize, c.Int("start-page"), c.Int("end-page"))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	return printJSON(summary)
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query argument is required")
	}

	settings, err := settingsFromFlags(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(settings)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	results, err := searcher.FindSimilar(context.Background(), query, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for i, result := range results {
		fmt.Printf("%2d. %.4f  %s\n", i+1, result.Score, result.Document.ID)
		if result.Document.Text != "" {
			fmt.Printf("    %s\n", result.Document.Text)
		}
	}
	return nil
}

func progressCommand(c *cli.Context) error {
	settings, err := settingsFromFlags(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(settings)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, err := db.NewPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	progress, err := pipeline.Progress(context.Background(), settings.SourceCollection)
	if err != nil {
		return err
	}

	return printJSON(progress)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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
