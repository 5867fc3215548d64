package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"

	"github.com/kanddle/modelvec/core"
	"github.com/kanddle/modelvec/storage"
	"github.com/kanddle/modelvec/storage/badger"
)

// Sample model metadata documents. Each line is one JSON document in the
// shape produced by the upstream inventory exporter, nested groups and
// Mongo-style number wrappers included.
var documents = []string{
	`{"name": "bert-base-uncased", "framework": "pytorch", "task": "fill-mask", "architecture": "transformer", "domains": ["nlp"], "use_cases": ["text classification", "question answering"], "license": "apache-2.0", "model_size_parameters": "110M", "performance": {"accuracy": {"$numberDouble": "0.843"}, "f1": {"$numberDouble": "0.88"}}, "hardware_requirements": {"min_gpu_memory_gb": {"$numberInt": "4"}, "recommended_gpu": "T4"}, "popularity": {"stars": {"$numberInt": "1890"}, "downloads": {"$numberInt": "42000000"}}}`,
	`{"name": "whisper-large-v3", "framework": "pytorch", "task": "automatic-speech-recognition", "architecture": "encoder-decoder transformer", "domains": ["audio", "speech"], "use_cases": ["transcription", "translation"], "license": "apache-2.0", "model_size_parameters": "1.55B", "performance": {"wer": {"$numberDouble": "0.101"}}, "hardware_requirements": {"min_gpu_memory_gb": {"$numberInt": "10"}, "recommended_gpu": "A10G"}, "popularity": {"stars": {"$numberInt": "3400"}, "downloads": {"$numberInt": "8900000"}}}`,
	`{"name": "resnet-50", "framework": "pytorch", "task": "image-classification", "architecture": "convolutional", "domains": ["vision"], "use_cases": ["image classification", "feature extraction"], "license": "apache-2.0", "model_size_parameters": "25.6M", "performance": {"top1_accuracy": {"$numberDouble": "0.761"}}, "hardware_requirements": {"min_gpu_memory_gb": {"$numberInt": "2"}}, "popularity": {"stars": {"$numberInt": "920"}, "downloads": {"$numberInt": "15000000"}}}`,
	`{"name": "gpt-j-6b", "framework": "jax", "task": "text-generation", "architecture": "decoder-only transformer", "domains": ["nlp"], "use_cases": ["text generation", "code completion"], "license": "apache-2.0", "model_size_parameters": "6B", "hardware_requirements": {"min_gpu_memory_gb": {"$numberInt": "16"}, "recommended_gpu": "A100"}, "popularity": {"stars": {"$numberInt": "940"}, "downloads": {"$numberInt": "12000"}}}`,
	`{"name": "stable-diffusion-xl", "framework": "pytorch", "task": "text-to-image", "architecture": "latent diffusion", "domains": ["vision", "generative"], "use_cases": ["image generation", "inpainting"], "license": "openrail++", "model_size_parameters": "3.5B", "hardware_requirements": {"min_gpu_memory_gb": {"$numberInt": "12"}, "recommended_gpu": "A10G"}, "popularity": {"stars": {"$numberInt": "6100"}, "downloads": {"$numberInt": "21000000"}}}`,
	`{"name": "t5-base", "framework": "tensorflow", "task": "text2text-generation", "architecture": "encoder-decoder transformer", "domains": ["nlp"], "use_cases": ["summarization", "translation"], "license": "apache-2.0", "model_size_parameters": "220M", "performance": {"rouge1": {"$numberDouble": "0.42"}}, "hardware_requirements": {"min_gpu_memory_gb": {"$numberInt": "4"}}, "popularity": {"stars": {"$numberInt": "1100"}, "downloads": {"$numberInt": "7600000"}}}`,
	`{"name": "yolov8n", "framework": "pytorch", "task": "object-detection", "architecture": "convolutional", "domains": ["vision"], "use_cases": ["object detection", "tracking"], "license": "agpl-3.0", "model_size_parameters": "3.2M", "performance": {"map50_95": {"$numberDouble": "0.373"}}, "hardware_requirements": {"min_gpu_memory_gb": {"$numberInt": "2"}}, "popularity": {"stars": {"$numberInt": "24000"}, "downloads": {"$numberInt": "5400000"}}}`,
	`{"name": "all-minilm-l6-v2", "framework": "pytorch", "task": "sentence-similarity", "architecture": "transformer", "domains": ["nlp"], "use_cases": ["semantic search", "clustering"], "license": "apache-2.0", "model_size_parameters": "22.7M", "hardware_requirements": {"min_gpu_memory_gb": {"$numberInt": "1"}}, "popularity": {"stars": {"$numberInt": "1700"}, "downloads": {"$numberInt": "61000000"}}}`,
	`{"name": "wav2vec2-base", "framework": "pytorch", "task": "automatic-speech-recognition", "architecture": "transformer", "domains": ["audio"], "use_cases": ["speech recognition"], "license": "apache-2.0", "model_size_parameters": "95M", "performance": {"wer": {"$numberDouble": "0.034"}}, "hardware_requirements": {"min_gpu_memory_gb": {"$numberInt": "4"}}, "popularity": {"stars": {"$numberInt": "600"}, "downloads": {"$numberInt": "2100000"}}}`,
	`{"name": "vit-base-patch16-224", "framework": "pytorch", "task": "image-classification", "architecture": "vision transformer", "domains": ["vision"], "use_cases": ["image classification"], "license": "apache-2.0", "model_size_parameters": "86M", "performance": {"top1_accuracy": {"$numberDouble": "0.818"}}, "hardware_requirements": {"min_gpu_memory_gb": {"$numberInt": "4"}}, "popularity": {"stars": {"$numberInt": "780"}, "downloads": {"$numberInt": "9800000"}}}`,
}

var (
	seedFileName = flag.String("src", "", "file of seed documents, one JSON object per line")
	dbPath       = flag.String("db", "modelvec_data", "path to BadgerDB database directory")
	collection   = flag.String("collection", "source_data", "source collection to seed")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// recordFromLine decodes one JSON document into a keyed source record.
// The record key comes from the name field, falling back to a content hash.
func recordFromLine(line string) (*core.Record, error) {
	var fields core.Fields
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return nil, err
	}

	key := core.IDFromContent(line)
	if name, ok := fields.Get("name"); ok {
		if s, ok := name.(string); ok && s != "" {
			key = s
		}
	}

	return &core.Record{Key: key, Fields: fields}, nil
}

// seedBatched reads documents from a source iterator and inserts them in batches.
func seedBatched(ctx context.Context, repo storage.SourceRepository, collection string, source iter.Seq[string], batchSize int) (int, error) {
	total := 0
	batch := make([]*core.Record, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, err := repo.InsertRecords(ctx, collection, batch...)
		if err != nil {
			return err
		}
		total += inserted
		batch = batch[:0]
		return nil
	}

	for line := range source {
		if line == "" {
			continue
		}
		record, err := recordFromLine(line)
		if err != nil {
			return total, fmt.Errorf("bad seed document: %w", err)
		}
		batch = append(batch, record)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	return total, flush()
}

func main() {
	backend, err := badger.OpenBackend(*dbPath, false)
	if err != nil {
		panic(err)
	}
	defer backend.Close()

	repo := badger.NewSourceRepository(backend)
	defer repo.Close()

	ctx := context.Background()

	var source iter.Seq[string]
	if *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(documents)
	}

	total, err := seedBatched(ctx, repo, *collection, source, 5)
	if err != nil {
		panic(err)
	}
	slog.Info("seeding complete", "collection", *collection, "records", total)
}
