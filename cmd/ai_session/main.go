// Interactive AI session demo: streams an answer, prints the chunks as they
// arrive, then regenerates the last answer.
//
// Required environment: ORAMA_COLLECTION_ID, ORAMA_API_KEY.
// Optional: ORAMA_READER_URL for self-hosted instances.
package main

import (
	"context"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/oramasearch/oramacore-client-go/pkg/collection"
	"github.com/oramasearch/oramacore-client-go/pkg/logger"
	"github.com/oramasearch/oramacore-client-go/pkg/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env: %v", err)
	}

	collectionID := os.Getenv("ORAMA_COLLECTION_ID")
	apiKey := os.Getenv("ORAMA_API_KEY")
	if collectionID == "" || apiKey == "" {
		log.Fatal("ORAMA_COLLECTION_ID and ORAMA_API_KEY must be set")
	}

	zlog := logger.NewDevelopment()
	defer zlog.Sync()

	cfg := collection.Config{
		CollectionID: collectionID,
		APIKey:       apiKey,
		Logger:       zlog,
	}
	if readerURL := os.Getenv("ORAMA_READER_URL"); readerURL != "" {
		cfg.Cluster = &collection.ClusterConfig{ReaderURL: readerURL}
	}

	manager, err := collection.New(cfg)
	if err != nil {
		log.Fatalf("create collection manager: %v", err)
	}

	s := manager.AI.CreateAISession()
	color.Cyan("Session %s", s.SessionID())

	ctx := context.Background()
	question := "What is this collection about?"
	color.Yellow("Q: %s", question)

	results, err := s.AnswerStream(ctx, session.AnswerRequest{Query: question})
	if err != nil {
		log.Fatalf("start stream: %v", err)
	}

	for res := range results {
		if res.Err != nil {
			log.Fatalf("stream failed: %v", res.Err)
		}
		switch res.Chunk.Kind {
		case session.ChunkContent:
			color.New(color.FgGreen).Print(res.Chunk.Content)
		case session.ChunkStatusUpdate:
			color.New(color.FgHiBlack).Printf("\n[%s]\n", res.Chunk.Content)
		case session.ChunkRetry:
			color.Red("reconnecting (attempt %d, in %s)", res.Chunk.Attempt, res.Chunk.Delay)
		case session.ChunkDone:
			color.New(color.FgGreen).Println()
		}
	}

	color.Yellow("Regenerating the last answer...")
	answer, err := s.RegenerateLast(ctx, true)
	if err != nil {
		log.Fatalf("regenerate: %v", err)
	}
	color.Green("%s", answer)

	color.Cyan("%d messages, %d interactions", len(s.GetMessages()), len(s.GetState()))
}
