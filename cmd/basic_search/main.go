// Basic search demo: runs a hybrid search and prints the hits.
//
// Required environment: ORAMA_COLLECTION_ID, ORAMA_API_KEY.
// Optional: ORAMA_SEARCH_TERM (defaults to "hello").
package main

import (
	"context"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/oramasearch/oramacore-client-go/pkg/collection"
	"github.com/oramasearch/oramacore-client-go/pkg/logger"
	"github.com/oramasearch/oramacore-client-go/pkg/types"
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

	term := os.Getenv("ORAMA_SEARCH_TERM")
	if term == "" {
		term = "hello"
	}

	zlog := logger.NewDevelopment()
	defer zlog.Sync()

	manager, err := collection.New(collection.Config{
		CollectionID: collectionID,
		APIKey:       apiKey,
		Logger:       zlog,
	})
	if err != nil {
		log.Fatalf("create collection manager: %v", err)
	}

	result, err := manager.Search(context.Background(), types.SearchParams{
		Term: term,
		Mode: types.SearchModeHybrid,
	})
	if err != nil {
		log.Fatalf("search: %v", err)
	}

	color.Cyan("%d results in %s", result.Count, result.Elapsed.Formatted)
	for _, hit := range result.Hits {
		color.Green("  %s (score %.3f)", hit.ID, hit.Score)
		color.New(color.FgHiBlack).Printf("    %s\n", string(hit.Document))
	}
}
