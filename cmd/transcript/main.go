// Command transcript prints the local chat transcript kept by the client.
// Run it while the client is stopped: both need the store.
package main

import (
	"chat-client/repositories"
	"chat-client/ui"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	dbPath := flag.String("db", "transcript", "Path to the transcript badger DB")
	indexPath := flag.String("index", "", "Path to the bluge index, needed by -search")
	search := flag.String("search", "", "Full-text search terms")
	limit := flag.Int("limit", 0, "Number of entries to print, 0 for all")
	flag.Parse()

	logger := logs.GetLoggerFromLevel(slog.LevelWarn)
	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	var writer *bluge.Writer
	if *indexPath != "" {
		if writer, err = bluge.OpenWriter(bluge.DefaultConfig(*indexPath)); err != nil {
			log.Fatal("Error while opening Bluge: ", err)
		}
		defer writer.Close()
	}
	repository := repositories.NewTranscriptRepository(db, writer, logger)

	var entries []repositories.TranscriptEntry
	if *search != "" {
		topN := *limit
		if topN <= 0 {
			topN = 100
		}
		entries, err = repository.Search(context.Background(), *search, topN)
	} else {
		entries, err = repository.Recent(*limit)
	}
	if err != nil {
		log.Fatal(err)
	}
	ui.NewConsole(os.Stdout, false).Transcript(entries)
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil && strings.Contains(err.Error(), "Log truncate required") {
		// A crashed client leaves the value log untruncated: repair it once in write mode.
		fmt.Println("Repairing value log...")
		repaired, repairErr := badger.Open(badger.DefaultOptions(path).WithLogger(nil).WithBypassLockGuard(true))
		if repairErr != nil {
			return nil, fmt.Errorf("repair failed: %w", repairErr)
		}
		_ = repaired.Close()
		return badger.Open(opts)
	}
	return db, err
}
