// Command facemirror-checkin runs a single capture through the full
// Response Normalizer -> Quality Gate -> Comparison Engine pipeline
// against a locally persisted, encrypted state-check store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/config"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/crypto"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/repository"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/service"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/subjective"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/vision/mock"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	imagePath := flag.String("image", "", "path to the captured image")
	note := flag.String("note", "", "optional plaintext note to attach to the record")
	mood := flag.Int("mood", 0, "optional self-reported mood 1-5 (0 = no recent entry)")
	flag.Parse()

	if *imagePath == "" {
		return fmt.Errorf("-image is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	image, err := os.ReadFile(*imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	derived, err := crypto.DeriveKey(cfg.KeySecret, nil, cfg.PBKDF2Iterations)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	cipher, err := crypto.New(derived.Key)
	if err != nil {
		return fmt.Errorf("build cipher: %w", err)
	}

	repo, err := repository.Open(cfg.StorePath, cipher, cfg.BaselineHistoryLimit, cfg.RecentStateCheckLimit, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = repo.Close() }()

	moodSource := subjective.StaticSource{}
	if *mood > 0 {
		moodSource.Entry = &domain.SubjectiveEntry{Mood: *mood}
	}

	svc := service.NewCheckInService(mock.New(), moodSource, repo, logger)

	result, err := svc.Run(context.Background(), image, *note)
	if err != nil {
		return fmt.Errorf("run check-in: %w", err)
	}

	encoded, err := json.MarshalIndent(result.Comparison, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal comparison: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}
