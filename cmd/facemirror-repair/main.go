// Command facemirror-repair walks a local state-check store, reports any
// record that fails to decrypt, and signs the resulting report so its
// provenance can be checked later.
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
	"github.com/saturnino-fabrica-de-software/facemirror/internal/repair"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	sign := flag.Bool("sign", false, "sign the resulting report as a JWT")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

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

	logger.Info("walking store", "path", cfg.StorePath)

	report, err := repair.Run(context.Background(), repo)
	if err != nil {
		return fmt.Errorf("run repair walk: %w", err)
	}

	logger.Info("repair walk complete", "total_records", report.TotalRecords, "findings", len(report.Findings))

	if *sign {
		signer := repair.NewSigner([]byte(cfg.KeySecret), "facemirror-repair")
		token, err := signer.Sign(report)
		if err != nil {
			return fmt.Errorf("sign report: %w", err)
		}
		fmt.Println(token)
		return nil
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}
