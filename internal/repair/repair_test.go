package repair_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/crypto"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/repair"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/repository"
)

func openRepo(t *testing.T, secret string) *repository.Repository {
	t.Helper()
	derived, err := crypto.DeriveKey(secret, nil, crypto.MinIterations)
	require.NoError(t, err)
	cipher, err := crypto.New(derived.Key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "facemirror.db")
	repo, err := repository.Open(path, cipher, 0, 0, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRun_NoFindingsOnHealthyStore(t *testing.T) {
	repo := openRepo(t, "secret")
	ctx := context.Background()
	analysis := domain.OfflineFallback()

	_, err := repo.SaveStateCheck(ctx, domain.StateCheckInput{Analysis: &analysis})
	require.NoError(t, err)

	report, err := repair.Run(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalRecords)
	assert.Empty(t, report.Findings)
}

func TestSignAndVerify_RoundTrips(t *testing.T) {
	signer := repair.NewSigner([]byte("signing-secret"), "facemirror-repair")
	report := repair.Report{TotalRecords: 3, Findings: []repair.Finding{{ID: "x", Reason: "DECRYPT_ERROR"}}}

	token, err := signer.Sign(report)
	require.NoError(t, err)

	verified, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, report.TotalRecords, verified.TotalRecords)
	assert.Equal(t, report.Findings, verified.Findings)
}

func TestVerify_RejectsTamperedSecret(t *testing.T) {
	signer := repair.NewSigner([]byte("signing-secret"), "facemirror-repair")
	token, err := signer.Sign(repair.Report{TotalRecords: 1})
	require.NoError(t, err)

	other := repair.NewSigner([]byte("different-secret"), "facemirror-repair")
	_, err = other.Verify(token)
	assert.Error(t, err)
}
