// Package repair implements the local repository repair/audit tool
// (Open Question 3, decided in DESIGN.md): it walks every
// persisted state-check record, attempts to decrypt it, and produces a
// signed report naming any record that failed to decrypt (corrupted
// ciphertext, wrong key, or unsupported schema version).
package repair

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/repository"
)

// Finding describes one record the walker could not read cleanly.
type Finding struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Report summarizes a single repair run.
type Report struct {
	GeneratedAt  time.Time `json:"generatedAt"`
	TotalRecords int       `json:"totalRecords"`
	Findings     []Finding `json:"findings"`
}

// ReportClaims embeds the report under RegisteredClaims so the signed
// token can be verified and expired like any other JWT (grounded on the
// teacher's AdminClaims shape in internal/admin/jwt.go).
type ReportClaims struct {
	Report Report `json:"report"`
	jwt.RegisteredClaims
}

// Signer signs repair reports with an HMAC secret, analogous to the
// teacher's JWTService but scoped to this one report type.
type Signer struct {
	secretKey []byte
	issuer    string
}

// NewSigner builds a Signer.
func NewSigner(secretKey []byte, issuer string) *Signer {
	return &Signer{secretKey: secretKey, issuer: issuer}
}

// Sign wraps a Report in a signed JWT valid for 24 hours.
func (s *Signer) Sign(report Report) (string, error) {
	now := time.Now()
	claims := ReportClaims{
		Report: report,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Verify parses and validates a previously signed report token.
func (s *Signer) Verify(tokenString string) (*Report, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ReportClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("repair: unexpected signing method")
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ReportClaims)
	if !ok || !token.Valid {
		return nil, errors.New("repair: invalid report token")
	}
	return &claims.Report, nil
}

// Run walks every persisted state-check record via repo, recording one
// Finding per record that fails to decrypt or fails schema validation.
// It never stops early — a corrupt record doesn't block the rest of the
// walk.
func Run(ctx context.Context, repo *repository.Repository) (Report, error) {
	ids, err := repo.ListStateCheckIDs(ctx)
	if err != nil {
		return Report{}, err
	}

	findings := make([]Finding, 0)
	for _, id := range ids {
		if _, decErr := repo.GetStateCheck(ctx, id); decErr != nil {
			var coreErr *domain.CoreError
			reason := decErr.Error()
			if errors.As(decErr, &coreErr) {
				reason = coreErr.Code
			}
			findings = append(findings, Finding{ID: id, Reason: reason})
		}
	}

	return Report{
		GeneratedAt:  time.Now().UTC(),
		TotalRecords: len(ids),
		Findings:     findings,
	}, nil
}
