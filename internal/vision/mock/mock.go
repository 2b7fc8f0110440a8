// Package mock provides a deterministic Vision Capability for tests and
// offline development, in the spirit of the teacher's provider/mock
// package: output is seeded from a hash of the input image so the same
// frame always yields the same analysis.
package mock

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/vision"
)

// Capability is a deterministic stand-in vision provider. It never returns
// an error; an undersized image is treated as unavailable (nil, nil) the
// same way a real provider timeout would be.
type Capability struct{}

// New returns a ready-to-use mock Capability.
func New() *Capability {
	return &Capability{}
}

// Analyze hashes the image and derives a small, plausible FACS reading
// from the digest so repeated calls on the same input are stable.
func (c *Capability) Analyze(ctx context.Context, req vision.Request) (*vision.Response, error) {
	if len(req.Image) < 64 {
		return nil, nil
	}

	hash := sha256.Sum256(req.Image)

	confidence := 0.55 + (float64(hash[0])/255.0)*0.4
	au6 := 1 + int(hash[1])%5
	au12 := 1 + int(hash[2])%5

	payload := map[string]any{
		"confidence": confidence,
		"actionUnits": []map[string]any{
			{"auCode": "AU6", "intensityNumeric": au6, "confidence": 0.8},
			{"auCode": "AU12", "intensityNumeric": au12, "confidence": 0.8},
		},
		"facsInterpretation": map[string]any{
			"duchenneSmile": au6 >= 3 && au12 >= 3,
			"socialSmile":   au12 >= 3 && au6 < 3,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("mock vision: marshal payload: %w", err)
	}

	return &vision.Response{Content: string(body)}, nil
}
