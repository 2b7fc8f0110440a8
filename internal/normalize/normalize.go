// Package normalize implements the Response Normalizer: it converts
// heterogeneous vision-provider payloads (parsed objects or raw text) into
// the canonical domain.FacialAnalysis every downstream component consumes.
//
// Normalization never threads the raw payload past this package — everything
// downstream operates on the canonical form only (see SPEC_FULL.md design
// notes).
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
)

// maxTrailEntries bounds the in-process debug ring buffer (spec: kept
// in-process, never persisted).
const maxTrailEntries = 64

// Coercion records one field-level default-fill or shape recovery applied
// during normalization.
type Coercion struct {
	Field  string `json:"field"`
	Detail string `json:"detail"`
}

// Result is the Normalizer's output: the canonical analysis plus the
// bounded coercion trail (Open Question 2 — exposed, never forced on a
// caller).
type Result struct {
	Analysis domain.FacialAnalysis
	Trail    []Coercion
}

type builder struct {
	trail []Coercion
}

func (b *builder) record(field, detail string) {
	if len(b.trail) >= maxTrailEntries {
		b.trail = b.trail[1:]
	}
	b.trail = append(b.trail, Coercion{Field: field, Detail: detail})
}

// Normalize accepts a provider payload — already-parsed (map[string]any,
// []byte, json.RawMessage) or raw text (string) — and returns the
// canonical analysis. A nil or wholly empty payload yields the offline
// fallback (never an error). Idempotent: normalizing a canonical
// domain.FacialAnalysis returns an equal value.
func Normalize(payload any) (Result, error) {
	b := &builder{}

	if payload == nil {
		return Result{Analysis: domain.OfflineFallback()}, nil
	}

	if analysis, ok := payload.(domain.FacialAnalysis); ok {
		return Result{Analysis: clampAnalysis(analysis)}, nil
	}
	if analysisPtr, ok := payload.(*domain.FacialAnalysis); ok {
		if analysisPtr == nil {
			return Result{Analysis: domain.OfflineFallback()}, nil
		}
		return Result{Analysis: clampAnalysis(*analysisPtr)}, nil
	}

	raw, err := toMap(payload, b)
	if err != nil {
		return Result{}, err
	}

	if len(raw) == 0 {
		return Result{Analysis: domain.OfflineFallback(), Trail: b.trail}, nil
	}

	raw = unwrapFacsAnalysis(raw, b)

	analysis := buildAnalysis(raw, b)
	return Result{Analysis: analysis, Trail: b.trail}, nil
}

// NormalizeText is the text-payload entry point used when the Vision
// Capability returns a string body rather than a pre-parsed object.
func NormalizeText(text string) (Result, error) {
	return Normalize(text)
}

// toMap converts the many shapes a provider payload can arrive in into a
// generic map, applying safe-parse recovery for text payloads that aren't
// directly valid JSON.
func toMap(payload any, b *builder) (map[string]any, error) {
	switch v := payload.(type) {
	case map[string]any:
		return v, nil
	case json.RawMessage:
		return parseJSONBytes([]byte(v), b)
	case []byte:
		return parseJSONBytes(v, b)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return map[string]any{}, nil
		}
		return parseJSONBytes([]byte(trimmed), b)
	default:
		// Fall back through JSON marshal/unmarshal so arbitrary structs
		// (e.g. provider SDK response types) are accepted too.
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, domain.ErrMalformedResponse.WithError(err)
		}
		return parseJSONBytes(encoded, b)
	}
}

func parseJSONBytes(data []byte, b *builder) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(data, &out); err == nil {
		return out, nil
	}

	recovered, recErr := safeParse(data)
	if recErr != nil {
		return nil, domain.ErrMalformedResponse.WithError(recErr)
	}
	b.record("_payload", "recovered via safe-parse fallback")
	return recovered, nil
}

// unwrapFacsAnalysis implements rule 1: if the top-level object has a
// single key matching "facs_analysis" in any casing, unwrap to its value.
func unwrapFacsAnalysis(raw map[string]any, b *builder) map[string]any {
	if len(raw) != 1 {
		return raw
	}
	for k, v := range raw {
		if strings.EqualFold(normalizeKey(k), "facsanalysis") {
			if nested, ok := v.(map[string]any); ok {
				b.record("_wrapper", fmt.Sprintf("unwrapped top-level key %q", k))
				return nested
			}
		}
	}
	return raw
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(k), "_", "")
}
