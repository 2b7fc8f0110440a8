package domain

import "time"

// CapacityMetrics are the seven neuro-affirming capacity dimensions,
// each self-reported on a 0..10 scale.
type CapacityMetrics struct {
	Focus     int `json:"focus"`
	Social    int `json:"social"`
	Structure int `json:"structure"`
	Emotional int `json:"emotional"`
	Physical  int `json:"physical"`
	Sensory   int `json:"sensory"`
	Executive int `json:"executive"`
}

// NeuroMetrics bundles the capacity dimensions with the upstream-derived
// spoon level. The core only reads these fields; it never computes them.
type NeuroMetrics struct {
	Capacity   CapacityMetrics `json:"capacity"`
	SpoonLevel int             `json:"spoonLevel"`
}

// SubjectiveEntry is the user's self-reported mood and capacity at a point
// in time, produced by the external Subjective Source.
type SubjectiveEntry struct {
	Mood         int          `json:"mood"`
	MoodLabel    string       `json:"moodLabel"`
	NeuroMetrics NeuroMetrics `json:"neuroMetrics"`
	Timestamp    time.Time    `json:"timestamp"`
}

// ClampMood clamps Mood to [1,5] on ingestion, per the data model.
func (e SubjectiveEntry) ClampMood() SubjectiveEntry {
	if e.Mood < 1 {
		e.Mood = 1
	}
	if e.Mood > 5 {
		e.Mood = 5
	}
	return e
}
