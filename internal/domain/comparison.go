package domain

// SmileType is the AU-grounded smile classification. The engine never
// assigns it a discrete emotion name beyond these three categories.
type SmileType string

const (
	SmileGenuine SmileType = "genuine"
	SmileSocial  SmileType = "social"
	SmileNone    SmileType = "none"
)

// FacsInsights summarizes the AU-derived signals folded into a comparison.
type FacsInsights struct {
	SmileType   SmileType `json:"smileType"`
	TensionAUs  []string  `json:"tensionAUs"`
	FatigueAUs  []string  `json:"fatigueAUs"`
	DetectedAUs []string  `json:"detectedAUs"`
}

// ComparisonResult is the Comparison Engine's output: a bounded
// discrepancy score plus an interpretation of any subjective/objective gap.
type ComparisonResult struct {
	DiscrepancyScore int          `json:"discrepancyScore"`
	SubjectiveState  string       `json:"subjectiveState"`
	ObjectiveState   string       `json:"objectiveState"`
	IsMaskingLikely  bool         `json:"isMaskingLikely"`
	BaselineApplied  bool         `json:"baselineApplied"`
	FacsInsights     FacsInsights `json:"facsInsights"`
}
