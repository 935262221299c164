package preprocess

// Stage names carried on issues and log records
const (
	StageMissingValues = "missing_values"
	StageDuplicates    = "duplicates"
	StageOutliers      = "outliers"
	StageNormalize     = "normalize"
	StageDummies       = "dummy_variables"
)

// Issue records one diagnostic raised while a stage transformed a table.
// Stages deal with bad input by recording an issue and moving on; issues
// are the caller's view of everything that deviated from the happy path.
type Issue struct {
	Stage  string `json:"stage"`
	Column string `json:"column,omitempty"`
	Reason string `json:"reason"`
}

// Report aggregates the diagnostics of a single stage invocation
type Report struct {
	Stage  string  `json:"stage"`
	Issues []Issue `json:"issues,omitempty"`
}

func newReport(stage string) *Report {
	return &Report{Stage: stage}
}

func (r *Report) add(column, reason string) {
	r.Issues = append(r.Issues, Issue{Stage: r.Stage, Column: column, Reason: reason})
}

// Empty reports whether the stage completed without diagnostics
func (r *Report) Empty() bool {
	return len(r.Issues) == 0
}
