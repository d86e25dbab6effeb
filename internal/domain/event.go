package domain

import "time"

// Stage is a pipeline state.
type Stage string

const (
	StageIdle            Stage = "idle"
	StageSearching       Stage = "searching"
	StageFiltering       Stage = "filtering"
	StageCuratingReviews Stage = "curating_reviews"
	StageScoring         Stage = "scoring"
	StageDone            Stage = "done"
	StageFailed          Stage = "failed"
)

// IsTerminal reports whether no transition leaves the stage.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}

// EventType names the SSE event a payload is sent as.
type EventType string

const (
	EventStarted         EventType = "started"
	EventCandidatesFound EventType = "candidates_found"
	EventStageProgress   EventType = "stage_progress"
	EventPartialResults  EventType = "partial_results"
	EventError           EventType = "error"
	EventDone            EventType = "done"
)

// PipelineEvent is one progress notification. Payload holds the struct matching Type.
type PipelineEvent struct {
	Type    EventType
	Payload any
}

// IsTerminal reports whether the event ends the stream.
func (e PipelineEvent) IsTerminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// StartedPayload opens every stream.
type StartedPayload struct {
	RequestID string    `json:"request_id"`
	RegionID  int64     `json:"region_id"`
	Checkin   string    `json:"checkin"`
	Checkout  string    `json:"checkout"`
	StartedAt time.Time `json:"started_at"`
}

// CandidatesFoundPayload reports the inventory hit count and how many listings were kept for analysis.
type CandidatesFoundPayload struct {
	Total    int `json:"total"`
	Analyzed int `json:"analyzed"`
}

// StageProgressPayload reports a stage transition or progress within the scoring stage.
type StageProgressPayload struct {
	Stage     Stage  `json:"stage"`
	Message   string `json:"message,omitempty"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	// Batch fields are set only for scoring batch outcomes.
	Batch           int    `json:"batch,omitempty"`
	Batches         int    `json:"batches,omitempty"`
	BatchOutcome    string `json:"batch_outcome,omitempty"`
	Attempt         int    `json:"attempt,omitempty"`
	EstimatedTokens int    `json:"estimated_tokens,omitempty"`
}

// PartialResultsPayload is the merged top N after each finished scoring batch.
type PartialResultsPayload struct {
	Results          []Enriched `json:"results"`
	BatchesCompleted int        `json:"batches_completed"`
	BatchesTotal     int        `json:"batches_total"`
}

// ErrorPayload is the failed terminal event.
type ErrorPayload struct {
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	Stage        Stage  `json:"stage"`
}

// SearchStats are the counts reported with the done event.
type SearchStats struct {
	TotalFound      int     `json:"total_found"`
	Analyzed        int     `json:"analyzed"`
	Shortlisted     int     `json:"shortlisted"`
	Returned        int     `json:"returned"`
	DegradedBatches int     `json:"degraded_batches"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
}

// DonePayload is the successful terminal event. Summary is nil when summarizing failed or is disabled.
type DonePayload struct {
	RequestID string         `json:"request_id"`
	Results   []Enriched     `json:"results"`
	Summary   *SearchSummary `json:"summary,omitempty"`
	Stats     SearchStats    `json:"stats"`
}
