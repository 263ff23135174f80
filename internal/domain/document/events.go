package document

import "github.com/turtacn/LegalEase-Intelligence/pkg/types/common"

// Event types published on the message bus.
const (
	EventAnalysisRequested = "analysis.requested"
	EventAnalysisCompleted = "analysis.completed"
	EventAnalysisFailed    = "analysis.failed"
)

// AnalysisRequestedEvent asks a worker to analyze a stored upload.
type AnalysisRequestedEvent struct {
	common.BaseEvent
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ObjectKey  string `json:"object_key"`
}

// NewAnalysisRequestedEvent builds the request event for d.
func NewAnalysisRequestedEvent(d *Document) *AnalysisRequestedEvent {
	return &AnalysisRequestedEvent{
		BaseEvent:  common.NewBaseEvent(EventAnalysisRequested, d.ID),
		DocumentID: d.ID,
		Filename:   d.Filename,
		ObjectKey:  d.ObjectKey,
	}
}

// AnalysisCompletedEvent announces a finished analysis.
type AnalysisCompletedEvent struct {
	common.BaseEvent
	DocumentID        string `json:"document_id"`
	Status            Status `json:"status"`
	ClauseCount       int    `json:"clause_count"`
	ReadabilityBefore int    `json:"readability_before"`
	ReadabilityAfter  int    `json:"readability_after"`
	FailureReason     string `json:"failure_reason,omitempty"`
}

// NewAnalysisCompletedEvent builds the completion event for d.  A failed
// document yields an analysis.failed event.
func NewAnalysisCompletedEvent(d *Document) *AnalysisCompletedEvent {
	eventType := EventAnalysisCompleted
	if d.Status == StatusFailed {
		eventType = EventAnalysisFailed
	}
	return &AnalysisCompletedEvent{
		BaseEvent:         common.NewBaseEvent(eventType, d.ID),
		DocumentID:        d.ID,
		Status:            d.Status,
		ClauseCount:       len(d.Clauses),
		ReadabilityBefore: d.ReadabilityBefore,
		ReadabilityAfter:  d.ReadabilityAfter,
		FailureReason:     d.FailureReason,
	}
}
