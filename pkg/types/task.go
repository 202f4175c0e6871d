package types

// TaskStatus is the server-controlled state of an analysis task
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskSuccess    TaskStatus = "SUCCESS"
	TaskFailed     TaskStatus = "FAILED"
	TaskCanceled   TaskStatus = "CANCELED"
)

// InProgress reports whether the server is still working on the task.
// Any status other than PENDING and IN_PROGRESS is terminal.
func (s TaskStatus) InProgress() bool {
	return s == TaskPending || s == TaskInProgress
}

// AnalysisTask is one snapshot of a background analysis task
type AnalysisTask struct {
	ID           string     `json:"id"`
	AnalysisID   string     `json:"analysisId,omitempty"`
	Type         string     `json:"type,omitempty"`
	ComponentKey string     `json:"componentKey,omitempty"`
	Status       TaskStatus `json:"status"`
	SubmittedAt  string     `json:"submittedAt,omitempty"`
	ExecutedAt   string     `json:"executedAt,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}

// QualityGateAnalysisID returns the id the quality gate endpoint is queried with
func (t *AnalysisTask) QualityGateAnalysisID() string {
	if t.AnalysisID != "" {
		return t.AnalysisID
	}
	return t.ID
}

// ServerMessage is one entry of the errors array the server embeds in responses
type ServerMessage struct {
	Msg string `json:"msg"`
}
