package types

import (
	"encoding/json"
	"time"
)

// Quality gate verdicts reported by the server
const (
	GateOK    = "OK"
	GateWarn  = "WARN"
	GateError = "ERROR"
	GateNone  = "NONE"
)

// ProjectStatus is the quality gate payload. The raw document is kept so it can be
// forwarded unchanged; Status and Conditions are decoded for publishers.
type ProjectStatus struct {
	Status     string      `json:"status"`
	Conditions []Condition `json:"conditions,omitempty"`

	raw json.RawMessage
}

// Condition is a single quality gate condition result
type Condition struct {
	Status         string `json:"status"`
	MetricKey      string `json:"metricKey"`
	Comparator     string `json:"comparator,omitempty"`
	ErrorThreshold string `json:"errorThreshold,omitempty"`
	ActualValue    string `json:"actualValue,omitempty"`
}

// UnmarshalJSON decodes the known fields and retains the original bytes
func (p *ProjectStatus) UnmarshalJSON(data []byte) error {
	type plain ProjectStatus
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = ProjectStatus(decoded)
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the payload exactly as the server sent it
func (p ProjectStatus) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	type plain ProjectStatus
	return json.Marshal(plain(p))
}

// FailedConditions returns the conditions that did not pass
func (p *ProjectStatus) FailedConditions() []Condition {
	var failed []Condition
	for _, c := range p.Conditions {
		if c.Status != GateOK {
			failed = append(failed, c)
		}
	}
	return failed
}

// Verdict is a quality gate result together with the identifiers it belongs to
type Verdict struct {
	ProjectKey   string
	TaskID       string
	AnalysisID   string
	DashboardURL string
	Status       *ProjectStatus
}

// CheckRequest is the serialisable input of a remotely started check
type CheckRequest struct {
	WorkingDir     string        `json:"working_dir"`
	ServerOverride string        `json:"server_override,omitempty"`
	Timeout        time.Duration `json:"timeout,omitempty"`
	PollInterval   time.Duration `json:"poll_interval,omitempty"`
	Publish        bool          `json:"publish,omitempty"`
}
