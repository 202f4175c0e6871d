package github

import (
	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

// GitHub rejects longer status descriptions
const maxDescriptionLen = 140

// Commit status states
const (
	StateSuccess = "success"
	StateFailure = "failure"
	StateError   = "error"
)

// StatusState maps a quality gate verdict to a commit status state
func StatusState(gate string) string {
	switch gate {
	case types.GateOK, types.GateWarn:
		return StateSuccess
	case types.GateError:
		return StateFailure
	default:
		return StateError
	}
}

// StatusDescription builds the one-line description shown next to the status
func StatusDescription(verdict *types.Verdict) string {
	desc := "Quality gate " + verdict.Status.Status
	if failed := verdict.Status.FailedConditions(); len(failed) > 0 {
		desc += ": failed"
		for i, c := range failed {
			if i > 0 {
				desc += ","
			}
			desc += " " + c.MetricKey
		}
	}
	return truncateString(desc, maxDescriptionLen)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
