package workflows

import (
	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

// WorkflowInput is the input for the quality gate workflow
type WorkflowInput struct {
	Request types.CheckRequest
}
