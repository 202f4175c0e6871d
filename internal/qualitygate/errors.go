package qualitygate

import (
	"errors"

	"github.com/VillageChief/codescan-sfdx/internal/analysis"
	"github.com/VillageChief/codescan-sfdx/internal/endpoint"
	"github.com/VillageChief/codescan-sfdx/internal/reportfile"
)

// ErrTimeout is returned when the task is still pending or in progress at the deadline
var ErrTimeout = errors.New("quality gate timeout")

var (
	ErrTaskURLNotFound        = endpoint.ErrTaskURLNotFound
	ErrQualityGateURLNotFound = endpoint.ErrQualityGateURLNotFound
	ErrInvalidURL             = endpoint.ErrInvalidURL
	ErrReportFileUnreadable   = reportfile.ErrReportFileUnreadable
)

type (
	ServerError    = analysis.ServerError
	TransportError = analysis.TransportError
)
