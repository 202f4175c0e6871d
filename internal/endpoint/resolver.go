package endpoint

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/VillageChief/codescan-sfdx/internal/reportfile"
	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

// QualityGatePath is the project status endpoint relative to the server base URL
const QualityGatePath = "/api/qualitygates/project_status"

var (
	// ErrTaskURLNotFound is returned when the report file has no ceTaskUrl
	ErrTaskURLNotFound = errors.New("ceTaskUrl not found")
	// ErrQualityGateURLNotFound is returned when the quality gate URL cannot be built
	ErrQualityGateURLNotFound = errors.New("qualityGate url not found")
)

// Resolver builds request URLs from the report file in a scanner working directory
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a new resolver
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// TaskURL returns the compute engine task URL, rewritten to override when one is given
func (r *Resolver) TaskURL(dir, override string) (string, error) {
	record, err := reportfile.Read(dir)
	if err != nil {
		return "", err
	}

	taskURL, _ := record.CeTaskURL()
	if taskURL == "" {
		return "", ErrTaskURLNotFound
	}
	if override == "" {
		return taskURL, nil
	}

	rewritten, err := Rewrite(taskURL, override)
	if err != nil {
		return "", fmt.Errorf("failed to override task url: %w", err)
	}
	r.logger.Debug("overrode task url",
		zap.String("original", taskURL),
		zap.String("url", rewritten),
	)
	return rewritten, nil
}

// QualityGateURL returns the project status URL for the analysis produced by task.
// A projectKey is required. The server base comes from serverUrl; when the report has
// none, override alone supplies the authority.
func (r *Resolver) QualityGateURL(dir string, task *types.AnalysisTask, override string) (string, error) {
	record, err := reportfile.Read(dir)
	if err != nil {
		return "", err
	}

	if projectKey, _ := record.ProjectKey(); projectKey == "" {
		return "", ErrQualityGateURLNotFound
	}

	query := "analysisId=" + url.QueryEscape(task.QualityGateAnalysisID())
	serverURL, _ := record.ServerURL()

	if serverURL == "" {
		if override == "" {
			return "", ErrQualityGateURLNotFound
		}
		o, err := parseAbsolute(override)
		if err != nil {
			return "", fmt.Errorf("failed to override quality gate url: %w", err)
		}
		u := url.URL{
			Scheme:   o.Scheme,
			User:     o.User,
			Host:     o.Host,
			Path:     QualityGatePath,
			RawQuery: query,
		}
		return u.String(), nil
	}

	qgURL := strings.TrimRight(serverURL, "/") + QualityGatePath + "?" + query
	if override == "" {
		return qgURL, nil
	}

	rewritten, err := Rewrite(qgURL, override)
	if err != nil {
		return "", fmt.Errorf("failed to override quality gate url: %w", err)
	}
	r.logger.Debug("overrode quality gate url",
		zap.String("original", qgURL),
		zap.String("url", rewritten),
	)
	return rewritten, nil
}
