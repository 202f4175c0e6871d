// Package reportfile reads the report-task.txt file the scanner leaves in its working
// directory.
package reportfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the name of the report file inside the scanner working directory
const FileName = "report-task.txt"

// Keys written by the scanner
const (
	KeyServerURL    = "serverUrl"
	KeyCeTaskURL    = "ceTaskUrl"
	KeyProjectKey   = "projectKey"
	KeyDashboardURL = "dashboardUrl"
)

// ErrReportFileUnreadable is returned when the report file is missing or cannot be read
var ErrReportFileUnreadable = errors.New("report file unreadable")

// Record holds the key=value pairs of one report file
type Record map[string]string

// Read loads <dir>/report-task.txt
func Read(dir string) (Record, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReportFileUnreadable, path, err)
	}
	return Parse(string(data)), nil
}

// Parse splits content into lines and records every key=value line. The value is
// everything after the first '=' and is kept verbatim. Later lines overwrite earlier
// ones for the same key.
func Parse(content string) Record {
	record := make(Record)
	for _, line := range strings.Split(content, "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			continue
		}
		record[key] = value
	}
	return record
}

// Get returns the value for key and whether it was present
func (r Record) Get(key string) (string, bool) {
	v, ok := r[key]
	return v, ok
}

func (r Record) ServerURL() (string, bool)    { return r.Get(KeyServerURL) }
func (r Record) CeTaskURL() (string, bool)    { return r.Get(KeyCeTaskURL) }
func (r Record) ProjectKey() (string, bool)   { return r.Get(KeyProjectKey) }
func (r Record) DashboardURL() (string, bool) { return r.Get(KeyDashboardURL) }
