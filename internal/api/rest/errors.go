package rest

import "errors"

var errMissingWorkingDir = errors.New("working_dir is required")
