package ui

import (
	"strings"

	"hpoannotate/internal/errors"
)

// errorResponse is the JSON body returned for failed API calls
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newErrorResponse(err error) errorResponse {
	return errorResponse{Error: err.Error(), Code: errors.GetCode(err)}
}

// parseToggle reads checkbox-style query values
func parseToggle(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
