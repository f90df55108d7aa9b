// Package validator parses analyze request bodies. A body that parses is
// accepted as-is; field contents are left for the provider to judge.
package validator

import (
	"encoding/json"

	"github.com/aashari/go-report-analyzer/internal/errors"
	"github.com/aashari/go-report-analyzer/internal/types"
)

// DecodeAnalysisRequest parses an analyze request body. A body that is not
// JSON, or whose fields have the wrong JSON type, is an internal error
// carrying the decoder's message. Absent or empty fields decode to "".
func DecodeAnalysisRequest(body []byte) (types.AnalysisRequest, *errors.APIError) {
	var req types.AnalysisRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, errors.NewInternalError(err)
	}
	return req, nil
}
