// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import "fmt"

// Domain error codes carried to the API error envelope. Every pipeline
// failure maps to exactly one of these.
const (
	CodePayloadError           = "payload_error"
	CodeInvalidChartKey        = "invalid_chart_key"
	CodeMissingRequiredColumns = "missing_required_columns"
	CodeInvalidValueRange      = "invalid_value_range"
	CodeDatasetTooLarge        = "dataset_too_large"
	CodeInternalError          = "internal_error"
)

// DomainError is a terminal, request-scoped failure. Details carry the
// caller-facing specifics (missing column names, offending value ranges,
// the strategy's own message).
type DomainError struct {
	Code    string
	Message string
	Details []string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newDomainError(code, message string, details ...string) *DomainError {
	return &DomainError{Code: code, Message: message, Details: details}
}
