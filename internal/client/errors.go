package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNotFound reports that a call targeted an id the platform no longer has.
var ErrNotFound = errors.New("record not found")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CallError is the decoded platform error envelope.
type CallError struct {
	Function   string
	StatusCode int
	Code       string
	Fields     []FieldError
}

func (e *CallError) Error() string {
	msg := fmt.Sprintf("call %s failed: %s", e.Function, e.Code)

	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))

		for _, f := range e.Fields {
			parts = append(parts, f.Message)
		}

		msg += " (" + strings.Join(parts, "; ") + ")"
	}

	return msg
}

func (e *CallError) Unwrap() error {
	if e.Code == "NOT_FOUND" {
		return ErrNotFound
	}

	return nil
}

// IsValidation reports whether the platform rejected the argument record
// before executing the call.
func (e *CallError) IsValidation() bool {
	return e.Code == "VALIDATION_ERROR"
}

func decodeCallError(fn string, resp *http.Response) error {
	callErr := &CallError{
		Function:   fn,
		StatusCode: resp.StatusCode,
		Code:       fmt.Sprintf("HTTP_%d", resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if err != nil {
		return callErr
	}

	var envelope struct {
		Error struct {
			Code   string       `json:"code"`
			Errors []FieldError `json:"errors"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		callErr.Code = envelope.Error.Code
		callErr.Fields = envelope.Error.Errors
	}

	return callErr
}
