// Package core provides the business logic for loading delimited files and
// exploring them as in-memory tables. It has no UI dependencies and can be
// driven by any frontend.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors surfaced to callers. csvparse.ErrEmptyInput joins these
// for the parser's own empty-input case.
var (
	// ErrNoDataRows means the file was syntactically readable but zero
	// rows survived blank-row filtering. Reported distinctly from a hard
	// parse failure.
	ErrNoDataRows = errors.New("csv file contains no data rows")

	// ErrBadExtension means the uploaded file does not look like a
	// delimited text file.
	ErrBadExtension = errors.New("unsupported file extension")

	// ErrFileTooLarge means the upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrSessionNotFound means the grid session expired or never existed.
	ErrSessionNotFound = errors.New("session not found")
)

// UserMessage is a user-facing rendering of a technical error, with a code
// support staff can look up.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (matched case-insensitively with
// strings.Contains, first match wins) to user messages.
var errorPatterns = []errorPattern{
	{
		pattern: "csv file is empty",
		msg: UserMessage{
			Message: "CSV file is empty",
			Action:  "Please upload a file that contains data",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no data rows",
		msg: UserMessage{
			Message: "CSV file contains no data rows",
			Action:  "The file only has a header line. Add at least one data row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported file extension",
		msg: UserMessage{
			Message: "Please upload a CSV file",
			Action:  "Accepted extensions: .csv, .txt, .tsv",
			Code:    "FILE003",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks and upload them separately",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE005",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "This table session has expired",
			Action:  "Upload the file again to start a new session",
			Code:    "SES001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is the fallback for any other parse or processing failure.
var defaultMessage = UserMessage{
	Message: "The file could not be parsed",
	Action:  "Check that the file is valid delimited text and try again",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders an error as a one-line user-visible message.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
