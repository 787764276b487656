package account

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Submission wire format, fields separated by semicolons:
//
//	Name; Intro; Followers; Following; IP; ReportCounts[; ReportedReasons]
//
// Followers, Following and ReportedReasons are comma-separated within their
// field. Field-count mismatches are a ParseError, never silently truncated.
const (
	minSubmissionFields = 6
	maxSubmissionFields = 7
)

// ParseError indicates a malformed submission record or batch.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse submission %q: %s", e.Input, e.Reason)
}

// ParseSubmission parses a single semicolon-delimited account record.
func ParseSubmission(record string) (*Descriptor, error) {
	fields := strings.Split(record, ";")
	if len(fields) < minSubmissionFields || len(fields) > maxSubmissionFields {
		return nil, &ParseError{
			Input:  record,
			Reason: fmt.Sprintf("expected %d or %d fields, got %d", minSubmissionFields, maxSubmissionFields, len(fields)),
		}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	reportCount, err := strconv.Atoi(fields[5])
	if err != nil {
		return nil, &ParseError{Input: record, Reason: fmt.Sprintf("report count %q is not a number", fields[5])}
	}
	if reportCount < 0 {
		return nil, &ParseError{Input: record, Reason: fmt.Sprintf("report count %d is negative", reportCount)}
	}

	d := &Descriptor{
		Name:           fields[0],
		Intro:          fields[1],
		FollowersField: fields[2],
		FollowingField: fields[3],
		Followers:      splitList(fields[2]),
		Following:      splitList(fields[3]),
		IPAddress:      fields[4],
		ReportCount:    reportCount,
	}
	if len(fields) == maxSubmissionFields {
		d.ReportedReasons = splitList(fields[6])
	}
	return d, nil
}

// ParseBatch parses a JSON object mapping account id to submission record.
// Key order in the document is preserved so downstream scoring and decision
// output are deterministic.
func ParseBatch(data []byte) (*CriteriaSet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, &ParseError{Input: trimForError(data), Reason: "batch is not a JSON object"}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &ParseError{Input: trimForError(data), Reason: "batch is not a JSON object"}
	}

	set := NewCriteriaSet()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &ParseError{Input: trimForError(data), Reason: "truncated batch object"}
		}
		id := keyTok.(string)

		var record string
		if err := dec.Decode(&record); err != nil {
			return nil, &ParseError{Input: id, Reason: "record value is not a string"}
		}

		d, err := ParseSubmission(record)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", id, err)
		}
		set.Add(id, d)
	}
	return set, nil
}

func splitList(field string) []string {
	var out []string
	for _, item := range strings.Split(field, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func trimForError(data []byte) string {
	const max = 64
	s := string(data)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
