package models

import (
	"sort"
	"time"
)

// TimestampLayout is the encoding used for last_updated. It is always UTC
// with nine fractional digits, so string order matches time order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// NoteRecord represents the notes of one classroom
type NoteRecord struct {
	ClassroomID string  `json:"classroom_id,omitempty" dynamodbav:"classroom_id"` // Caller-chosen classroom ID
	Content     *string `json:"content,omitempty" dynamodbav:"content"`           // nil when never written
	LastUpdated string  `json:"last_updated,omitempty" dynamodbav:"last_updated"` // Set by the repository on every write
}

// HasContent reports whether the record belongs to a real classroom.
func (r NoteRecord) HasContent() bool {
	return r.Content != nil
}

// Text returns the content or "" when absent.
func (r NoteRecord) Text() string {
	if r.Content == nil {
		return ""
	}
	return *r.Content
}

// FormatTimestamp encodes t as a last_updated value.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp decodes a last_updated value.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}

// SortByRecency drops records without content and orders the rest by
// last_updated, newest first. Missing timestamps compare as "" and end up last.
func SortByRecency(records []NoteRecord) []NoteRecord {
	classes := make([]NoteRecord, 0, len(records))
	for _, r := range records {
		if r.HasContent() {
			classes = append(classes, r)
		}
	}
	sort.SliceStable(classes, func(i, j int) bool {
		return classes[i].LastUpdated > classes[j].LastUpdated
	})
	return classes
}
