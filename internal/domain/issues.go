// internal/domain/issues.go
package domain

import "fmt"

// IssueSeverity distinguishes recoverable warnings from component-fatal errors.
type IssueSeverity string

const (
	SeverityWarning IssueSeverity = "warning"
	SeverityError   IssueSeverity = "error"
)

// Issue is one structured data-quality finding from a component. Components
// never fail a run over bad rows; they drop or coerce the row, record an
// Issue, and keep going. A calling layer decides whether warnings block.
type Issue struct {
	Component string        `json:"component"`
	Severity  IssueSeverity `json:"severity"`
	Message   string        `json:"message"`
	Keys      []string      `json:"keys,omitempty"`
	Count     int           `json:"count"`
}

// IssueLog accumulates issues for one component during a run.
type IssueLog struct {
	component string
	issues    []Issue
}

// NewIssueLog creates an issue log bound to a component name.
func NewIssueLog(component string) *IssueLog {
	return &IssueLog{component: component}
}

// Warnf records a warning with a formatted message.
func (l *IssueLog) Warnf(format string, args ...interface{}) {
	l.issues = append(l.issues, Issue{
		Component: l.component,
		Severity:  SeverityWarning,
		Message:   fmt.Sprintf(format, args...),
		Count:     1,
	})
}

// Errorf records a component-fatal error with a formatted message.
func (l *IssueLog) Errorf(format string, args ...interface{}) {
	l.issues = append(l.issues, Issue{
		Component: l.component,
		Severity:  SeverityError,
		Message:   fmt.Sprintf(format, args...),
		Count:     1,
	})
}

// WarnKeys records a warning that affects a set of keys, e.g. the SKUs
// dropped from a join.
func (l *IssueLog) WarnKeys(message string, keys []string) {
	if len(keys) == 0 {
		return
	}
	l.issues = append(l.issues, Issue{
		Component: l.component,
		Severity:  SeverityWarning,
		Message:   message,
		Keys:      keys,
		Count:     len(keys),
	})
}

// All returns the recorded issues.
func (l *IssueLog) All() []Issue {
	return l.issues
}

// HasErrors reports whether any component-fatal error was recorded.
func (l *IssueLog) HasErrors() bool {
	for _, is := range l.issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}
