// Package models defines the shared domain types for veneer:
// generated artifacts, check diagnostics, and per-artifact failure records.
package models

import (
	"fmt"
	"strings"
)

// ArtifactKind classifies a generated artifact.
type ArtifactKind string

const (
	// KindLeafElement is a small self-contained element (button, badge, input).
	KindLeafElement ArtifactKind = "leaf-element"
	// KindComposite is a component composed from leaf elements.
	KindComposite ArtifactKind = "composite"
	// KindComplexModule is a full module (page section, data table, form flow).
	KindComplexModule ArtifactKind = "complex-module"
	// KindIcon is a generated SVG icon component.
	KindIcon ArtifactKind = "icon"
)

// Valid reports whether the kind is one of the known artifact kinds.
func (k ArtifactKind) Valid() bool {
	switch k {
	case KindLeafElement, KindComposite, KindComplexModule, KindIcon:
		return true
	}
	return false
}

// Artifact is a named, typed unit of generated source tracked by the registry.
// Artifacts are created by the generation phase and exist for the run's
// duration; repair rewrites their content but never removes them.
type Artifact struct {
	// Name is the unique artifact name (e.g. "Button").
	Name string `yaml:"name"`
	// Kind classifies the artifact.
	Kind ArtifactKind `yaml:"kind"`
	// StoragePath is the path of the artifact's source, relative to the
	// output root.
	StoragePath string `yaml:"path"`
}

// Severity is the reported severity of a single diagnostic.
type Severity string

const (
	// SeverityError marks a diagnostic that fails validation.
	SeverityError Severity = "error"
	// SeverityWarning marks an advisory diagnostic.
	SeverityWarning Severity = "warning"
)

// CheckSource identifies which check pass produced a diagnostic.
type CheckSource string

const (
	// SourceType marks diagnostics from the type-check pass.
	SourceType CheckSource = "type"
	// SourceLint marks diagnostics from the lint pass.
	SourceLint CheckSource = "lint"
)

// IssueRecord is one reported problem in one artifact.
// Records are immutable once produced by a check pass.
type IssueRecord struct {
	// Line is the 1-based line number of the diagnostic.
	Line int
	// Column is the 1-based column number of the diagnostic.
	Column int
	// Message is the diagnostic text.
	Message string
	// RuleID is the lint rule or compiler error code, if any.
	RuleID string
	// Severity is error or warning.
	Severity Severity
	// Source is the check pass that produced this issue.
	Source CheckSource
}

// String renders the issue as a single diagnostic line.
func (i IssueRecord) String() string {
	rule := i.RuleID
	if rule == "" {
		rule = string(i.Source)
	}
	return fmt.Sprintf("%d:%d %s %s [%s]", i.Line, i.Column, i.Severity, i.Message, rule)
}

// FailureRecord aggregates all issues found for one artifact by the most
// recent comprehensive check. Records are rebuilt fresh every orchestrator
// iteration and never merged across iterations: repair is expected to have
// changed the content, so stale issues must not persist.
type FailureRecord struct {
	// ArtifactName is the owning artifact's name.
	ArtifactName string
	// ArtifactPath is the owning artifact's storage path.
	ArtifactPath string
	// ArtifactKind is the owning artifact's kind.
	ArtifactKind ArtifactKind
	// Issues lists all matched diagnostics, type-check issues first.
	Issues []IssueRecord
}

// ErrorCount returns the number of error-severity issues.
func (r *FailureRecord) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// ErrorText renders all error-severity issues as newline-separated
// diagnostic lines, suitable for inclusion in a repair prompt.
func (r *FailureRecord) ErrorText() string {
	var lines []string
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			lines = append(lines, issue.String())
		}
	}
	return strings.Join(lines, "\n")
}
