// Package apperrors declares a closed error taxonomy with an
// exit-code mapping. Transports classify upstream failures into these
// types at the boundary; everything above the transports only ever
// sees apperrors values (or InternalError, for anything that slips
// through).
package apperrors

import (
	"errors"
	"fmt"
)

// Exit codes.
const (
	ExitSuccess             = 0
	ExitUserError           = 1
	ExitRemoteError         = 2
	ExitAuthError           = 3
	ExitPreconditionError   = 4
	ExitInternalError       = 5
)

// Coded is implemented by every apperrors type so the command runner
// can map an error to an exit code with one type switch instead of a
// string match.
type Coded interface {
	error
	ExitCode() int
}

type MissingCredential struct{ EnvVar string }

func (e *MissingCredential) Error() string {
	return fmt.Sprintf("missing credential: set %s", e.EnvVar)
}
func (e *MissingCredential) ExitCode() int { return ExitAuthError }

type InvalidCredential struct{ Detail string }

func (e *InvalidCredential) Error() string  { return "invalid credential: " + e.Detail }
func (e *InvalidCredential) ExitCode() int  { return ExitAuthError }

type ConfigMissing struct{ Path string }

func (e *ConfigMissing) Error() string  { return fmt.Sprintf("config file not found: %s", e.Path) }
func (e *ConfigMissing) ExitCode() int  { return ExitUserError }

type ConfigInvalid struct {
	File string
	Line int
	Err  error
}

func (e *ConfigInvalid) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("config invalid at %s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("config invalid in %s: %v", e.File, e.Err)
}
func (e *ConfigInvalid) ExitCode() int { return ExitUserError }
func (e *ConfigInvalid) Unwrap() error { return e.Err }

type ConfigMissingField struct{ Field string }

func (e *ConfigMissingField) Error() string { return fmt.Sprintf("config missing required field %q", e.Field) }
func (e *ConfigMissingField) ExitCode() int { return ExitUserError }

type RepositoryFormatInvalid struct{ Value string }

func (e *RepositoryFormatInvalid) Error() string {
	return fmt.Sprintf("repository must look like owner/repo, got %q", e.Value)
}
func (e *RepositoryFormatInvalid) ExitCode() int { return ExitUserError }

type IssueNotFound struct {
	Owner, Repo string
	Number      int
}

func (e *IssueNotFound) Error() string {
	return fmt.Sprintf("issue %s/%s#%d not found", e.Owner, e.Repo, e.Number)
}
func (e *IssueNotFound) ExitCode() int { return ExitRemoteError }

type Forbidden struct{ Detail string }

func (e *Forbidden) Error() string  { return "forbidden: " + e.Detail }
func (e *Forbidden) ExitCode() int  { return ExitRemoteError }

type Timeout struct{ Operation string }

func (e *Timeout) Error() string  { return fmt.Sprintf("timed out: %s", e.Operation) }
func (e *Timeout) ExitCode() int  { return ExitRemoteError }

type RateLimited struct{ RetryAfter string }

func (e *RateLimited) Error() string {
	if e.RetryAfter != "" {
		return "rate limited, retry after " + e.RetryAfter
	}
	return "rate limited"
}
func (e *RateLimited) ExitCode() int { return ExitRemoteError }

type NetworkError struct{ Err error }

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) ExitCode() int { return ExitRemoteError }
func (e *NetworkError) Unwrap() error { return e.Err }

// Feature is the set of optional graph-transport capabilities the
// Hybrid Client probes for.
type Feature string

const (
	FeatureSubIssues  Feature = "sub_issues"
	FeatureIssueTypes Feature = "issue_types"
	FeatureProjectsV2 Feature = "projects_v2"
)

type FeatureUnavailable struct{ Feature Feature }

func (e *FeatureUnavailable) Error() string { return fmt.Sprintf("feature unavailable: %s", e.Feature) }
func (e *FeatureUnavailable) ExitCode() int { return ExitRemoteError }

type IllegalTransition struct{ Current, Attempted string }

func (e *IllegalTransition) Error() string {
	return fmt.Sprintf("cannot apply transition %q from state %q", e.Attempted, e.Current)
}
func (e *IllegalTransition) ExitCode() int { return ExitPreconditionError }

type RequiredSectionMissing struct{ Names []string }

func (e *RequiredSectionMissing) Error() string {
	return fmt.Sprintf("missing required sections: %v", e.Names)
}
func (e *RequiredSectionMissing) ExitCode() int { return ExitPreconditionError }

type CompletionBlocked struct {
	OpenChildren   []int
	UncheckedTodos [][2]string // (section, todo text)
}

func (e *CompletionBlocked) Error() string {
	return fmt.Sprintf("completion blocked: open_children=%v unchecked_todos=%v", e.OpenChildren, e.UncheckedTodos)
}
func (e *CompletionBlocked) ExitCode() int { return ExitPreconditionError }

type DuplicateTodo struct{ Section, Text string }

func (e *DuplicateTodo) Error() string {
	return fmt.Sprintf("todo %q already exists in section %q", e.Text, e.Section)
}
func (e *DuplicateTodo) ExitCode() int { return ExitUserError }

type SectionAlreadyExists struct{ Title string }

func (e *SectionAlreadyExists) Error() string {
	return fmt.Sprintf("a section titled %q already exists (case-insensitive)", e.Title)
}
func (e *SectionAlreadyExists) ExitCode() int { return ExitUserError }

type SectionNotFound struct {
	Requested string
	Available []string
}

func (e *SectionNotFound) Error() string {
	return fmt.Sprintf("section %q not found, available: %v", e.Requested, e.Available)
}
func (e *SectionNotFound) ExitCode() int { return ExitUserError }

type TodoNotFound struct {
	Section, Match string
	Available      []string
}

func (e *TodoNotFound) Error() string {
	return fmt.Sprintf("no todo in section %q matches %q, available: %v", e.Section, e.Match, e.Available)
}
func (e *TodoNotFound) ExitCode() int { return ExitUserError }

type AmbiguousMatch struct{ Candidates []string }

func (e *AmbiguousMatch) Error() string {
	return fmt.Sprintf("ambiguous match, candidates: %v", e.Candidates)
}
func (e *AmbiguousMatch) ExitCode() int { return ExitUserError }

type BodyTooLarge struct {
	Size, Limit int
}

func (e *BodyTooLarge) Error() string {
	return fmt.Sprintf("body too large: %d code units exceeds limit of %d", e.Size, e.Limit)
}
func (e *BodyTooLarge) ExitCode() int { return ExitUserError }

type RelationshipRequired struct{ Step string }

func (e *RelationshipRequired) Error() string {
	return fmt.Sprintf("required relationship step %q failed and the orphaned issue was rolled back", e.Step)
}
func (e *RelationshipRequired) ExitCode() int { return ExitRemoteError }

type ParentNotOfExpectedKind struct {
	Expected, Actual string
}

func (e *ParentNotOfExpectedKind) Error() string {
	return fmt.Sprintf("parent must be %s, got %s", e.Expected, e.Actual)
}
func (e *ParentNotOfExpectedKind) ExitCode() int { return ExitUserError }

type InternalError struct{ Err error }

func (e *InternalError) Error() string { return "internal error: " + e.Err.Error() }
func (e *InternalError) ExitCode() int { return ExitInternalError }
func (e *InternalError) Unwrap() error { return e.Err }

// ExitCode extracts the exit code for any error value, defaulting to
// ExitInternalError for anything outside the taxonomy: an assertion
// failure that slips through is never silently swallowed.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coded Coded
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return ExitInternalError
}
