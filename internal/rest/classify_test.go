package rest

import (
	"net/http"
	"testing"

	"github.com/google/go-github/v57/github"

	"github.com/kjc-dev/ghhier/internal/apperrors"
)

func TestClassifyMapsStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   interface{}
	}{
		{http.StatusUnauthorized, &apperrors.InvalidCredential{}},
		{http.StatusForbidden, &apperrors.Forbidden{}},
		{http.StatusNotFound, &apperrors.IssueNotFound{}},
		{http.StatusTooManyRequests, &apperrors.RateLimited{}},
		{http.StatusInternalServerError, &apperrors.NetworkError{}},
	}
	for _, tc := range cases {
		err := &github.ErrorResponse{Response: &http.Response{StatusCode: tc.status}}
		got := classify(err, "acme", "svc", 7)
		switch tc.want.(type) {
		case *apperrors.InvalidCredential:
			if _, ok := got.(*apperrors.InvalidCredential); !ok {
				t.Errorf("status %d: got %T, want InvalidCredential", tc.status, got)
			}
		case *apperrors.Forbidden:
			if _, ok := got.(*apperrors.Forbidden); !ok {
				t.Errorf("status %d: got %T, want Forbidden", tc.status, got)
			}
		case *apperrors.IssueNotFound:
			nf, ok := got.(*apperrors.IssueNotFound)
			if !ok {
				t.Errorf("status %d: got %T, want IssueNotFound", tc.status, got)
				continue
			}
			if nf.Owner != "acme" || nf.Repo != "svc" || nf.Number != 7 {
				t.Errorf("IssueNotFound fields not populated: %+v", nf)
			}
		case *apperrors.RateLimited:
			if _, ok := got.(*apperrors.RateLimited); !ok {
				t.Errorf("status %d: got %T, want RateLimited", tc.status, got)
			}
		case *apperrors.NetworkError:
			if _, ok := got.(*apperrors.NetworkError); !ok {
				t.Errorf("status %d: got %T, want NetworkError", tc.status, got)
			}
		}
	}
}

func TestRetryableClassification(t *testing.T) {
	if !retryable(&apperrors.RateLimited{}) {
		t.Error("RateLimited should be retryable")
	}
	if !retryable(&apperrors.NetworkError{Err: errString("boom")}) {
		t.Error("NetworkError should be retryable")
	}
	if retryable(&apperrors.Forbidden{}) {
		t.Error("Forbidden should not be retryable")
	}
	if retryable(&apperrors.IssueNotFound{}) {
		t.Error("IssueNotFound should not be retryable")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
