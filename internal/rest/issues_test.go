package rest

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kjc-dev/ghhier/internal/testutil"
)

func newTestClient(t *testing.T, srv *testutil.MockRESTServer) *Client {
	t.Helper()
	c, err := New("test-token", srv.URL(), zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestAddLabelsAndRemoveLabels(t *testing.T) {
	srv := testutil.NewMockRESTServer()
	defer srv.Close()
	c := newTestClient(t, srv)
	ctx := context.Background()

	issue, err := c.CreateIssue(ctx, "acme", "svc", "Endpoint", "body", []string{"status:backlog"}, nil, nil)
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	if err := c.AddLabels(ctx, "acme", "svc", issue.Number, []string{"type:task"}); err != nil {
		t.Fatalf("AddLabels: %v", err)
	}

	// Removing a label that was never present must not error: the
	// transport treats an absent label as already-removed.
	if err := c.RemoveLabels(ctx, "acme", "svc", issue.Number, []string{"status:backlog", "no-such-label"}); err != nil {
		t.Fatalf("RemoveLabels: %v", err)
	}
}

func TestAddAssigneesAndSetMilestone(t *testing.T) {
	srv := testutil.NewMockRESTServer()
	defer srv.Close()
	c := newTestClient(t, srv)
	ctx := context.Background()

	issue, err := c.CreateIssue(ctx, "acme", "svc", "Endpoint", "body", nil, nil, nil)
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	if err := c.AddAssignees(ctx, "acme", "svc", issue.Number, []string{"octocat"}); err != nil {
		t.Fatalf("AddAssignees: %v", err)
	}
	if err := c.SetMilestone(ctx, "acme", "svc", issue.Number, 3); err != nil {
		t.Fatalf("SetMilestone: %v", err)
	}
}

func TestAuthenticatedUserCachesLogin(t *testing.T) {
	srv := testutil.NewMockRESTServer()
	defer srv.Close()
	srv.SetAuthenticatedUser("octocat")
	c := newTestClient(t, srv)

	login, err := c.AuthenticatedUser(context.Background())
	if err != nil {
		t.Fatalf("AuthenticatedUser: %v", err)
	}
	if login != "octocat" {
		t.Fatalf("expected octocat, got %q", login)
	}

	srv.SetAuthenticatedUser("someone-else")
	login, err = c.AuthenticatedUser(context.Background())
	if err != nil {
		t.Fatalf("AuthenticatedUser (cached): %v", err)
	}
	if login != "octocat" {
		t.Fatalf("expected the cached login octocat to survive a changed server response, got %q", login)
	}
}
