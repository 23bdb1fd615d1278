// Package rest wraps the go-github REST client with an error
// classification and retry policy: GET-shaped reads retry on transient
// failure, mutations never do.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/model"
)

// Client is the REST transport: CRUD on issues, labels, milestones,
// comments, and assignees, backed by go-github.
type Client struct {
	gh  *github.Client
	hc  *http.Client
	log *zap.Logger

	// login caches the authenticated principal's username for the
	// lifetime of this client (one command invocation); resolved once,
	// on first call to AuthenticatedUser.
	login string
}

// New builds a REST client authenticated with token. baseURL is empty
// for github.com, or a GitHub Enterprise API root otherwise.
func New(token, baseURL string, log *zap.Logger) (*Client, error) {
	hc := &http.Client{Timeout: 30 * time.Second}
	gh := github.NewClient(hc).WithAuthToken(token)
	if baseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, &apperrors.InternalError{Err: err}
		}
	}
	return &Client{gh: gh, hc: hc, log: log}, nil
}

// SetTimeout overrides the per-request timeout (default 30s).
func (c *Client) SetTimeout(d time.Duration) { c.hc.Timeout = d }

// AuthenticatedUser resolves the login of whoever the bearer credential
// belongs to, caching the result for the lifetime of the client: the
// audit log's actor field must name the authenticated principal, not
// the local OS account running the process.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	if c.login != "" {
		return c.login, nil
	}
	u, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", classify(err, "", "", 0)
	}
	c.login = u.GetLogin()
	return c.login, nil
}

// withRetry runs a read operation up to three attempts with exponential
// backoff. Mutations must not be passed through this; call op directly
// instead.
func (c *Client) withRetry(ctx context.Context, name, owner, repo string, number int, op func() (*github.Response, error)) error {
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		_, err := op()
		if err == nil {
			return nil
		}
		classified := classify(err, owner, repo, number)
		if !retryable(classified) {
			return backoff.Permanent(classified)
		}
		c.log.Warn("rest request retrying", zap.String("op", name), zap.Int("attempt", attempt), zap.Error(classified))
		return classified
	}, backoff.WithContext(policy, ctx))
}

func retryable(err error) bool {
	switch err.(type) {
	case *apperrors.RateLimited, *apperrors.NetworkError, *apperrors.Timeout:
		return true
	default:
		return false
	}
}

// classify maps a go-github error to the apperrors taxonomy.
// owner/repo/number are only used to fill IssueNotFound's fields and
// may be zero-valued for operations with no single issue.
func classify(err error, owner, repo string, number int) error {
	if err == nil {
		return nil
	}
	if rl, ok := err.(*github.RateLimitError); ok {
		return &apperrors.RateLimited{RetryAfter: rl.Rate.Reset.String()}
	}
	if ar, ok := err.(*github.AbuseRateLimitError); ok {
		retry := ""
		if ar.RetryAfter != nil {
			retry = ar.RetryAfter.String()
		}
		return &apperrors.RateLimited{RetryAfter: retry}
	}
	if er, ok := err.(*github.ErrorResponse); ok {
		switch er.Response.StatusCode {
		case http.StatusUnauthorized:
			return &apperrors.InvalidCredential{Detail: er.Message}
		case http.StatusForbidden:
			return &apperrors.Forbidden{Detail: er.Message}
		case http.StatusNotFound:
			return &apperrors.IssueNotFound{Owner: owner, Repo: repo, Number: number}
		case http.StatusTooManyRequests:
			return &apperrors.RateLimited{}
		}
		if er.Response.StatusCode >= 500 {
			return &apperrors.NetworkError{Err: err}
		}
		return err
	}
	if ctxErr, ok := err.(interface{ Timeout() bool }); ok && ctxErr.Timeout() {
		return &apperrors.Timeout{}
	}
	return &apperrors.NetworkError{Err: err}
}

func toModelIssue(gi *github.Issue) *model.Issue {
	issue := &model.Issue{
		Number: gi.GetNumber(),
		Title:  gi.GetTitle(),
		Body:   gi.GetBody(),
		Closed: gi.GetState() == "closed",
		URL:    gi.GetHTMLURL(),
	}
	if gi.CreatedAt != nil {
		issue.CreatedAt = gi.GetCreatedAt().Time
	}
	if gi.UpdatedAt != nil {
		issue.UpdatedAt = gi.GetUpdatedAt().Time
	}
	for _, l := range gi.Labels {
		issue.Labels = append(issue.Labels, l.GetName())
		if kind, ok := model.ParseIssueKind(stripTypePrefix(l.GetName())); ok && kind != model.KindIssue {
			issue.Kind = kind
		}
	}
	for _, a := range gi.Assignees {
		issue.Assignees = append(issue.Assignees, a.GetLogin())
	}
	if gi.Milestone != nil {
		issue.Milestone = gi.Milestone.GetTitle()
	}
	return issue
}

func stripTypePrefix(label string) string {
	const prefix = "type:"
	if len(label) > len(prefix) && label[:len(prefix)] == prefix {
		return label[len(prefix):]
	}
	return ""
}
