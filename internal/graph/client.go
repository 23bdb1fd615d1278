// Package graph is the GraphQL transport: the feature-preview surface
// for sub-issue edges, issue types, and Projects v2 field updates, none
// of which the REST transport can reach. It is hand-rolled on
// net/http+encoding/json rather than a generated client, and carries
// its own rate limiting and retry policy.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjc-dev/ghhier/internal/apperrors"
)

const defaultAPIURL = "https://api.github.com/graphql"

// featurePreviewHeader enables the preview fields this project depends
// on: sub-issues and typed issues. Sent on every request.
const featurePreviewHeader = "sub_issues, issue_types"

type Client struct {
	token      string
	apiURL     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

func New(token string, log *zap.Logger) *Client {
	return &Client{
		token:      token,
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(2), 25),
		log:        log,
	}
}

// SetAPIURL overrides the endpoint, for tests and Enterprise hosts.
func (c *Client) SetAPIURL(url string) { c.apiURL = url }

// SetTimeout overrides the per-request timeout (default 30s).
func (c *Client) SetTimeout(d time.Duration) { c.httpClient.Timeout = d }

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

// query executes a single GraphQL operation, retrying up to three
// attempts on 429 with Retry-After honoured. Mutations are called
// through this same path, so a mutation rejected with 429 is retried
// like a query; no other failure is retried.
func (c *Client) query(ctx context.Context, opName, queryStr string, variables map[string]any, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &apperrors.Timeout{Operation: opName}
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := c.doOnce(ctx, opName, queryStr, variables, result)
		if err == nil {
			return nil
		}
		if rl, ok := err.(*apperrors.RateLimited); ok {
			c.log.Warn("graphql request rate limited, retrying",
				zap.String("op", opName), zap.Int("attempt", attempt), zap.String("retry_after", rl.RetryAfter))
			if secs, convErr := strconv.Atoi(rl.RetryAfter); convErr == nil && secs > 0 && attempt < 3 {
				select {
				case <-time.After(time.Duration(secs) * time.Second):
				case <-ctx.Done():
					return backoff.Permanent(&apperrors.Timeout{Operation: opName})
				}
			}
			return rl
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(policy, ctx))
}

// gatedOperationFeature maps each operation that can be disabled by a
// preview feature flag to that feature, used as a fallback when a 403
// or GraphQL error body doesn't name the feature explicitly (real
// servers are not always that specific; we already know which feature
// each of our own mutations depends on).
var gatedOperationFeature = map[string]apperrors.Feature{
	"AddSubIssue":                   apperrors.FeatureSubIssues,
	"RemoveSubIssue":                apperrors.FeatureSubIssues,
	"IssueHierarchy":                apperrors.FeatureSubIssues,
	"IssueTypes":                    apperrors.FeatureIssueTypes,
	"IssueKind":                     apperrors.FeatureIssueTypes,
	"CreateIssueType":               apperrors.FeatureIssueTypes,
	"SetIssueType":                  apperrors.FeatureIssueTypes,
	"CreateIssueWithType":           apperrors.FeatureIssueTypes,
	"ProjectV2Item":                 apperrors.FeatureProjectsV2,
	"UpdateProjectV2ItemFieldValue": apperrors.FeatureProjectsV2,
	"AddIssueToProject":             apperrors.FeatureProjectsV2,
}

func (c *Client) doOnce(ctx context.Context, opName, queryStr string, variables map[string]any, result any) error {
	body, err := json.Marshal(graphQLRequest{Query: queryStr, Variables: variables})
	if err != nil {
		return &apperrors.InternalError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return &apperrors.InternalError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("GraphQL-Features", featurePreviewHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperrors.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperrors.NetworkError{Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &apperrors.InvalidCredential{Detail: string(respBody)}
	}
	if resp.StatusCode == http.StatusForbidden {
		if feat := detectDisabledFeature(respBody); feat != "" {
			return &apperrors.FeatureUnavailable{Feature: apperrors.Feature(feat)}
		}
		if feat, ok := gatedOperationFeature[opName]; ok {
			return &apperrors.FeatureUnavailable{Feature: feat}
		}
		return &apperrors.Forbidden{Detail: string(respBody)}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return &apperrors.RateLimited{RetryAfter: resp.Header.Get("Retry-After")}
	}
	if resp.StatusCode >= 500 {
		return &apperrors.NetworkError{Err: fmt.Errorf("graphql transport status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return &apperrors.InternalError{Err: fmt.Errorf("unexpected graphql status %d: %s", resp.StatusCode, respBody)}
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return &apperrors.InternalError{Err: err}
	}
	if len(gqlResp.Errors) > 0 {
		first := gqlResp.Errors[0]
		if feat := featureFromErrorMessage(first.Message); feat != "" {
			return &apperrors.FeatureUnavailable{Feature: apperrors.Feature(feat)}
		}
		if strings.Contains(strings.ToUpper(first.Message), "RATE LIMIT") {
			return &apperrors.RateLimited{}
		}
		if strings.EqualFold(first.Type, "FORBIDDEN") {
			if feat, ok := gatedOperationFeature[opName]; ok {
				return &apperrors.FeatureUnavailable{Feature: feat}
			}
		}
		return &apperrors.InternalError{Err: fmt.Errorf("graphql error: %s", first.Message)}
	}
	if result != nil {
		if err := json.Unmarshal(gqlResp.Data, result); err != nil {
			return &apperrors.InternalError{Err: err}
		}
	}
	return nil
}

// detectDisabledFeature inspects a 403 body for the feature-flag names
// this client cares about.
func detectDisabledFeature(body []byte) string {
	s := strings.ToLower(string(body))
	switch {
	case strings.Contains(s, "sub_issues") || strings.Contains(s, "sub-issues") || strings.Contains(s, "addsubissue"):
		return string(apperrors.FeatureSubIssues)
	case strings.Contains(s, "issue_types") || strings.Contains(s, "issuetype"):
		return string(apperrors.FeatureIssueTypes)
	case strings.Contains(s, "projectv2") || strings.Contains(s, "projects_v2"):
		return string(apperrors.FeatureProjectsV2)
	}
	return ""
}

func featureFromErrorMessage(msg string) string {
	return detectDisabledFeature([]byte(msg))
}
