package command

import (
	"context"

	"github.com/kjc-dev/ghhier/internal/model"
)

// Get reads the merged view of a single issue.
func Get(ctx context.Context, c *Context, repo Repo, number int) (*model.Issue, error) {
	return c.Hybrid.GetIssue(ctx, repo.Owner, repo.Repo, number)
}
