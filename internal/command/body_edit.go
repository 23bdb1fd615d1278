package command

import (
	"context"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/body"
	"github.com/kjc-dev/ghhier/internal/model"
)

// SetBody replaces an issue's entire body.
func SetBody(ctx context.Context, c *Context, repo Repo, number int, newBody string) (*model.Issue, error) {
	issue, err := c.Hybrid.GetIssue(ctx, repo.Owner, repo.Repo, number)
	if err != nil {
		return nil, err
	}
	doc := body.Parse([]byte(newBody))
	rendered, err := doc.Render()
	if err != nil {
		return nil, err
	}
	if err := c.Hybrid.UpdateBody(ctx, repo.Owner, repo.Repo, number, string(rendered)); err != nil {
		return nil, err
	}
	issue.Body = string(rendered)
	return issue, nil
}

// CreateTodo adds a new unchecked todo to a section, optionally
// creating the section first if createSection is set.
func CreateTodo(ctx context.Context, c *Context, repo Repo, number int, section, text string, createSection bool) (*model.Issue, error) {
	issue, err := c.Hybrid.GetIssue(ctx, repo.Owner, repo.Repo, number)
	if err != nil {
		return nil, err
	}
	doc := body.Parse([]byte(issue.Body))

	sec, ok := doc.FindSection(section)
	if !ok {
		if !createSection {
			return nil, sectionNotFoundError(doc, section)
		}
		sec, err = doc.AddSection(section)
		if err != nil {
			return nil, err
		}
	}
	if _, err := sec.AddTodo(text); err != nil {
		return nil, err
	}
	return persistBody(ctx, c, repo, number, issue, doc)
}

// CheckTodo toggles the unique todo in a section whose text contains
// match (case-insensitive substring), per S5.
func CheckTodo(ctx context.Context, c *Context, repo Repo, number int, section, match string) (*model.Issue, error) {
	issue, err := c.Hybrid.GetIssue(ctx, repo.Owner, repo.Repo, number)
	if err != nil {
		return nil, err
	}
	doc := body.Parse([]byte(issue.Body))
	sec, ok := doc.FindSection(section)
	if !ok {
		return nil, sectionNotFoundError(doc, section)
	}
	if _, err := sec.ToggleByMatch(match); err != nil {
		return nil, err
	}
	return persistBody(ctx, c, repo, number, issue, doc)
}

func persistBody(ctx context.Context, c *Context, repo Repo, number int, issue *model.Issue, doc *body.Document) (*model.Issue, error) {
	rendered, err := doc.Render()
	if err != nil {
		return nil, err
	}
	if err := c.Hybrid.UpdateBody(ctx, repo.Owner, repo.Repo, number, string(rendered)); err != nil {
		return nil, err
	}
	issue.Body = string(rendered)
	return issue, nil
}

func sectionNotFoundError(doc *body.Document, requested string) error {
	return &apperrors.SectionNotFound{Requested: requested, Available: doc.SectionTitles()}
}
