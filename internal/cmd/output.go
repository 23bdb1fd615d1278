package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/command"
	"github.com/kjc-dev/ghhier/internal/model"
)

// envelope is the --json response shape: either a result or an error,
// never both.
type envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func emit(data any, err error) error {
	if flagJSON {
		return emitJSON(data, err)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	printPlain(data)
	return nil
}

func emitJSON(data any, err error) error {
	env := envelope{OK: err == nil, Data: data}
	if err != nil {
		env.Error = err.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(env); encErr != nil {
		return &apperrors.InternalError{Err: encErr}
	}
	return err
}

func printPlain(data any) {
	switch v := data.(type) {
	case nil:
		return
	case *model.Issue:
		printIssue(v)
	case issueReport:
		printIssue(v.Issue)
		if v.Fallback != "" {
			fmt.Printf("note: %s\n", v.Fallback)
		}
	case transitionReport:
		fmt.Printf("#%d: %s -> %s\n", v.Number, v.From, v.To)
	case initReport:
		for _, item := range v.Items {
			fmt.Printf("%s: %s\n", item.Name, item.Outcome)
		}
		for name, err := range v.Failed {
			fmt.Printf("failed %s: %v\n", name, err)
		}
	default:
		fmt.Println(data)
	}
}

func printIssue(i *model.Issue) {
	state, _ := i.State()
	fmt.Printf("#%d %s [%s] (%s)\n", i.Number, i.Title, i.Kind, state)
	if i.ParentNumber != nil {
		fmt.Printf("parent: #%d\n", *i.ParentNumber)
	}
	if len(i.ChildNumbers) > 0 {
		fmt.Printf("children: %v\n", i.ChildNumbers)
	}
	fmt.Println()
	fmt.Println(i.Body)
}

type issueReport struct {
	Issue    *model.Issue
	Fallback string
}

type transitionReport struct {
	Number int
	From   model.WorkflowState
	To     model.WorkflowState
}

type initReport struct {
	Items  []command.ItemOutcome
	Failed map[string]error
}
