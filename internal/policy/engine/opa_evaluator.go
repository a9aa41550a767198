package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	taskdomain "task-manager/backend/internal/task/domain"
)

const allowQuery = "data.taskmanager.ownership.allow"

// DefaultPolicy grants every action on a task to its owner and nothing to anyone else.
const DefaultPolicy = `package taskmanager.ownership

default allow := false

allow if {
	input.subject != ""
	input.task.owner == input.subject
}
`

// OPAEvaluator evaluates task ownership with an in-process OPA Rego policy.
// The query is compiled once and reused for every evaluation.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles policy (DefaultPolicy when empty) and prepares the allow query.
// The policy must define data.taskmanager.ownership.allow.
func NewOPAEvaluator(ctx context.Context, policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = DefaultPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"ownership.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile policy: %w", err)
	}
	pq, err := rego.New(
		rego.Query(allowQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare policy: %w", err)
	}
	return &OPAEvaluator{query: pq}, nil
}

// Allowed evaluates the policy for subject, action and task. A missing task is never allowed.
func (e *OPAEvaluator) Allowed(ctx context.Context, subject string, action Action, task *taskdomain.Task) (bool, error) {
	if task == nil {
		return false, nil
	}
	input := map[string]interface{}{
		"subject": subject,
		"action":  string(action),
		"task": map[string]interface{}{
			"id":    task.ID,
			"owner": task.Owner,
		},
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, errors.New("policy query returned no result")
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy allow is %T, want bool", rs[0].Expressions[0].Value)
	}
	return allowed, nil
}

// HealthCheck evaluates the prepared query against a synthetic owner/task pair and expects it to allow.
// Does not touch any store. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	probe := &taskdomain.Task{ID: "healthcheck", Owner: "healthcheck"}
	ok, err := e.Allowed(ctx, probe.Owner, ActionRead, probe)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("policy denied its owner")
	}
	return nil
}
