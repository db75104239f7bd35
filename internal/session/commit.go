package session

import (
	"context"
	"errors"
	"time"

	"github.com/anshc022/vocahire/internal/fsm"
	"github.com/anshc022/vocahire/internal/summary"
	"github.com/anshc022/vocahire/internal/transcript"
)

// EndReason records who ended an interview.
type EndReason string

const (
	EndedByUser EndReason = "user"
	EndedByAI   EndReason = "ai"
)

// Outcome is the record handed to a Committer once summary retrieval has
// settled, successfully or not.
type Outcome struct {
	SessionID  string
	StartedAt  time.Time
	EndedAt    time.Time
	EndReason  EndReason
	FinalState fsm.State
	Transcript []transcript.Message
	Summary    *summary.Summary
	Err        error
}

// Committer persists/dispatches a finished interview.
type Committer interface {
	Commit(context.Context, Outcome) error
}

// CommitFunc adapts a function to the Committer interface.
type CommitFunc func(context.Context, Outcome) error

func (f CommitFunc) Commit(ctx context.Context, outcome Outcome) error {
	return f(ctx, outcome)
}

// Committers runs every committer in order and joins their errors. Nil
// entries are skipped.
func Committers(committers ...Committer) Committer {
	return CommitFunc(func(ctx context.Context, outcome Outcome) error {
		var errs []error
		for _, c := range committers {
			if c == nil {
				continue
			}
			if err := c.Commit(ctx, outcome); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
