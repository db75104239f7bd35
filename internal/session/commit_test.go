package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommittersRunsAllAndJoinsErrors(t *testing.T) {
	var calls []string
	first := CommitFunc(func(context.Context, Outcome) error {
		calls = append(calls, "first")
		return errors.New("disk full")
	})
	second := CommitFunc(func(context.Context, Outcome) error {
		calls = append(calls, "second")
		return nil
	})

	err := Committers(first, nil, second).Commit(context.Background(), Outcome{SessionID: "s-1"})
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, []string{"first", "second"}, calls)
}
