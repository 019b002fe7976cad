package notification

import (
	"context"
	"testing"
)

func TestAfterCommitUnarmed(t *testing.T) {
	ran := false
	AfterCommit(context.Background(), func() { ran = true })
	if !ran {
		t.Error("callback should run immediately without an armed scope")
	}
}

func TestAfterCommitArmed(t *testing.T) {
	ctx := WithAfterCommit(context.Background())

	var order []int
	AfterCommit(ctx, func() { order = append(order, 1) })
	AfterCommit(ctx, func() { order = append(order, 2) })
	if len(order) != 0 {
		t.Fatal("callbacks must not run before RunAfterCommit")
	}

	RunAfterCommit(ctx)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}

	RunAfterCommit(ctx)
	if len(order) != 2 {
		t.Error("callbacks must not run twice")
	}
}
