package notification

import "context"

type afterCommitKey struct{}

type afterCommitList struct {
	fns []func()
}

// WithAfterCommit arms a context for deferred side effects. Callbacks queued
// via AfterCommit run only when RunAfterCommit fires, which callers do after
// their transaction commits. Without an armed context AfterCommit runs the
// callback immediately.
func WithAfterCommit(ctx context.Context) context.Context {
	return context.WithValue(ctx, afterCommitKey{}, &afterCommitList{})
}

// AfterCommit queues fn to run after the surrounding transaction commits,
// or runs it immediately when no transaction scope is armed.
func AfterCommit(ctx context.Context, fn func()) {
	if l, ok := ctx.Value(afterCommitKey{}).(*afterCommitList); ok {
		l.fns = append(l.fns, fn)
		return
	}
	fn()
}

// RunAfterCommit fires all queued callbacks in order.
func RunAfterCommit(ctx context.Context) {
	l, ok := ctx.Value(afterCommitKey{}).(*afterCommitList)
	if !ok {
		return
	}
	fns := l.fns
	l.fns = nil
	for _, fn := range fns {
		fn()
	}
}
