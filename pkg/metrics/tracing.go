package metrics

import (
	"context"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// StartTransaction starts a New Relic transaction for a unit of work that has
// no inbound request, such as a CLI command. The returned end function must be
// called once the work completes. Without an application on ctx, ctx is
// returned as is and end is a no-op.
func StartTransaction(ctx context.Context, name string) (context.Context, func()) {
	nr, ok := applicationFromContext(ctx)
	if !ok {
		return ctx, func() {}
	}

	txn := nr.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn.End
}

// TraceMethodCall starts a "<owner> <method>" segment on the transaction in
// ctx. It returns nil when ctx carries no transaction.
func TraceMethodCall(ctx context.Context, owner, method string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	return &MethodTracer{
		txn: txn,
		seg: txn.StartSegment(fmt.Sprintf("%s %s", owner, method)),
	}
}

// MethodTracer collects analytics for a given method call within an existing
// trace. A nil tracer is valid and records nothing.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// AddAttribute annotates the segment.
func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}
	t.seg.AddAttribute(key, value)
}

// OnError notices err on the enclosing transaction.
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}
	t.txn.NoticeError(err)
}

func (t *MethodTracer) End() {
	if t == nil {
		return
	}
	t.seg.End()
}
