package workflow

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/pkg/metrics"
)

const streamBuffer = 16

type NodeFunc func(ctx context.Context, q QueryContext) Patch

type Orchestrator struct {
	nodes  *Nodes
	logger logger.ILogger
}

func NewOrchestrator(nodes *Nodes, log logger.ILogger) *Orchestrator {
	return &Orchestrator{nodes: nodes, logger: log}
}

// Run executes the whole workflow and returns the finished context.
func (o *Orchestrator) Run(ctx context.Context, in Input) *QueryContext {
	return o.execute(ctx, in, func(Event) bool { return true })
}

// Stream executes the workflow in the background and delivers events as
// nodes finish. The channel is closed after the done event, or early when ctx
// is cancelled.
func (o *Orchestrator) Stream(ctx context.Context, in Input) <-chan Event {
	events := make(chan Event, streamBuffer)
	go func() {
		defer close(events)
		var seq uint64
		o.execute(ctx, in, func(e Event) bool {
			e.Seq = seq
			e.Timestamp = time.Now()
			seq++
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()
	return events
}

type emitFunc func(Event) bool

func (o *Orchestrator) execute(ctx context.Context, in Input, emit emitFunc) (q *QueryContext) {
	q = newQueryContext(in)
	start := time.Now()
	status := "ok"

	defer func() {
		if r := recover(); r != nil {
			status = "panic"
			o.logger.Error("WORKFLOW", "Recovered from panic", map[string]interface{}{
				"request_id": q.RequestID,
				"panic":      fmt.Sprint(r),
				"stack":      string(debug.Stack()),
			})
			q.Error = errorInfo(apperror.Internal(fmt.Errorf("panic: %v", r)))
			q.FinalAnswer = apologyText
			if emit(Event{Type: EventError, Payload: q.Error}) && emit(Event{Type: EventAnswer, Payload: q.Result()}) {
				emit(Event{Type: EventDone})
			}
		}
		if status == "ok" && q.Error != nil {
			status = "error"
		}
		metrics.WorkflowRuns.WithLabelValues(string(q.Intent), status).Inc()
		o.logger.Info("WORKFLOW", "Query processed", map[string]interface{}{
			"request_id":  q.RequestID,
			"intent":      string(q.Intent),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}()

	if !o.runNodes(ctx, q, emit) {
		status = "cancelled"
		if q.Error == nil {
			q.Error = &ErrorInfo{Code: apperror.CodeInternal, Message: "Request cancelled"}
		}
		return q
	}

	if emit(Event{Type: EventAnswer, Node: NodeResponseCompose, Payload: q.Result()}) {
		emit(Event{Type: EventDone})
	}
	return q
}

// runNodes walks the graph. It returns false when the context was cancelled
// or the consumer stopped listening.
func (o *Orchestrator) runNodes(ctx context.Context, q *QueryContext, emit emitFunc) bool {
	if !o.step(ctx, q, NodeUserInput, o.nodes.UserInput, emit) ||
		!o.step(ctx, q, NodeIntentClassify, o.nodes.IntentClassify, emit) {
		return false
	}

	switch DecideAfterIntent(q.Intent) {
	case BranchGeo:
		if !o.step(ctx, q, NodeGeoReason, o.nodes.GeoReason, emit) {
			return false
		}
	case BranchKnowledge:
		if !o.step(ctx, q, NodeRAGRetrieve, o.nodes.RAGRetrieve, emit) ||
			!o.step(ctx, q, NodeRAGGenerate, o.nodes.RAGGenerate, emit) {
			return false
		}
		if DecideAfterGeneration(q.Intent) == BranchGeo &&
			!o.step(ctx, q, NodeGeoReason, o.nodes.GeoReason, emit) {
			return false
		}
	}

	return o.step(ctx, q, NodeResponseCompose, o.nodes.ResponseCompose, emit)
}

// step runs one node against a copy of q and merges the result.
func (o *Orchestrator) step(ctx context.Context, q *QueryContext, name string, node NodeFunc, emit emitFunc) bool {
	if ctx.Err() != nil {
		return false
	}

	started := time.Now()
	patch := node(ctx, *q)
	metrics.NodeDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())

	before := len(q.Reasoning)
	q.Apply(patch)

	for _, line := range q.Reasoning[before:] {
		if !emit(Event{Type: EventReasoning, Node: name, Payload: line}) {
			return false
		}
	}
	if patch.Error != nil {
		o.logger.Warn("WORKFLOW", "Node reported an error", map[string]interface{}{
			"node":    name,
			"code":    string(patch.Error.Code),
			"message": patch.Error.Message,
		})
		if !emit(Event{Type: EventError, Node: name, Payload: patch.Error}) {
			return false
		}
	}
	return true
}
