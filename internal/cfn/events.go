// events.go tracks the per-stack event horizon and drains unseen events.
package cfn

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// Horizon marks the newest stack event already relayed to a caller. The zero
// value means no event has been seen and the whole log is new.
type Horizon struct {
	At      time.Time
	EventID string
}

// IsZero reports whether the horizon has never been advanced.
func (h Horizon) IsZero() bool {
	return h.At.IsZero() && h.EventID == ""
}

// reached reports whether ev is at or behind the horizon, i.e. already
// relayed. Events share timestamps, so the event id breaks ties; anything
// strictly older than the horizon timestamp is behind it regardless of id.
func (h Horizon) reached(ev types.StackEvent) bool {
	if h.IsZero() {
		return false
	}
	ts := aws.ToTime(ev.Timestamp)
	if ts.Before(h.At) {
		return true
	}
	return aws.ToString(ev.EventId) == h.EventID
}

// advance returns the horizon moved to the newest of the given events.
// The horizon never moves backward.
func (h Horizon) advance(newestFirst []types.StackEvent) Horizon {
	if len(newestFirst) == 0 {
		return h
	}
	head := newestFirst[0]
	ts := aws.ToTime(head.Timestamp)
	if !h.IsZero() && ts.Before(h.At) {
		return h
	}
	return Horizon{At: ts, EventID: aws.ToString(head.EventId)}
}

// Watcher drains a stack's event log exactly once per event, oldest-first.
// Each mutating operation opens a fresh watcher and zeroes it so history
// preceding the operation is never re-reported.
type Watcher struct {
	api     API
	target  func() string
	horizon Horizon
}

// NewWatcher builds a watcher over the stack identified by target. The target
// is resolved per call so the watcher keeps working after a stack name stops
// resolving (polling a deleted stack by its id).
func NewWatcher(api API, target func() string) *Watcher {
	return &Watcher{api: api, target: target}
}

// Zero sets the horizon to the most recent existing event so subsequent
// drains report only events appended after this call. A stack with no events,
// or no stack at all, leaves the horizon at zero.
func (w *Watcher) Zero(ctx context.Context) error {
	out, err := w.api.DescribeStackEvents(ctx, &cloudformation.DescribeStackEventsInput{
		StackName: aws.String(w.target()),
	})
	if err != nil {
		err = translate(w.target(), err)
		var missing *NoSuchStackError
		if errors.As(err, &missing) {
			w.horizon = Horizon{}
			return nil
		}
		return err
	}
	w.horizon = w.horizon.advance(out.StackEvents)
	return nil
}

// EachNewEvent fetches events newer than the horizon and invokes fn once per
// event, oldest-first, then advances the horizon past them. The provider
// delivers events newest-first and paginated; fetching stops at the first
// page boundary that crosses the horizon, so steady-state polls read a single
// short page rather than the full history.
func (w *Watcher) EachNewEvent(ctx context.Context, fn func(types.StackEvent)) error {
	var unseen []types.StackEvent
	var token *string
	for {
		out, err := w.api.DescribeStackEvents(ctx, &cloudformation.DescribeStackEventsInput{
			StackName: aws.String(w.target()),
			NextToken: token,
		})
		if err != nil {
			err = translate(w.target(), err)
			var missing *NoSuchStackError
			if errors.As(err, &missing) {
				return nil
			}
			return err
		}
		page, crossed := w.splitAtHorizon(out.StackEvents)
		unseen = append(unseen, page...)
		if crossed || out.NextToken == nil {
			break
		}
		token = out.NextToken
	}
	for i := len(unseen) - 1; i >= 0; i-- {
		fn(unseen[i])
	}
	w.horizon = w.horizon.advance(unseen)
	return nil
}

// splitAtHorizon takes the prefix of a newest-first page strictly ahead of
// the horizon and reports whether the horizon was reached within the page.
func (w *Watcher) splitAtHorizon(page []types.StackEvent) ([]types.StackEvent, bool) {
	for i, ev := range page {
		if w.horizon.reached(ev) {
			return page[:i], true
		}
	}
	return page, false
}
