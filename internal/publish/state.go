package publish

import (
	"context"
	"strings"
)

// PostStatus is the lifecycle stage of the tracked leaderboard post.
type PostStatus int

const (
	// StatusUnknown means no lookup happened yet (fresh process).
	StatusUnknown PostStatus = iota
	// StatusAbsent means the lookup found no prior post.
	StatusAbsent
	// StatusTracked means a post exists and is edited in place from now on.
	StatusTracked
)

func (s PostStatus) String() string {
	switch s {
	case StatusAbsent:
		return "absent"
	case StatusTracked:
		return "tracked"
	default:
		return "unknown"
	}
}

// PostState is the explicit state value threaded through the leaderboard
// flow. It lives only in process memory; a restart reverts to StatusUnknown
// and the history scan re-derives it, which is what prevents duplicate
// leaderboard posts across restarts.
type PostState struct {
	Status    PostStatus
	MessageID int
}

// Reconcile resolves StatusUnknown by scanning recent history of the channel
// for the most recent self-authored message containing marker. Other states
// pass through untouched. Correctness depends on the marker staying stable
// and unique among recent history.
func Reconcile(ctx context.Context, gw Gateway, channel string, state PostState, marker string, historyLimit int) (PostState, error) {
	if state.Status != StatusUnknown {
		return state, nil
	}

	msgs, err := gw.History(ctx, channel, historyLimit)
	if err != nil {
		return state, err
	}
	for _, m := range msgs {
		if m.Self && strings.Contains(m.Text, marker) {
			return PostState{Status: StatusTracked, MessageID: m.ID}, nil
		}
	}
	return PostState{Status: StatusAbsent}, nil
}

// Publish sends a new post or edits the tracked one, returning the updated
// state. On StatusAbsent (or an unresolved StatusUnknown) a successful send
// moves to StatusTracked; on StatusTracked the post is edited in place and
// the state is preserved, including across edit failures so the next pass
// retries the same message.
func Publish(ctx context.Context, gw Gateway, channel string, state PostState, image []byte, captionHTML string) (PostState, error) {
	if state.Status == StatusTracked {
		if err := gw.EditPhoto(ctx, channel, state.MessageID, image, captionHTML); err != nil {
			return state, err
		}
		return state, nil
	}

	id, err := gw.SendPhoto(ctx, channel, image, captionHTML)
	if err != nil {
		return state, err
	}
	return PostState{Status: StatusTracked, MessageID: id}, nil
}
