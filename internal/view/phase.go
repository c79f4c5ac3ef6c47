// Package view holds the presentation rules shared by every page: the page
// state machine, score tiers, heatmap severity, list merges and the busy guard.
package view

import (
	"errors"

	"ifrs-console/internal/apiclient"
)

type Phase int

const (
	Loading Phase = iota
	Empty
	Error
	Loaded
	Refreshing
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Empty:
		return "empty"
	case Error:
		return "error"
	case Loaded:
		return "loaded"
	case Refreshing:
		return "refreshing"
	}
	return "unknown"
}

// Settled reports whether actions may run from this phase.
func (p Phase) Settled() bool { return p == Empty || p == Loaded || p == Error }

// MountPhase classifies the outcome of a page's initial read. A backend 404
// means nothing has been analyzed yet and is not an error.
func MountPhase(err error) Phase {
	switch {
	case err == nil:
		return Loaded
	case errors.Is(err, apiclient.ErrNotFound):
		return Empty
	default:
		return Error
	}
}

// Refresh is the phase while an action is in flight. Only a loaded page
// refreshes; other phases are kept so the page can still be drawn.
func (p Phase) Refresh() Phase {
	if p == Loaded {
		return Refreshing
	}
	return p
}

// Complete is the phase after an action. On success the page is loaded; on
// failure the prior phase is restored.
func (p Phase) Complete(err error) Phase {
	if err != nil {
		if p == Refreshing {
			return Loaded
		}
		return p
	}
	return Loaded
}
