// Package recovery provides a pluggable strategy for the recoverable
// (Warning-class) problems called out in the error handling design: clamped
// lump offsets/lengths, skipped brush sides, skipped brushes, and similar.
// The lump and game-lump stages default to NewLenientStrategy. Only
// brush.Reconstructor.WriteBrushes acts on the returned Action: ActionFail
// for a malformed brush stops the write. The lump, game-lump, and
// brush-side call sites report their problems but ignore the Action, so a
// strict strategy does not abort a load.
package recovery

import "context"

type Strategy interface {
	OnError(ctx context.Context, err error, location Location) Action
}

// Location pinpoints where a recoverable problem occurred: in the lump
// directory, the game-lump directory, or the brush reconstructor.
type Location struct {
	ByteOffset    int64
	LumpIndex     int
	BrushIndex    int
	BrushSideIndex int
	Component     string
}

type Action int

const (
	ActionFail Action = iota
	ActionSkip
	ActionFix
	ActionWarn
)

func (a Action) String() string {
	switch a {
	case ActionFail:
		return "fail"
	case ActionSkip:
		return "skip"
	case ActionFix:
		return "fix"
	case ActionWarn:
		return "warn"
	default:
		return "unknown"
	}
}
