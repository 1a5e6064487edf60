package recovery

import (
	"context"
	"fmt"
)

// StrictStrategy answers ActionFail to every problem it is told about.
// brush.Reconstructor.WriteBrushes stops at the first malformed brush when
// it gets that answer; the lump and game-lump stages, and the brush-side
// rejections, ignore it and still clamp or skip.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

func (s *StrictStrategy) OnError(ctx context.Context, err error, location Location) Action {
	return ActionFail
}

// LenientStrategy accumulates every recoverable problem and tells the
// caller to continue (clamp / skip / warn). This is the default strategy
// used by lump and gamelump; brush.Reconstructor has no default and calls
// no strategy when its Strategy is nil.
type LenientStrategy struct {
	Errors []error
}

func NewLenientStrategy() *LenientStrategy {
	return &LenientStrategy{}
}

func (s *LenientStrategy) OnError(ctx context.Context, err error, location Location) Action {
	s.Errors = append(s.Errors, fmt.Errorf("[%s] offset %d: %w", location.Component, location.ByteOffset, err))
	return ActionWarn
}
