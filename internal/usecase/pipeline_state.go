package usecase

import (
	"fmt"
	"time"

	"hotel-curator/internal/domain"
)

var allowedTransitions = map[domain.Stage][]domain.Stage{
	domain.StageIdle:            {domain.StageSearching},
	domain.StageSearching:       {domain.StageFiltering},
	domain.StageFiltering:       {domain.StageCuratingReviews},
	domain.StageCuratingReviews: {domain.StageScoring},
	domain.StageScoring:         {domain.StageDone},
}

// PipelineState tracks the stage of one request. It is owned by a single goroutine.
type PipelineState struct {
	current      domain.Stage
	enteredAt    time.Time
	onTransition func(from domain.Stage, elapsed time.Duration)
}

func NewPipelineState() *PipelineState {
	return &PipelineState{current: domain.StageIdle, enteredAt: time.Now()}
}

// OnTransition registers a hook called with the stage being left and the time spent in it.
func (s *PipelineState) OnTransition(fn func(from domain.Stage, elapsed time.Duration)) {
	s.onTransition = fn
}

func (s *PipelineState) Current() domain.Stage {
	return s.current
}

// Transition moves to next. Failed is reachable from every non-terminal stage.
func (s *PipelineState) Transition(next domain.Stage) error {
	if s.current.IsTerminal() {
		return fmt.Errorf("%w: %s is terminal", domain.ErrInvalidTransition, s.current)
	}
	if next != domain.StageFailed && !s.allowed(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, s.current, next)
	}
	if s.onTransition != nil {
		s.onTransition(s.current, time.Since(s.enteredAt))
	}
	s.current = next
	s.enteredAt = time.Now()
	return nil
}

func (s *PipelineState) allowed(next domain.Stage) bool {
	for _, st := range allowedTransitions[s.current] {
		if st == next {
			return true
		}
	}
	return false
}
