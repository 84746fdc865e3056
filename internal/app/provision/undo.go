package provision

import "slices"

// UndoRedoStack keeps full snapshots of a slice-valued state. Snapshots are
// copied on the way in and on the way out, so callers may mutate freely.
type UndoRedoStack[T any] struct {
	undo [][]T
	redo [][]T
}

func NewUndoRedoStack[T any]() *UndoRedoStack[T] {
	return &UndoRedoStack[T]{}
}

// Push records current as the state to return to and discards the redo branch.
func (s *UndoRedoStack[T]) Push(current []T) {
	s.undo = append(s.undo, slices.Clone(current))
	s.redo = nil
}

// Undo returns the previous state, saving current for Redo. ok is false when
// there is nothing to undo.
func (s *UndoRedoStack[T]) Undo(current []T) ([]T, bool) {
	if len(s.undo) == 0 {
		return nil, false
	}
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, slices.Clone(current))
	return slices.Clone(prev), true
}

// Redo is the inverse of Undo.
func (s *UndoRedoStack[T]) Redo(current []T) ([]T, bool) {
	if len(s.redo) == 0 {
		return nil, false
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, slices.Clone(current))
	return slices.Clone(next), true
}

func (s *UndoRedoStack[T]) Reset() {
	s.undo = nil
	s.redo = nil
}

func (s *UndoRedoStack[T]) CanUndo() bool { return len(s.undo) > 0 }
func (s *UndoRedoStack[T]) CanRedo() bool { return len(s.redo) > 0 }
