// Package model defines what the scene needs from a character engine and
// ships a small OpenGL binding that satisfies it.
package model

import (
	"errors"
	"time"
)

// Motion priorities, lowest to highest
const (
	PriorityNone = iota
	PriorityIdle
	PriorityNormal
	PriorityForce
)

// IdleGroup is the motion group played while nothing else runs
const IdleGroup = "Idle"

var (
	ErrNotLoaded         = errors.New("model not loaded")
	ErrNotFound          = errors.New("descriptor not found")
	ErrInvalidDescriptor = errors.New("invalid descriptor")
	ErrUnknownMotion     = errors.New("unknown motion")
	ErrInvalidSize       = errors.New("invalid viewport size")
)

// Model is a loaded, animated character. Every call reports failure
// explicitly instead of acting on a half-initialised model.
type Model interface {
	Load(path string) error
	Update(dt time.Duration) error
	Draw() error
	Resize(width, height int) error
	SetAutoBreath(enabled bool)
	StartMotion(group string, index, priority int) error
}
