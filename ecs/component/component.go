package component

import (
	"errors"
	"sync/atomic"
)

var ErrInvalidKind = errors.New("ecs: invalid component kind")

// ID keys a component store. Zero is never minted.
type ID uint32

var nextID atomic.Uint32

// Kind is the typed key for one component type.
type Kind[T any] struct {
	id ID
}

func NewKind[T any]() Kind[T] {
	return Kind[T]{id: ID(nextID.Add(1))}
}

func (k Kind[T]) ID() ID { return k.id }

func (k Kind[T]) Valid() bool { return k.id != 0 }
