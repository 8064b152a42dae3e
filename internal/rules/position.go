// Package rules implements the chess rules engine: pseudo-legal move
// generation, attack detection, king-safety filtering, move application and
// game-termination detection over a sparse board.
//
// Everything in this package is pure. Functions never mutate the board they
// are given; move application works on a clone and returns it.
package rules

import (
	"errors"
	"fmt"
	"strings"
)

const boardSize = 8

var ErrInvalidPosition = errors.New("invalid board position")

// Position is an immutable board coordinate. File 0..7 maps to a..h and
// rank 0..7 maps to 1..8.
type Position struct {
	file int8
	rank int8
}

// NewPosition returns the coordinate and whether it lies on the board.
func NewPosition(file, rank int) (Position, bool) {
	if file < 0 || file >= boardSize || rank < 0 || rank >= boardSize {
		return Position{}, false
	}
	return Position{file: int8(file), rank: int8(rank)}, true
}

// Sq parses an algebraic square and panics on malformed input. Intended for
// literals in code and tests.
func Sq(s string) Position {
	p, err := ParsePosition(s)
	if err != nil {
		panic(err)
	}
	return p
}

func ParsePosition(s string) (Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	p, ok := NewPosition(int(s[0]-'a'), int(s[1]-'1'))
	if !ok {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	return p, nil
}

func (p Position) File() int { return int(p.file) }
func (p Position) Rank() int { return int(p.rank) }

// Index returns rank*8+file, a stable 0..63 identifier.
func (p Position) Index() int { return int(p.rank)*boardSize + int(p.file) }

// Offset moves the coordinate by (df, dr). The second result is false when
// the target falls off the board; it never wraps or clamps.
func (p Position) Offset(df, dr int) (Position, bool) {
	return NewPosition(int(p.file)+df, int(p.rank)+dr)
}

func (p Position) String() string {
	return string([]byte{byte('a' + p.file), byte('1' + p.rank)})
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(b []byte) error {
	v, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// positionAt is used by board scans that already know the index is valid.
func positionAt(index int) Position {
	return Position{file: int8(index % boardSize), rank: int8(index / boardSize)}
}
