package rules

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("unknown color %q", s)
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// forward is the rank direction pawns of this color advance in.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

func (c Color) backRank() int {
	if c == White {
		return 0
	}
	return boardSize - 1
}

func (c Color) pawnStartRank() int {
	if c == White {
		return 1
	}
	return boardSize - 2
}

// promotionRank is the farthest rank for this color's pawns.
func (c Color) promotionRank() int { return c.Opponent().backRank() }

// PieceKind is the piece type. NoKind is the zero value and stands for "none",
// e.g. a move without a promotion choice.
type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (k PieceKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Letter returns the upper-case FEN letter; NoKind yields 0.
func (k PieceKind) Letter() byte {
	switch k {
	case Knight:
		return 'N'
	case Bishop:
		return 'B'
	case Rook:
		return 'R'
	case Queen:
		return 'Q'
	case King:
		return 'K'
	case Pawn:
		return 'P'
	}
	return 0
}

// IsPromotionChoice reports whether a pawn may be promoted to k.
func (k PieceKind) IsPromotionChoice() bool {
	return k == Knight || k == Bishop || k == Rook || k == Queen
}

func ParsePieceKind(s string) (PieceKind, error) {
	v := strings.TrimSpace(s)
	if len(v) == 1 {
		switch strings.ToLower(v) {
		case "p":
			return Pawn, nil
		case "n":
			return Knight, nil
		case "b":
			return Bishop, nil
		case "r":
			return Rook, nil
		case "q":
			return Queen, nil
		case "k":
			return King, nil
		}
	}
	v = strings.ToLower(v)
	for i, name := range kindNames {
		if i > 0 && name == v {
			return PieceKind(i), nil
		}
	}
	return NoKind, fmt.Errorf("unknown piece kind %q", s)
}

func (k PieceKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *PieceKind) UnmarshalText(b []byte) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		*k = NoKind
		return nil
	}
	v, err := ParsePieceKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Piece is a value; boards store copies, so mutating a Piece obtained from a
// board never affects the board.
type Piece struct {
	ID       uuid.UUID `json:"id"`
	Kind     PieceKind `json:"kind"`
	Color    Color     `json:"color"`
	HasMoved bool      `json:"hasMoved"`
}

// NewPiece creates an unmoved piece with a fresh random identity.
func NewPiece(kind PieceKind, color Color) Piece {
	return Piece{ID: uuid.New(), Kind: kind, Color: color}
}

// pieceNamespace seeds deterministic identities for the starting layout, so
// every reset and every replay yields the same ids.
var pieceNamespace = uuid.MustParse("6f1c1b2e-4a55-4c8e-9a4e-3d0b6c9f7a21")

func startingPiece(kind PieceKind, color Color, at Position) Piece {
	name := color.String() + "/" + kind.String() + "/" + at.String()
	return Piece{ID: uuid.NewSHA1(pieceNamespace, []byte(name)), Kind: kind, Color: color}
}

// fenLetter is upper case for white, lower case for black.
func (p Piece) fenLetter() byte {
	l := p.Kind.Letter()
	if p.Color == Black {
		l += 'a' - 'A'
	}
	return l
}
