package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-chess/internal/domain"
)

// ResultToPGN maps white/black/draw to the PGN result token; anything else is "*".
func ResultToPGN(result string) string {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "white":
		return "1-0"
	case "black":
		return "0-1"
	case "draw":
		return "1/2-1/2"
	default:
		return "*"
	}
}

// BuildPGN renders the game's SAN list with the seven-tag roster plus
// Termination.
func BuildPGN(g *domain.ChessGame) string {
	if g == nil {
		return ""
	}
	pgnResult := ResultToPGN(g.Result)
	date := g.EndedAt
	if date.IsZero() {
		date = time.Now()
	}

	var b strings.Builder
	b.WriteString("[Event \"Cheese Chess Online\"]\n")
	fmt.Fprintf(&b, "[Site \"%s\"]\n", sanitizePGN(g.Code))
	fmt.Fprintf(&b, "[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day())
	b.WriteString("[Round \"-\"]\n")
	fmt.Fprintf(&b, "[White \"%s\"]\n", sanitizePGN(displayName(g.WhiteName, g.WhiteID)))
	fmt.Fprintf(&b, "[Black \"%s\"]\n", sanitizePGN(displayName(g.BlackName, g.BlackID)))
	fmt.Fprintf(&b, "[Result \"%s\"]\n", pgnResult)
	if method := strings.TrimSpace(g.ResultMethod); method != "" {
		fmt.Fprintf(&b, "[Termination \"%s\"]\n", sanitizePGN(strings.ToLower(method)))
	}
	b.WriteString("\n")

	for i := 0; i < len(g.MovesSAN); i += 2 {
		fmt.Fprintf(&b, "%d. %s", i/2+1, strings.TrimSpace(g.MovesSAN[i]))
		if i+1 < len(g.MovesSAN) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(g.MovesSAN[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(pgnResult)
	return b.String()
}

func displayName(name, id string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	if id != "" {
		return id
	}
	return "?"
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
