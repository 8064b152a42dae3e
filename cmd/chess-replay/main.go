// Command chess-replay replays a move list and prints the final position.
//
//	chess-replay [-no-color] moves.json
//
// The file holds either move records ([{"from":"e2","to":"e4"}, ...]) or UCI
// strings (["e2e4", "e7e5", ...]). Use "-" to read standard input.
package main

import (
    "encoding/json"
    "flag"
    "fmt"
    "io"
    "os"
    "strings"

    "github.com/fatih/color"

    "github.com/park285/cheese-chess/internal/game"
    "github.com/park285/cheese-chess/internal/rules"
    "github.com/park285/cheese-chess/pkg/chessdto"
)

func main() {
    if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
        fmt.Fprintln(os.Stderr, "chess-replay:", err)
        os.Exit(1)
    }
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
    fs := flag.NewFlagSet("chess-replay", flag.ContinueOnError)
    fs.SetOutput(stdout)
    noColor := fs.Bool("no-color", false, "disable ANSI colours")
    if err := fs.Parse(args); err != nil {
        return err
    }
    if fs.NArg() != 1 {
        return fmt.Errorf("usage: chess-replay [-no-color] <moves.json|->")
    }

    var raw []byte
    var err error
    if name := fs.Arg(0); name == "-" {
        raw, err = io.ReadAll(stdin)
    } else {
        raw, err = os.ReadFile(name)
    }
    if err != nil {
        return err
    }
    recs, err := decodeMoves(raw)
    if err != nil {
        return err
    }
    sess, err := game.ReplayRecords(recs)
    if err != nil {
        return err
    }
    printSnapshot(stdout, sess.Snapshot(), !*noColor)
    return nil
}

func decodeMoves(raw []byte) ([]chessdto.MoveRecord, error) {
    var recs []chessdto.MoveRecord
    if err := json.Unmarshal(raw, &recs); err == nil {
        return recs, nil
    }
    var uci []string
    if err := json.Unmarshal(raw, &uci); err != nil {
        return nil, fmt.Errorf("moves must be a JSON array of records or UCI strings: %w", err)
    }
    recs = make([]chessdto.MoveRecord, 0, len(uci))
    for i, s := range uci {
        m, err := rules.ParseUCI(s)
        if err != nil {
            return nil, fmt.Errorf("move %d: %w", i+1, err)
        }
        recs = append(recs, game.Record(m))
    }
    return recs, nil
}

func printSnapshot(w io.Writer, snap game.Snapshot, colored bool) {
    light := color.New(color.BgHiWhite, color.FgBlack)
    dark := color.New(color.BgGreen, color.FgBlack)
    if !colored {
        light.DisableColor()
        dark.DisableColor()
    } else {
        light.EnableColor()
        dark.EnableColor()
    }

    for r := 7; r >= 0; r-- {
        fmt.Fprintf(w, "%d ", r+1)
        for f := 0; f < 8; f++ {
            pos, _ := rules.NewPosition(f, r)
            cell := " . "
            if p, ok := snap.Board.PieceAt(pos); ok {
                cell = " " + pieceLetter(p) + " "
            }
            sq := dark
            if (f+r)%2 == 1 {
                sq = light
            }
            fmt.Fprint(w, sq.Sprint(cell))
        }
        fmt.Fprintln(w)
    }
    fmt.Fprintln(w, "   a  b  c  d  e  f  g  h")
    fmt.Fprintln(w)

    fmt.Fprintf(w, "moves:  %s\n", strings.Join(snap.SAN, " "))
    fmt.Fprintf(w, "turn:   %s\n", snap.Turn)
    fmt.Fprintf(w, "state:  %s\n", snap.State)
    fmt.Fprintf(w, "check:  %t\n", snap.Status.InCheck)
    fmt.Fprintf(w, "fen:    %s\n", snap.FEN)
}

func pieceLetter(p rules.Piece) string {
    l := string(p.Kind.Letter())
    if p.Color == rules.Black {
        return strings.ToLower(l)
    }
    return l
}
