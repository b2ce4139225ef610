// Package confirm asks the operator to accept the computed pairs before any
// file is written.
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"addsubs/internal/pairing"
	"addsubs/internal/services"
	"addsubs/internal/termui"
)

// MaxAnswerLength bounds the confirmation line in bytes.
const MaxAnswerLength = 256

// Question is printed after the pair table.
const Question = "Are these pairs correct? (Y/n): "

// Confirmer gates a batch on a single yes/no decision.
type Confirmer interface {
	Confirm(ctx context.Context, pairs []pairing.Pair) (bool, error)
}

// AutoAccept accepts every batch without asking.
type AutoAccept struct{}

func (AutoAccept) Confirm(context.Context, []pairing.Pair) (bool, error) { return true, nil }

// Prompt shows the pairs on out and reads one answer line from in.
type Prompt struct {
	in       *bufio.Reader
	out      io.Writer
	colorize bool
}

// NewPrompt builds a terminal prompt. Colour is enabled when out is a tty.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		in:       bufio.NewReader(in),
		out:      out,
		colorize: termui.ShouldColorize(out),
	}
}

// Confirm renders the pairs and asks once. Any answer containing "n" or "N"
// rejects; everything else, including an empty line, accepts.
func (p *Prompt) Confirm(ctx context.Context, pairs []pairing.Pair) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintln(p.out, RenderPairs(pairs))
	fmt.Fprint(p.out, termui.Paint(Question, termui.KindInfo, p.colorize))

	answer, err := readAnswer(p.in)
	if err != nil {
		return false, services.Wrap(services.ErrConfirmationRead, "confirm", "read answer", "", err)
	}
	return Accepts(answer), nil
}

// Accepts reports whether answer is a yes: anything without a lowercase "n",
// including an empty line. "N" and "NO" accept.
func Accepts(answer string) bool {
	return !strings.Contains(answer, "n")
}

var (
	errAnswerTooLong = fmt.Errorf("answer longer than %d bytes", MaxAnswerLength)
	errNoInput       = errors.New("no input")
)

// readAnswer reads up to the next newline. End of input after at least one
// byte ends the answer; end of input before any byte is an error.
func readAnswer(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if b.Len() == 0 {
					return "", errNoInput
				}
				return b.String(), nil
			}
			return "", err
		}
		if c == '\n' {
			return strings.TrimRight(b.String(), "\r"), nil
		}
		if b.Len() >= MaxAnswerLength {
			return "", errAnswerTooLong
		}
		b.WriteByte(c)
	}
}

// RenderPairs draws the pairs as a numbered table.
func RenderPairs(pairs []pairing.Pair) string {
	rows := make([][]string, 0, len(pairs))
	for i, pair := range pairs {
		rows = append(rows, []string{strconv.Itoa(i + 1), pair.Primary, pair.Secondary})
	}
	return termui.RenderTable(
		[]string{"#", "Media", "Subtitle"},
		rows,
		[]termui.Alignment{termui.AlignRight, termui.AlignLeft, termui.AlignLeft},
	)
}
