package gridworld

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/danielpatrickdp/paretoq/internal/mdp"
)

// Render draws the grid with the agent at s. A is the agent, G the goal and a
// digit the type of an uncollected resource. colour=false writes plain text.
func (e *Env) Render(w io.Writer, s mdp.State, colour bool) error {
	au := aurora.NewAurora(colour)
	var b strings.Builder
	for y := 0; y < e.cfg.Height; y++ {
		for x := 0; x < e.cfg.Width; x++ {
			b.WriteString(e.cell(au, s, Point{x, y}))
			b.WriteString(au.White("|").String())
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderObservations draws one frame per observation, each headed by its
// index in the sequence.
func (e *Env) RenderObservations(w io.Writer, obs [][]float64, colour bool) error {
	for i, o := range obs {
		s, err := StateFromObservation(o)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if _, err := fmt.Fprintf(w, "step %d\n", i); err != nil {
			return err
		}
		if err := e.Render(w, s, colour); err != nil {
			return err
		}
	}
	return nil
}

func (e *Env) cell(au aurora.Aurora, s mdp.State, p Point) string {
	switch {
	case s.X == p.X && s.Y == p.Y:
		return au.Green(" A ").String()
	case e.cfg.Goal == p:
		return au.Cyan(" G ").String()
	}
	for _, i := range e.cells[p] {
		if !s.Picked.Has(i) {
			return au.Yellow(fmt.Sprintf(" %d ", e.cfg.Resources[i].Type)).String()
		}
	}
	return au.Blue(" . ").String()
}
