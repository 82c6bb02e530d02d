// Package display renders cards, plays and game states as terminal text.
package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/hundred/internal/deck"
	"github.com/lox/hundred/internal/game"
	"github.com/lox/hundred/internal/simulator"
)

// Formatter renders game values with styles bound to one output
type Formatter struct {
	header  lipgloss.Style
	red     lipgloss.Style
	black   lipgloss.Style
	joker   lipgloss.Style
	current lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
	err     lipgloss.Style
	warning lipgloss.Style
}

// New creates a formatter for w. With noColor set every style renders as
// plain text.
func New(w io.Writer, noColor bool) *Formatter {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Formatter{
		header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true),
		red: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		black: r.NewStyle().
			Bold(true),
		joker: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		current: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		info: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		success: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		err: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		warning: r.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true),
	}
}

// FormatCard renders a single card, coloured by suit
func (f *Formatter) FormatCard(c deck.Card) string {
	switch {
	case c.IsJoker():
		return f.joker.Render(c.String())
	case c.Suit.IsRed():
		return f.red.Render(c.String())
	default:
		return f.black.Render(c.String())
	}
}

// FormatCards renders cards separated by spaces
func (f *Formatter) FormatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = f.FormatCard(c)
	}
	return strings.Join(parts, " ")
}

// FormatPlay renders one history entry, e.g. "seat 1 HAND 7♥ +7 20 → 27 UP"
func (f *Formatter) FormatPlay(e game.PlayLog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "seat %d %-4s %s %+d %d → %d %s",
		e.Seat, e.Origin, f.FormatCard(e.Card), e.Delta, e.BeforeTotal, e.AfterTotal, e.AfterMode)
	if e.AfterMode != e.BeforeMode {
		b.WriteString(" " + f.warning.Render("(reversed)"))
	}
	if e.Note != "" {
		b.WriteString(" " + f.info.Render(e.Note))
	}
	return b.String()
}

// FormatState renders the table: target, total, every seat and the result
func (f *Formatter) FormatState(s game.GameState) string {
	var b strings.Builder

	target := "?"
	if s.Target > 0 {
		target = fmt.Sprintf("%d", s.Target)
	}
	b.WriteString(f.header.Render(fmt.Sprintf(" %s game · target %s ", s.GameType, target)))
	fmt.Fprintf(&b, "\ntotal %d %s · deck %d · discard %d", s.Total, s.Mode, len(s.Deck), len(s.Discard))
	if s.LastCard != nil {
		b.WriteString(" · last " + f.FormatCard(*s.LastCard))
	}
	b.WriteString("\n")

	for i, seat := range s.Seats {
		marker := "  "
		line := fmt.Sprintf("%d %-20s %-5s %s", i, seat.Name, seat.Kind, f.FormatCards(seat.Hand))
		if i == s.Turn && s.Result.IsPlaying() {
			marker = "> "
			line = f.current.Render(fmt.Sprintf("%d %-20s %-5s", i, seat.Name, seat.Kind)) + " " + f.FormatCards(seat.Hand)
		}
		b.WriteString(marker + line + "\n")
	}

	if last, ok := s.History.Last(); ok {
		b.WriteString(f.info.Render("last play: ") + f.FormatPlay(last) + "\n")
	}
	if n := len(s.SystemLogs); n > 0 {
		b.WriteString(f.info.Render(s.SystemLogs[n-1].Message) + "\n")
	}

	b.WriteString(f.FormatResult(s.Result))
	return b.String()
}

// FormatResult renders the outcome line of a game
func (f *Formatter) FormatResult(r game.Result) string {
	switch r.Status {
	case game.StatusLose:
		return f.err.Render(fmt.Sprintf("LOSE seat %d", r.LoserSeat)) + " " + f.info.Render(r.Reason)
	case game.StatusVoid:
		return f.warning.Render("VOID") + " " + f.info.Render(r.Reason)
	default:
		return f.success.Render("PLAYING")
	}
}

// FormatSummary renders the aggregate results of a simulation run
func (f *Formatter) FormatSummary(sum *simulator.Summary) string {
	stats := sum.Stats
	var b strings.Builder

	b.WriteString(f.header.Render(fmt.Sprintf(" %d × %s games ", stats.Games, sum.Config.GameType)))
	fmt.Fprintf(&b, "\nseed %d · %s\n", sum.Config.Seed, sum.Elapsed.Round(time.Millisecond))

	b.WriteString("\n" + f.current.Render("Outcomes") + "\n")
	for seat, losses := range stats.Losses {
		fmt.Fprintf(&b, "  seat %d (%s) lost %d (%.1f%%)\n",
			seat, sum.Config.Difficulties[seat], losses, stats.LossRate(seat)*100)
	}
	fmt.Fprintf(&b, "  void %d · stalled %d\n", stats.Voids, stats.Stalled)

	low, high := stats.ConfidenceInterval95()
	b.WriteString("\n" + f.current.Render("Game length") + "\n")
	fmt.Fprintf(&b, "  mean %.2f plays (95%% CI %.2f to %.2f) · median %.1f · std dev %.2f\n",
		stats.Mean(), low, high, stats.Median(), stats.StdDev())
	fmt.Fprintf(&b, "  P5 %.1f · P95 %.1f\n", stats.Percentile(0.05), stats.Percentile(0.95))

	b.WriteString("\n" + f.current.Render("Events") + "\n")
	fmt.Fprintf(&b, "  draws %d · redeals %d · cancellations %d · reversals %d\n",
		stats.Draws, stats.Redeals, stats.Cancellations, stats.Reversals)

	if sum.Config.GameType.IsExtra() {
		b.WriteString("\n" + f.current.Render("Targets") + "\n")
		for _, target := range game.ExtraCandidates {
			fmt.Fprintf(&b, "  %d: %d\n", target, stats.Targets[target])
		}
	}
	return b.String()
}
