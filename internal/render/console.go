// Package render owns the column layout, ANSI styling and bell output
// of the ticker display. It consumes structured tick reports; it holds
// no run state beyond the start-line alternation flag.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/llamakarma/goticker/internal/domain"
	"github.com/llamakarma/goticker/internal/engine"
)

const (
	col1     = 15
	col2     = 15
	col3     = 14
	col4a    = 10
	col4b    = col4a + col3
	col5     = 14
	maxWidth = col1 + col2 + col3 + col4a + col5

	clockFormat = "15:04:05"
	dateFormat  = "02-01-2006"

	bell      = "\a"
	multiBell = "\a\a\a"
)

// Console renders to a terminal. Brief mode drops the PRICE/VALUE/BEST
// lines and moves the new-high highlight onto the price line instead.
type Console struct {
	out     io.Writer
	version string
	brief   bool
	est     *time.Location

	tickTock bool
	delim    string

	notice  *color.Color
	reverse *color.Color
	crossed *color.Color
}

// NewConsole creates a renderer writing to out.
func NewConsole(out io.Writer, version string, brief bool, est *time.Location) *Console {
	return &Console{
		out:     out,
		version: version,
		brief:   brief,
		est:     est,
		delim:   strings.Repeat("-", maxWidth),
		notice:  color.New(color.BgBlue),
		reverse: color.New(color.ReverseVideo),
		crossed: color.New(color.BgGreen),
	}
}

// Header prints the startup / re-init block.
func (c *Console) Header(s *domain.Session) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, ljust("Version:", col1)+ljust(c.version, col2)+
		ljust("Stock:", col3)+rjust(strings.ToUpper(s.Symbol), col4a))
	fmt.Fprintln(c.out, ljust("Multiple:", col1)+ljust(s.Multiplier.String(), col2)+
		ljust("Currency:", col3)+rjust("("+s.Currency.Glyph()+") "+s.Currency.String(), col4a))

	interval := ljust("Interval:", col3) + rjust(fmt.Sprint(s.RefreshInterval), col4a)
	switch {
	case s.ThresholdFromOpen:
		fmt.Fprintln(c.out, ljust("Threshold at open value", col1+col2)+interval)
	case s.Threshold.IsZero():
		fmt.Fprintln(c.out, ljust("Threshold not configured", col1+col2)+interval)
	default:
		fmt.Fprintln(c.out, ljust("Threshold:", col1)+
			ljust(s.Currency.Glyph()+s.Threshold.String(), col2)+interval)
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.notice.Sprint(c.delim))
	fmt.Fprintln(c.out)
}

// Tick prints the status block for one successful observation.
func (c *Console) Tick(s *domain.Session, rep engine.Report) {
	baseline := rep.Result.Kind == domain.TickBaseline
	soundOn := s.SoundEnabled

	c.printStartLine(s)
	fmt.Fprintln(c.out, ljust("Time:", col1)+ljust(rep.Now.Format(clockFormat), col2)+
		ljust(rep.Now.In(c.est).Format(clockFormat)+" EST", col3))
	fmt.Fprintln(c.out)

	c.printPriceLine(s, rep, baseline, soundOn)

	if !s.Currency.IsNative() {
		c.printFxLine(s, rep, baseline)
		if !c.brief {
			fmt.Fprintln(c.out, ljust("PRICE:", col1)+
				ljust(s.Currency.Glyph()+s.CurrentEquiv.String(), col2))
		}
	}

	if !c.brief {
		c.printValueLine(s, rep, baseline, soundOn)
		c.printBestLine(s, rep, baseline, soundOn)
	}
	fmt.Fprintln(c.out)
}

// printStartLine alternates a highlight on the label so a glance shows
// the display is still iterating.
func (c *Console) printStartLine(s *domain.Session) {
	label := ljust("Start:", col1)
	if c.tickTock {
		label = c.notice.Sprint(label)
	}
	c.tickTock = !c.tickTock
	fmt.Fprintln(c.out, label+ljust(s.StartTime.Format(clockFormat), col2)+
		ljust(s.StartTime.In(c.est).Format(clockFormat)+" EST", col3)+
		rjust(s.StartTime.Format(dateFormat), col4a+col5))
}

func (c *Console) printPriceLine(s *domain.Session, rep engine.Report, baseline, soundOn bool) {
	line := ljust(strings.ToUpper(s.Symbol)+":", col1) +
		ljust("$"+s.CurrentPrice.String(), col2) +
		ljust("H: "+s.BestPrice.String(), col3) +
		rjust(deltaString(rep.Result.PriceDelta, baseline), col4a) +
		rjust("@ "+s.BestPriceTime.Format(clockFormat), col5)

	if c.brief && rep.Result.PriceImproved {
		fmt.Fprint(c.out, c.reverse.Sprint(line))
		if soundOn {
			fmt.Fprint(c.out, bell)
		}
		fmt.Fprintln(c.out)
		return
	}
	fmt.Fprintln(c.out, line)
}

func (c *Console) printFxLine(s *domain.Session, rep engine.Report, baseline bool) {
	fmt.Fprintln(c.out, ljust(s.Currency.String()+":", col1)+
		ljust("x"+s.CurrentFx.String(), col2)+
		ljust("L: "+s.LowFx.String(), col3)+
		rjust(deltaString(rep.Result.FxDelta, baseline), col4a)+
		rjust("@ "+s.LowFxTime.Format(clockFormat), col5))
}

func (c *Console) printValueLine(s *domain.Session, rep engine.Report, baseline, soundOn bool) {
	plain := ljust("VALUE:", col1) + ljust(s.Currency.Glyph()+s.CurrentValue.String(), col2)
	if baseline {
		fmt.Fprintln(c.out, plain)
		return
	}
	line := plain + rjust(deltaString(rep.Result.ValueDelta, baseline), col4b)

	switch {
	case rep.Alert == domain.AlertThresholdCrossed:
		fmt.Fprint(c.out, c.crossed.Sprint(line))
		if soundOn {
			fmt.Fprint(c.out, multiBell)
		}
		fmt.Fprintln(c.out)
	case rep.Result.ValueImproved:
		fmt.Fprintln(c.out, c.reverse.Sprint(line))
	default:
		fmt.Fprintln(c.out, line)
	}
}

func (c *Console) printBestLine(s *domain.Session, rep engine.Report, baseline, soundOn bool) {
	line := ljust("BEST:", col1) + ljust(s.Currency.Glyph()+s.BestValue.String(), col2) +
		rjust("@ "+s.BestValueTime.Format(clockFormat), col4b+col5)

	switch {
	case baseline:
		fmt.Fprintln(c.out, line)
	case rep.Result.ValueImproved:
		fmt.Fprint(c.out, c.reverse.Sprint(line))
		if soundOn {
			fmt.Fprint(c.out, bell)
		}
		fmt.Fprintln(c.out)
	case rep.Result.ValueMatched:
		// Matched the best without beating it: highlight, no bell.
		fmt.Fprintln(c.out, c.reverse.Sprint(line))
	default:
		fmt.Fprintln(c.out, line)
	}
}

// Notice prints a centered hotkey feedback bar.
func (c *Console) Notice(text string) {
	fmt.Fprintln(c.out, c.notice.Sprint(center(text, maxWidth)))
	fmt.Fprintln(c.out)
}

// Countdown rewrites the remaining-seconds line in place.
func (c *Console) Countdown(remaining int, soundOn bool) {
	var text string
	if soundOn {
		text = fmt.Sprintf("-\U0001f514- Refreshes in %d seconds -\U0001f514-", remaining)
	} else {
		text = fmt.Sprintf("--- Refreshes in %d seconds ---", remaining)
	}
	fmt.Fprint(c.out, "\r"+center(text, maxWidth))
}

// Delimiter closes a tick after the countdown finishes.
func (c *Console) Delimiter() {
	fmt.Fprintln(c.out, "\r"+c.delim)
	fmt.Fprintln(c.out)
}

// Farewell prints the goodbye on a clean quit.
func (c *Console) Farewell() {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Thanks for all the fish, smeg head.")
	fmt.Fprintln(c.out)
}

func deltaString(d decimal.Decimal, baseline bool) string {
	if baseline {
		return ""
	}
	return d.StringFixed(2) + "%"
}

// Padding counts runes, not bytes: currency glyphs and the countdown
// bell marker are multi-byte and would otherwise shift the columns.
func ljust(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func rjust(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
