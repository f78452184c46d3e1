package terminal

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/dshills/lineconf/internal/engine"
	"github.com/dshills/lineconf/internal/options"
	"github.com/dshills/lineconf/internal/palette"
)

// DefaultPrompt is drawn before the first input line.
const DefaultPrompt = "> "

// minFlash keeps a visual bell visible when DingDuration is tiny.
const minFlash = 50 * time.Millisecond

// Prompt draws an editing session and routes terminal keys to it. Ctrl+Q
// ends the prompt. It implements engine.Bell.
type Prompt struct {
	term   *Terminal
	store  *options.Store
	logger *slog.Logger
	prompt string
	id     string

	mu         sync.Mutex
	output     []string
	status     string
	statusErr  bool
	flashUntil time.Time
}

// PromptOption configures a Prompt.
type PromptOption func(*Prompt)

// WithPrompt replaces DefaultPrompt.
func WithPrompt(s string) PromptOption {
	return func(p *Prompt) { p.prompt = s }
}

// WithLogger sets the logger for accepted lines and errors.
func WithLogger(l *slog.Logger) PromptOption {
	return func(p *Prompt) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPrompt creates a prompt drawing on term with colors from store.
func NewPrompt(term *Terminal, store *options.Store, opts ...PromptOption) *Prompt {
	p := &Prompt{
		term:   term,
		store:  store,
		logger: slog.Default(),
		prompt: DefaultPrompt,
		id:     uuid.NewString(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("prompt", p.id))
	return p
}

// ID identifies the prompt in log output.
func (p *Prompt) ID() string { return p.id }

// Output returns the lines accepted so far.
func (p *Prompt) Output() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.output...)
}

// Ring implements engine.Bell.
func (p *Prompt) Ring(style options.BellStyle, _ int, duration time.Duration) {
	switch style {
	case options.BellAudible:
		p.term.Beep()
	case options.BellVisual:
		d := max(duration, minFlash)
		p.mu.Lock()
		p.flashUntil = time.Now().Add(d)
		p.mu.Unlock()
		time.AfterFunc(d, p.term.Wake)
	}
}

// Refresh asks a running prompt to redraw, for example after the settings
// were reloaded.
func (p *Prompt) Refresh() {
	p.term.Wake()
}

// Run reads keys until Ctrl+Q, ctx is done or the screen is shut down.
func (p *Prompt) Run(ctx context.Context, s *engine.Session) error {
	stop := context.AfterFunc(ctx, p.term.Wake)
	defer stop()

	p.logger.Info("prompt started")
	defer p.logger.Info("prompt stopped")

	for {
		p.render(s)

		ev := p.term.PollEvent()
		if err := ctx.Err(); err != nil {
			return err
		}
		switch ev := ev.(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			p.term.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlQ {
				return nil
			}
			out, err := s.HandleTcell(ev)
			p.after(s, out, err)
		}
	}
}

func (p *Prompt) after(s *engine.Session, out engine.Outcome, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status, p.statusErr = "", false
	if err != nil {
		p.logger.Warn("key handler failed", slog.Any("error", err))
		p.status, p.statusErr = err.Error(), true
		return
	}
	switch out {
	case engine.OutcomeAccepted:
		line := s.Accepted()
		p.output = append(p.output, p.prompt+line)
		p.logger.Info("line accepted", slog.String("line", line))
	case engine.OutcomeRejected:
		p.status, p.statusErr = s.Rejection().Error(), true
	case engine.OutcomeAborted:
		p.status = "aborted"
	case engine.OutcomePending:
		p.status = s.Pending().String() + " ..."
	}
}

func (p *Prompt) render(s *engine.Session) {
	cfg := p.store.Get()

	p.mu.Lock()
	output := p.output
	status, statusErr := p.status, p.statusErr
	flash := time.Now().Before(p.flashUntil)
	p.mu.Unlock()

	rows := strings.Split(s.Line(), "\n")
	curRow, curCol := cursorPosition(s.Line(), s.Cursor())

	p.term.draw(func(c *canvas) {
		// Input rows, extra prompt lines and the status row sit at the
		// bottom; output fills what is left above them.
		inputTop := max(0, c.height-1-len(rows)-cfg.ExtraPromptLineCount)
		if len(output) < inputTop {
			inputTop = len(output)
		}
		for i, line := range output[max(0, len(output)-inputTop):] {
			c.text(0, i, line, tcell.StyleDefault)
		}

		text := Style(cfg.Palette.Token(palette.TokenNone))
		promptStyle := tcell.StyleDefault
		if flash {
			promptStyle = promptStyle.Reverse(true)
		}
		contStyle := Style(cfg.Palette.ContinuationPrompt)

		y := inputTop + cfg.ExtraPromptLineCount
		var curX int
		for i, row := range rows {
			x := 0
			if i == 0 {
				x = c.text(x, y+i, p.prompt, promptStyle)
			} else {
				x = c.text(x, y+i, cfg.ContinuationPrompt, contStyle)
			}
			if i == curRow {
				curX = x + curCol
			}
			c.text(x, y+i, row, text)
		}
		c.cursor(curX, y+curRow)

		if status != "" {
			style := Style(cfg.Palette.Emphasis)
			if statusErr {
				style = Style(cfg.Palette.Error)
			}
			c.text(0, c.height-1, status, style)
		}
	})
}

// cursorPosition returns the row and display column of the rune offset
// cursor within a possibly multi-line buffer.
func cursorPosition(line string, cursor int) (row, col int) {
	runes := []rune(line)
	cursor = min(max(cursor, 0), len(runes))
	before := string(runes[:cursor])
	row = strings.Count(before, "\n")
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	return row, width(before)
}
