package transcript

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pixil98/go-tabletop/internal/arena"
	"github.com/pixil98/go-tabletop/internal/block"
	"github.com/pixil98/go-tabletop/internal/ident"
)

const (
	DefaultWidth    = 80
	DefaultTemplate = `[{{ dateInZone "2006-01-02 15:04" .At "UTC" }}] {{ .Speaker }}: {{ .Text | trim }}`
)

// Line is one chat message ready for rendering.
type Line struct {
	At        time.Time
	Sender    string
	Character string
	Text      string
}

// Speaker is the character name when the message was sent as a character,
// otherwise the sender.
func (l Line) Speaker() string {
	if l.Character != "" {
		return l.Character
	}
	return l.Sender
}

// Collect gathers the messages on tab in timeline order. Messages that are
// no longer present are skipped.
func Collect(a *arena.Arena, tab ident.Id) (string, []Line, error) {
	t, ok := arena.Get[*block.ChatTab](a, tab)
	if !ok {
		return "", nil, fmt.Errorf("chat tab %s not found", tab)
	}

	lines := make([]Line, 0, len(t.Items))
	for _, it := range t.Items {
		msg, ok := arena.Get[*block.ChatMessage](a, it.Item)
		if !ok {
			continue
		}
		l := Line{
			At:     time.UnixMilli(int64(it.Timestamp)).UTC(),
			Sender: msg.Sender,
			Text:   msg.Text,
		}
		if msg.Character != nil {
			if c, ok := arena.Get[*block.Character](a, *msg.Character); ok {
				l.Character = c.Name
			}
		}
		lines = append(lines, l)
	}
	return t.Name, lines, nil
}

// FindTab returns the id of the first tab of chat called name.
func FindTab(a *arena.Arena, chat ident.Id, name string) (ident.Id, bool) {
	c, ok := arena.Get[*block.Chat](a, chat)
	if !ok {
		return ident.Nil, false
	}
	for _, id := range c.Tabs {
		if t, ok := arena.Get[*block.ChatTab](a, id); ok && strings.EqualFold(t.Name, name) {
			return id, true
		}
	}
	return ident.Nil, false
}

type Renderer struct {
	tmpl  *template.Template
	width int
}

type RendererOpt func(*rendererConfig)

type rendererConfig struct {
	template string
	width    int
}

func WithTemplate(tmpl string) RendererOpt {
	return func(c *rendererConfig) {
		c.template = tmpl
	}
}

// WithWidth sets the wrap width. Zero disables wrapping.
func WithWidth(width int) RendererOpt {
	return func(c *rendererConfig) {
		c.width = width
	}
}

func NewRenderer(opts ...RendererOpt) (*Renderer, error) {
	cfg := rendererConfig{template: DefaultTemplate, width: DefaultWidth}
	for _, opt := range opts {
		opt(&cfg)
	}

	tmpl, err := template.New("line").Funcs(sprig.TxtFuncMap()).Parse(cfg.template)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &Renderer{tmpl: tmpl, width: cfg.width}, nil
}

// Render writes a heading for the tab followed by one entry per line.
// Wrapped continuation lines are indented.
func (r *Renderer) Render(w io.Writer, tabName string, lines []Line) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", tabName); err != nil {
		return err
	}

	var buf strings.Builder
	for _, l := range lines {
		buf.Reset()
		if err := r.tmpl.Execute(&buf, l); err != nil {
			return fmt.Errorf("executing template: %w", err)
		}

		if _, err := fmt.Fprintln(w, r.wrap(buf.String())); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) wrap(s string) string {
	if r.width <= 0 {
		return s
	}
	const hang = 4

	wrapped := wordwrap.String(s, r.width)
	first, rest, found := strings.Cut(wrapped, "\n")
	if !found {
		return first
	}
	rest = wordwrap.String(strings.ReplaceAll(rest, "\n", " "), r.width-hang)
	return first + "\n" + indent.String(rest, hang)
}
