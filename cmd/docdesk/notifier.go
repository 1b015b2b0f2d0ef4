package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/docdesk/internal/service"
)

// noticePrinter renders session notices on the terminal.
type noticePrinter struct {
	w      io.Writer
	styles map[service.NoticeLevel]lipgloss.Style
	plain  lipgloss.Style
}

func newNoticePrinter(w io.Writer) *noticePrinter {
	renderer := lipgloss.NewRenderer(w)
	base := renderer.NewStyle().Bold(true)
	return &noticePrinter{
		w: w,
		styles: map[service.NoticeLevel]lipgloss.Style{
			service.NoticeSuccess: base.Foreground(lipgloss.Color("2")),
			service.NoticeInfo:    base.Foreground(lipgloss.Color("4")),
			service.NoticeWarning: base.Foreground(lipgloss.Color("3")),
			service.NoticeError:   base.Foreground(lipgloss.Color("1")),
		},
		plain: renderer.NewStyle(),
	}
}

func (p *noticePrinter) Notify(_ context.Context, notice service.Notice) {
	style, ok := p.styles[notice.Level]
	if !ok {
		style = p.plain
	}
	fmt.Fprintln(p.w, style.Render(notice.Message))
}
