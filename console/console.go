// Package console renders streamed output, panels, and live statistics
// to a terminal-style sink.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/nfujita/rivulet/provider"
	"github.com/nfujita/rivulet/stats"
)

// Renderer writes styled output to an explicit sink. Passing the sink
// in keeps the package free of process-wide mutable state.
type Renderer struct {
	w io.Writer
}

// New creates a renderer writing to w.
func New(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Banner prints a bordered headline, used at the start of the run and
// of each scenario.
func (r *Renderer) Banner(title, subtitle string) {
	body := titleStyle.Render(title)
	if subtitle != "" {
		body += "\n" + subtitleStyle.Render(subtitle)
	}
	fmt.Fprintln(r.w, bannerStyle.Render(body))
}

// Delta prints one incremental text fragment without a newline.
func (r *Renderer) Delta(s string) {
	fmt.Fprint(r.w, textStyle.Render(s))
}

// Panel prints a titled box around the given body, used for the
// collected response once a stream completes.
func (r *Renderer) Panel(title, body string) {
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, dimStyle.Render(title))
	fmt.Fprintln(r.w, panelStyle.Render(body))
}

// FunctionCall prints an accumulated function call.
func (r *Renderer) FunctionCall(name, arguments string) {
	body := functionStyle.Render("Function: "+name) + "\n" +
		"Arguments: " + arguments
	r.Panel("Function call detected", body)
}

// StatsLine rewrites the live statistics line in place. Call Delta
// and StatsLine from the same goroutine; the counter is per-stream.
func (r *Renderer) StatsLine(c *stats.Counter) {
	line := fmt.Sprintf("Words: %d  Sentences: %d  Characters: %d",
		c.Words, c.Sentences, c.Characters)
	fmt.Fprint(r.w, "\r"+statsStyle.Render(line))
}

// EndStatsLine terminates the live statistics line.
func (r *Renderer) EndStatsLine() {
	fmt.Fprintln(r.w)
}

// Error prints a classified provider failure with a human-readable
// label. Rate-limit and invalid-request failures render as warnings,
// matching their recoverable nature; everything else renders red.
func (r *Renderer) Error(err error) {
	label := provider.Label(err)
	style := errorStyle
	if provider.IsRateLimited(err) || provider.IsInvalidRequest(err) {
		style = warnStyle
	}
	fmt.Fprintln(r.w, style.Render(fmt.Sprintf("%s: %v", label, err)))
}

// Rule prints a horizontal divider between scenarios.
func (r *Renderer) Rule() {
	fmt.Fprintln(r.w, dimStyle.Render(strings.Repeat("=", 50)))
}

// Println prints a plain line.
func (r *Renderer) Println(s string) {
	fmt.Fprintln(r.w, s)
}
