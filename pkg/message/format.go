// Package message renders CheckMK alert events into the dual-format
// (plain text + HTML) bodies the Matrix message envelope carries.
package message

import (
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"

	"github.com/jamswat/checkmk-matrix-notify/pkg/event"
)

// OutgoingMessage is one ready-to-send notification. TransactionID is
// the idempotency token for the Matrix send path; it is unique per
// build and has no other meaning.
type OutgoingMessage struct {
	PlainText     string
	HTMLBody      string
	TransactionID string
}

// NewTransactionID returns a fresh 128-bit random transaction id.
func NewTransactionID() string {
	return uuid.New().String()
}

// Build renders an alert event with the given presentation table.
// A nil table uses the built-in defaults. Both renderings carry the
// same host name, state, and check output.
func Build(ev *event.AlertEvent, table *Table) *OutgoingMessage {
	if table == nil {
		table = DefaultTable()
	}
	p := table.Lookup(ev.State())

	return &OutgoingMessage{
		PlainText:     renderPlain(ev, p),
		HTMLBody:      renderHTML(ev, p),
		TransactionID: NewTransactionID(),
	}
}

func renderPlain(ev *event.AlertEvent, p Presentation) string {
	lines := []string{
		fmt.Sprintf("%s %s %s: %s", p.Emoji, ev.Kind, ev.NotificationType, ev.HostName),
	}
	if ev.Kind == event.KindService {
		lines = append(lines, "Service: "+ev.ServiceDescription)
	}
	lines = append(lines, "State: "+transition(ev.PreviousState(), ev.State(), "→"))
	lines = append(lines, "Output: "+ev.Output())
	if footer := footerText(ev); footer != "" {
		lines = append(lines, footer)
	}
	return strings.Join(lines, "\n")
}

func renderHTML(ev *event.AlertEvent, p Presentation) string {
	esc := html.EscapeString

	state := "<b>" + esc(ev.State()) + "</b>"
	if p.Color != "" {
		state = fmt.Sprintf("<b><font color=%q>%s</font></b>", p.Color, esc(ev.State()))
	}
	stateLine := state
	if prev := ev.PreviousState(); prev != "" {
		stateLine = esc(prev) + " &rarr; " + state
	}

	lines := []string{
		fmt.Sprintf("<p><b>%s %s %s</b></p>", p.Emoji, ev.Kind, esc(ev.NotificationType)),
		"<b>Host:</b> " + esc(ev.HostName),
	}
	if ev.Kind == event.KindService {
		lines = append(lines, "<b>Service:</b> "+esc(ev.ServiceDescription))
	}
	lines = append(lines, "<b>State:</b> "+stateLine)
	lines = append(lines, "<b>Output:</b> <code>"+esc(ev.Output())+"</code>")
	if footer := footerText(ev); footer != "" {
		lines = append(lines, "<p><small>"+esc(footer)+"</small></p>")
	}
	return strings.Join(lines, "<br>")
}

func transition(prev, cur, arrow string) string {
	if prev == "" {
		return cur
	}
	return prev + " " + arrow + " " + cur
}

func footerText(ev *event.AlertEvent) string {
	switch {
	case ev.SiteName != "" && ev.ShortDateTime != "":
		return "Site: " + ev.SiteName + " | " + ev.ShortDateTime
	case ev.SiteName != "":
		return "Site: " + ev.SiteName
	case ev.ShortDateTime != "":
		return ev.ShortDateTime
	}
	return ""
}
