// Package ui renders the chat on a terminal and reads the user's input.
// It observes events and never modifies session state.
package ui

import (
	"chat-client/domain"
	"chat-client/repositories"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

var (
	nameStyle   = color.New(color.FgCyan, color.OpBold)
	selfStyle   = color.New(color.FgGreen, color.OpBold)
	noticeStyle = color.New(color.FgGray)
	statusStyle = color.New(color.FgYellow)
	errorStyle  = color.New(color.FgRed)
)

// Console writes events as lines of text. Safe for concurrent use.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	colours bool
	selfID  string
	now     func() time.Time
}

func NewConsole(out io.Writer, colours bool) *Console {
	return &Console{out: out, colours: colours, now: time.Now}
}

// SetSelf marks the local user so its own messages stand out.
func (c *Console) SetSelf(identity domain.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selfID = identity.ID
}

func (c *Console) OnEvent(evt domain.IncomingEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch e := evt.(type) {
	case domain.ChatReceived:
		style := nameStyle
		if e.FromUserID == c.selfID {
			style = selfStyle
		}
		c.println(fmt.Sprintf("[%s] %s: %s",
			c.now().Format(time.TimeOnly), c.paint(style, e.FromUserName), e.Text))
	case domain.UserJoined:
		c.println(c.paint(noticeStyle, fmt.Sprintf("* %s joined the chat.", e.Identity.Name)))
	case domain.UserLeft:
		c.println(c.paint(noticeStyle, fmt.Sprintf("* %s left the chat.", e.Identity.Name)))
	}
}

// Status prints a line about the connection itself.
func (c *Console) Status(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println(c.paint(statusStyle, line))
}

func (c *Console) Error(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println(c.paint(errorStyle, "error: "+err.Error()))
}

// Roster prints the participants as a table.
func (c *Console) Roster(members []domain.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	table := c.table([]string{"#", "Name", "ID"})
	for i, member := range members {
		name := member.Name
		if member.ID == c.selfID {
			name += " (you)"
		}
		table.Append([]string{strconv.Itoa(i + 1), name, member.ID})
	}
	table.Render()
}

// Transcript prints stored entries, oldest first.
func (c *Console) Transcript(entries []repositories.TranscriptEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(entries) == 0 {
		c.println(c.paint(noticeStyle, "No entries."))
		return
	}
	table := c.table([]string{"Time", "Kind", "User", "Text"})
	for _, entry := range entries {
		table.Append([]string{
			entry.At.Local().Format(time.DateTime),
			string(entry.Kind),
			entry.UserName,
			entry.Text,
		})
	}
	table.Render()
}

func (c *Console) table(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func (c *Console) paint(style color.Style, text string) string {
	if !c.colours {
		return text
	}
	return style.Render(text)
}

func (c *Console) println(line string) {
	_, _ = fmt.Fprintln(c.out, line)
}
