package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"gemini-chat/chatclient"
)

// terminalRenderer 는 chatclient.Renderer 의 터미널 구현이다.
// assistant 응답은 markdown 으로 렌더링한다.
type terminalRenderer struct {
	mu  sync.Mutex
	out io.Writer
	md  *glamour.TermRenderer

	userStyle      lipgloss.Style
	assistantStyle lipgloss.Style
	greetingStyle  lipgloss.Style
	errorStyle     lipgloss.Style
	quotaStyle     lipgloss.Style
	dimStyle       lipgloss.Style

	// onConversationsChanged 는 첫 교환이 끝나 대화 목록을 다시 불러와야 할 때 호출된다.
	onConversationsChanged func()
}

func newTerminalRenderer(out io.Writer) *terminalRenderer {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		md = nil
	}

	return &terminalRenderer{
		out:            out,
		md:             md,
		userStyle:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		assistantStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		greetingStyle:  lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8")),
		errorStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		quotaStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(0, 1),
		dimStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (r *terminalRenderer) AppendEntry(e chatclient.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeEntry(e)
}

func (r *terminalRenderer) ReplaceTranscript(entries []chatclient.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, r.dimStyle.Render(strings.Repeat("─", 40)))
	for _, e := range entries {
		r.writeEntry(e)
	}
}

func (r *terminalRenderer) writeEntry(e chatclient.Entry) {
	switch {
	case e.Greeting:
		fmt.Fprintln(r.out, r.greetingStyle.Render(e.Content))
	case e.Role == chatclient.RoleUser:
		fmt.Fprintf(r.out, "%s %s\n", r.userStyle.Render("you ›"), e.Content)
	default:
		fmt.Fprintln(r.out, r.assistantStyle.Render("assistant ›"))
		fmt.Fprintln(r.out, r.markdown(e.Content))
	}
}

func (r *terminalRenderer) markdown(s string) string {
	if r.md == nil {
		return s
	}
	out, err := r.md.Render(s)
	if err != nil {
		return s
	}
	return strings.TrimRight(out, "\n")
}

func (r *terminalRenderer) SetBusy(busy bool) {
	if !busy {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, r.dimStyle.Render("…"))
}

func (r *terminalRenderer) ShowError(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, r.errorStyle.Render(text))
}

func (r *terminalRenderer) ShowQuota(retryAfter int, details map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	b.WriteString("API quota exceeded.\n")
	fmt.Fprintf(&b, "Wait %d seconds and try again, or type /retry now.", retryAfter)
	if len(details) > 0 {
		keys := make([]string, 0, len(details))
		for k := range details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n  %s: %v", k, details[k])
		}
	}
	fmt.Fprintln(r.out, r.quotaStyle.Render(b.String()))
}

func (r *terminalRenderer) Countdown(secondsLeft int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if secondsLeft > 0 {
		if secondsLeft%10 == 0 || secondsLeft <= 5 {
			fmt.Fprintln(r.out, r.dimStyle.Render(fmt.Sprintf("retry in %ds", secondsLeft)))
		}
		return
	}
	fmt.Fprintln(r.out, r.quotaStyle.Render("Ready. Type /retry to send your last message again."))
}

func (r *terminalRenderer) HideQuota() {}

func (r *terminalRenderer) LoginRequired() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, r.errorStyle.Render("Session expired. Run: gemini-chat login -u <name> -p <password>"))
}

func (r *terminalRenderer) ConversationsChanged() {
	if r.onConversationsChanged != nil {
		r.onConversationsChanged()
	}
}

// ConversationList 는 history 패널에 해당하는 대화 목록을 출력한다.
func (r *terminalRenderer) ConversationList(conversations []chatclient.Conversation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(conversations) == 0 {
		fmt.Fprintln(r.out, r.dimStyle.Render("no conversations yet"))
		return
	}
	for _, c := range conversations {
		fmt.Fprintf(r.out, "%s  %s  %s\n",
			r.userStyle.Render(fmt.Sprintf("#%d", c.ID)),
			c.Title,
			r.dimStyle.Render(c.CreatedAt.Local().Format("2006-01-02 15:04")),
		)
	}
}
