package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/whiskerworthy/dogdiet/internal/chat"
)

const chatWelcome = "Hello! I'm here to help with dog nutrition questions."

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the dog nutrition assistant",
	Long: `Chat with the dog nutrition assistant.

Enter sends the message. End a line with \ to continue on the next line.
/clear empties the conversation, /quit leaves.

Examples:
  dogdiet chat
  dogdiet chat --message "How much should a 3 year old beagle eat?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		transport := chat.NewHTTPTransport(client, appConfig.Chat.Endpoint)

		message, _ := cmd.Flags().GetString("message")
		if message != "" {
			return askOnce(cmd.Context(), transport, message)
		}

		view := &chatView{out: stdout}
		sess := chat.NewSession(transport,
			chat.WithLogger(slog.Default()),
			chat.WithOnChange(view.render),
		)
		return runChat(cmd.Context(), stdin, stdout, sess)
	},
}

func init() {
	chatCmd.Flags().StringP("message", "m", "", "ask one question and print the answer")
}

// askOnce sends a single message and prints the reply.
func askOnce(ctx context.Context, t chat.Transport, message string) error {
	sess := chat.NewSession(t, chat.WithLogger(slog.Default()))
	sess.SetInput(message)
	sess.SendMessage(ctx)

	st := sess.State()
	if st.Error != "" {
		console.Error("Error: " + st.Error)
		return reported(errors.New(st.Error))
	}
	if n := len(st.Messages); n > 0 && st.Messages[n-1].Role == chat.RoleAssistant {
		fmt.Fprintln(stdout, st.Messages[n-1].Content)
	}
	return nil
}

// chatView prints what changed between two session states.
type chatView struct {
	out io.Writer

	shown   int
	loading bool
	lastErr string
}

func (v *chatView) render(st chat.State) {
	if len(st.Messages) < v.shown {
		v.shown = 0
		fmt.Fprintln(v.out, console.Dim("Conversation cleared."))
	}

	if st.IsLoading && !v.loading {
		fmt.Fprintln(v.out, console.Dim("Thinking..."))
	}
	v.loading = st.IsLoading

	for _, m := range st.Messages[v.shown:] {
		if m.Role == chat.RoleAssistant {
			fmt.Fprintf(v.out, "%s %s\n", console.Cyan("assistant>"), m.Content)
		}
	}
	v.shown = len(st.Messages)

	if st.Error != "" && st.Error != v.lastErr {
		fmt.Fprintln(v.out, console.Red("Error: "+st.Error))
	}
	v.lastErr = st.Error
}

// runChat reads lines from in until EOF or /quit and feeds them to sess.
func runChat(ctx context.Context, in io.Reader, out io.Writer, sess *chat.Session) error {
	slog.Debug("chat started", "session", sess.ID())
	fmt.Fprintf(out, "%s %s\n", console.Cyan("assistant>"), chatWelcome)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pending []string
	prompt := func() {
		if len(pending) > 0 {
			fmt.Fprint(out, console.Dim("...> "))
			return
		}
		fmt.Fprint(out, console.Bold("you> "))
	}

	for prompt(); sc.Scan(); prompt() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Text()

		if rest, ok := strings.CutSuffix(line, `\`); ok {
			pending = append(pending, rest)
			continue
		}
		pending = append(pending, line)
		text := strings.Join(pending, "\n")
		pending = pending[:0]

		switch strings.TrimSpace(text) {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			sess.ClearChat()
			continue
		}

		sess.SetInput(text)
		sess.HandleKey(ctx, chat.KeyEvent{Key: chat.KeyEnter})
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}
