package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gemini-chat/chatclient"
	"gemini-chat/config"
)

const replHelp = `commands:
  /new          start a new conversation
  /retry        send the last message again
  /history      list your conversations
  /open <id>    load a conversation
  /quit         exit`

// runREPL 은 표준 입력에서 한 줄씩 읽어 Controller 로 넘긴다.
func runREPL(ctx context.Context, client *chatclient.Client, in io.Reader, out io.Writer) error {
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("server is not running at %s: %w", baseURL, err)
	}
	loggedIn, err := client.LoggedIn(ctx)
	if err != nil {
		return err
	}
	if !loggedIn {
		return describeAuthError(chatclient.ErrUnauthorized)
	}

	renderer := newTerminalRenderer(out)
	ctrl := chatclient.NewController(client, renderer, chatclient.ControllerOptions{
		Greeting: config.GetConfig().Client.Greeting,
	})
	defer ctrl.Close()

	renderer.onConversationsChanged = func() {
		if conversations, err := ctrl.Conversations(ctx); err == nil {
			renderer.ConversationList(conversations)
		}
	}

	ctrl.Clear()
	fmt.Fprintln(out, replHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/help":
			fmt.Fprintln(out, replHelp)
		case line == "/new":
			ctrl.Clear()
		case line == "/retry":
			if err := ctrl.Retry(ctx); errors.Is(err, chatclient.ErrNothingToRetry) {
				renderer.ShowError("nothing to retry")
			}
		case line == "/history":
			conversations, err := ctrl.Conversations(ctx)
			if err != nil {
				renderer.ShowError(describeAuthError(err).Error())
				continue
			}
			renderer.ConversationList(conversations)
		case strings.HasPrefix(line, "/open"):
			id, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "/open")), 10, 64)
			if err != nil {
				renderer.ShowError("usage: /open <id>")
				continue
			}
			// 실패는 Controller 가 로그로 남기고 현재 대화를 그대로 둔다.
			_ = ctrl.LoadConversation(ctx, id)
		case strings.HasPrefix(line, "/"):
			renderer.ShowError("unknown command; type /help")
		default:
			// 결과는 renderer 가 화면에 그린다.
			_ = ctrl.Send(ctx, line)
		}
	}
}
