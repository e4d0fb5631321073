package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"gemini-chat/chatclient"
	"gemini-chat/internal/logger"
	"gemini-chat/config"
)

var (
	baseURL  string
	logLevel string
	logFile  string
	username string
	password string
)

var rootCmd = &cobra.Command{
	Use:   "gemini-chat",
	Short: "Terminal client for the chat service",
	Long: `gemini-chat talks to the chat API server. Log in once, then start
an interactive session with "gemini-chat chat".`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := client.Register(cmd.Context(), username, password)
		if err != nil {
			return describeAuthError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered user %d\n", id)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session cookie",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Login(cmd.Context(), username, password); err != nil {
			return describeAuthError(err)
		}
		if err := saveSessionToken(client.SessionToken()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "logged in")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Logout(cmd.Context()); err != nil {
			return err
		}
		if err := clearSessionToken(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server health and login status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Health(cmd.Context()); err != nil {
			return fmt.Errorf("server is not running at %s: %w", baseURL, err)
		}
		loggedIn, err := client.LoggedIn(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "server: ok\nlogged in: %t\n", loggedIn)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [conversation-id]",
	Short: "List conversations, or print one conversation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		r := newTerminalRenderer(cmd.OutOrStdout())

		if len(args) == 0 {
			conversations, err := client.Conversations(cmd.Context())
			if err != nil {
				return describeAuthError(err)
			}
			r.ConversationList(conversations)
			return nil
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid conversation id %q", args[0])
		}
		messages, err := client.Messages(cmd.Context(), id)
		if err != nil {
			return describeAuthError(err)
		}
		for _, m := range messages {
			r.AppendEntry(chatclient.Entry{Role: m.Role, Content: m.Content})
		}
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return runREPL(cmd.Context(), client, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func main() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "server", "", "API server base URL [default: client.base_url from config.yaml]")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: logging.level]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")

	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVarP(&username, "username", "u", "", "username")
		c.Flags().StringVarP(&password, "password", "p", "", "password")
		_ = c.MarkFlagRequired("username")
		_ = c.MarkFlagRequired("password")
	}

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, statusCmd, historyCmd, chatCmd)
}

// setup 은 설정을 읽고 로그 출력을 화면과 분리한다.
func setup(_ *cobra.Command, _ []string) error {
	config.InitApp()
	cfg := config.GetConfig()

	if baseURL == "" {
		baseURL = cfg.Client.BaseURL
	}
	level := logLevel
	if level == "" {
		level = cfg.Logging.Level
	}

	var w io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w = f
	}
	logger.InitWithWriter(level, w)
	return nil
}

func newClient() (*chatclient.Client, error) {
	client, err := chatclient.NewClient(chatclient.ClientOptions{
		BaseURL:    baseURL,
		CookieName: config.GetConfig().Session.CookieName,
		Timeout:    2 * time.Minute,
	})
	if err != nil {
		return nil, err
	}
	token, err := loadSessionToken()
	if err != nil {
		logger.Log.Warnf("could not read stored session: %v", err)
	}
	client.SetSessionToken(token)
	return client, nil
}

func describeAuthError(err error) error {
	var httpErr *chatclient.HTTPError
	switch {
	case errors.Is(err, chatclient.ErrUnauthorized):
		return errors.New("not logged in or invalid credentials; run: gemini-chat login -u <name> -p <password>")
	case errors.As(err, &httpErr) && httpErr.Code != "":
		return fmt.Errorf("request failed: %s", httpErr.Code)
	default:
		return err
	}
}
