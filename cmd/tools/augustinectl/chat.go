package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	chatServer  string
	chatMode    string
	chatPersona string
	chatSession string
)

// chatClient talks to /api/v1/chat and carries the session id between turns.
type chatClient struct {
	baseURL   string
	mode      string
	persona   string
	sessionID string
	http      *http.Client
}

type chatTurnRequest struct {
	Question  string  `json:"question"`
	Mode      string  `json:"mode,omitempty"`
	Persona   string  `json:"persona,omitempty"`
	SessionID *string `json:"session_id"`
}

type chatTurnResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

func (c *chatClient) send(ctx context.Context, question string) (string, error) {
	req := chatTurnRequest{Question: question, Mode: c.mode, Persona: c.persona}
	if c.sessionID != "" {
		req.SessionID = &c.sessionID
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.baseURL, "/")+"/api/v1/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		var e errorBody
		if json.Unmarshal(raw, &e) == nil && e.Detail != "" {
			return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Detail)
		}
		return "", fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var out chatTurnResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.SessionID != "" {
		c.sessionID = out.SessionID
	}
	return out.Response, nil
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a running Augustine server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &chatClient{
			baseURL:   chatServer,
			mode:      chatMode,
			persona:   chatPersona,
			sessionID: chatSession,
			http:      &http.Client{Timeout: 2 * time.Minute},
		}
		return runChat(cmd.Context(), client, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runChat(ctx context.Context, client *chatClient, in io.Reader, out io.Writer) error {
	you := color.New(color.FgGreen, color.Bold).SprintFunc()
	bot := color.New(color.FgCyan, color.Bold).SprintFunc()
	warn := color.New(color.FgRed).SprintFunc()

	fmt.Fprintln(out, bot("Augustine"), "at", client.baseURL)
	fmt.Fprintln(out, "Type your question and press Enter. Type 'exit' to quit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, you("You: "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := client.send(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(out, warn("error:"), err)
			continue
		}
		fmt.Fprintf(out, "%s %s\n\n", bot("Augustine:"), reply)
	}

	if client.sessionID != "" {
		fmt.Fprintf(out, "session: %s\n", client.sessionID)
	}
	return scanner.Err()
}

func init() {
	chatCmd.Flags().StringVar(&chatServer, "server", "http://localhost:8080", "server base URL")
	chatCmd.Flags().StringVar(&chatMode, "mode", "", "reference or conversation")
	chatCmd.Flags().StringVar(&chatPersona, "persona", "", "persona id")
	chatCmd.Flags().StringVar(&chatSession, "session", "", "resume an existing session id")
	rootCmd.AddCommand(chatCmd)
}
