package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/adapter/cache"
	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/service/auth"
	"github.com/seu-repo/vox-assistant/pkg/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token with the server's JWT settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		local := cache.NewLocalCache(time.Minute, zap.NewNop())
		defer local.Close()

		token, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenDuration, local, zap.NewNop()).
			GenerateAccessToken(user)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var sayCmd = &cobra.Command{
	Use:   "say <transcript>",
	Short: "Send an utterance to the assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		body, err := newAPIClient().post("/api/v1/voice/command", map[string]string{
			"session_id": session,
			"transcript": strings.Join(args, " "),
		})
		if err != nil {
			return err
		}
		return printVoiceResponse(cmd, body)
	},
}

var confirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Approve or decline the pending actions of a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		decline, _ := cmd.Flags().GetBool("decline")
		body, err := newAPIClient().post("/api/v1/voice/confirm", map[string]any{
			"session_id": session,
			"approved":   !decline,
		})
		if err != nil {
			return err
		}
		return printVoiceResponse(cmd, body)
	},
}

var executeCmd = &cobra.Command{
	Use:   "execute <intent>",
	Short: "Run a structured intent directly, skipping extraction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		raw, _ := cmd.Flags().GetStringArray("param")
		params, err := parseParams(raw)
		if err != nil {
			return err
		}
		body, err := newAPIClient().post("/api/v1/intents/execute", map[string]any{
			"session_id": session,
			"intent": domain.Intent{
				Kind:       domain.IntentKind(args[0]),
				Parameters: params,
			},
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pretty(body))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the actions recorded for a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		limit, _ := cmd.Flags().GetInt("limit")
		q := url.Values{}
		q.Set("session_id", session)
		q.Set("limit", strconv.Itoa(limit))
		body, err := newAPIClient().get("/api/v1/voice/history", q.Encode())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pretty(body))
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "user ID placed in the token subject")
	_ = tokenCmd.MarkFlagRequired("user")

	sayCmd.Flags().String("session", "", "session to continue (a new one is opened when empty)")

	confirmCmd.Flags().String("session", "", "session holding the pending actions")
	confirmCmd.Flags().Bool("decline", false, "discard the pending actions instead of running them")
	_ = confirmCmd.MarkFlagRequired("session")

	executeCmd.Flags().String("session", "", "session to record the action under")
	executeCmd.Flags().StringArray("param", nil, "intent parameter as key=value (repeatable)")

	historyCmd.Flags().String("session", "", "session to list")
	historyCmd.Flags().Int("limit", 10, "maximum number of actions")
	_ = historyCmd.MarkFlagRequired("session")
}

// parseParams turns key=value pairs into intent parameters. Values that
// parse as JSON (numbers, booleans, arrays) keep their type.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			params[key] = decoded
		} else {
			params[key] = value
		}
	}
	return params, nil
}

func printVoiceResponse(cmd *cobra.Command, body []byte) error {
	var resp domain.VoiceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "session: %s\n", resp.SessionID)
	fmt.Fprintln(out, resp.Text)
	if resp.RequiresConfirmation {
		fmt.Fprintf(out, "(run `voicectl confirm --session %s` to proceed)\n", resp.SessionID)
	}
	return nil
}
