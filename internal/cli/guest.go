package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newSignInCmd() *cobra.Command {
	var name, nickname, confirmID string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in by name, creating a guest on first visit",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if confirmID != "" {
				return confirmSuggestion(out, confirmID, nickname)
			}

			if name == "" {
				return fmt.Errorf("--name is required")
			}

			req := map[string]string{"name": name}
			if nickname != "" {
				req["nickname"] = nickname
			}

			var result SignInResult
			err := client.Post("/api/v1/guests/signin", req, &result)

			// An ambiguous name comes back with candidate guests to pick from
			var reqErr *RequestError
			if errors.As(err, &reqErr) && reqErr.Response.Error.Code == "AMBIGUOUS_NAME" {
				printSuggestions(reqErr.Response.Suggestions)
				fmt.Println("Or retry with a more complete name.")
				return nil
			}
			if err != nil {
				return err
			}

			if err := cfg.SaveGuestID(result.Guest.ID); err != nil {
				return fmt.Errorf("failed to save guest id: %w", err)
			}

			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your name as the other guests know it")
	cmd.Flags().StringVar(&nickname, "nickname", "", "Optional nickname")
	cmd.Flags().StringVar(&confirmID, "confirm", "", "Confirm a suggested guest id instead of signing in by name")

	return cmd
}

func confirmSuggestion(out *Output, guestID, nickname string) error {
	req := map[string]string{"guest_id": guestID}
	if nickname != "" {
		req["nickname"] = nickname
	}

	var result SignInResult
	if err := client.Post("/api/v1/guests/confirm", req, &result); err != nil {
		return err
	}

	if err := cfg.SaveGuestID(result.Guest.ID); err != nil {
		return fmt.Errorf("failed to save guest id: %w", err)
	}

	out.Print(result)
	return nil
}

func newGuestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Guest directory commands",
	}

	cmd.AddCommand(newGuestListCmd())
	cmd.AddCommand(newGuestElevateCmd())
	cmd.AddCommand(newGuestRecountCmd())

	return cmd
}

func newGuestListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all guests",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Guest

			if err := client.Get("/api/v1/guests", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGuestElevateCmd() *cobra.Command {
	var code, role string

	cmd := &cobra.Command{
		Use:   "elevate",
		Short: "Elevate your role with an access code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if code == "" {
				return fmt.Errorf("--code is required")
			}

			req := map[string]string{
				"access_code": code,
				"role":        role,
			}
			var result Guest

			if err := client.Post("/api/v1/guests/me/role", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Access code (required)")
	cmd.Flags().StringVar(&role, "role", "host", "Role to request: host, authorized")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

func newGuestRecountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recount <guest-id>",
		Short: "Recalculate a guest's photo count from the feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PhotoCountResult

			if err := client.Post("/api/v1/guests/"+args[0]+"/recount", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
