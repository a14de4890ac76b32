package main

import (
	"fmt"
	"time"

	"github.com/BaSui01/sapaicore/llm/providers/sapai"
	"github.com/spf13/cobra"
)

func newTokenCmd(c *cli) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Resolve credentials and show where the token came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := c.options()
			if err != nil {
				return err
			}
			creds, err := sapai.ResolveCredentials(cmd.Context(), opts)
			if err != nil {
				return err
			}

			token := redact(creds.Token)
			if raw {
				token = creds.Token
			}
			fmt.Fprintf(c.out, "Auth mode:  %s\n", creds.Mode)
			fmt.Fprintf(c.out, "Token:      %s\n", token)
			if creds.ExpiresAt.IsZero() {
				fmt.Fprintln(c.out, "Expires at: unknown")
			} else {
				fmt.Fprintf(c.out, "Expires at: %s\n", creds.ExpiresAt.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the token without redaction")
	return cmd
}

// redact 保留首尾各 4 个字符
func redact(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
