package main

import (
	"fmt"

	"github.com/BaSui01/sapaicore/llm/providers/sapai"
	"github.com/spf13/cobra"
)

func newEndpointCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoint",
		Short: "Show the resolved orchestration completion endpoint",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			opts, err := c.options()
			if err != nil {
				return err
			}

			// 只需要 AI_API_URL，不做 token 交换
			var key *sapai.ServiceKey
			if opts.ServiceKey != "" {
				if key, err = sapai.ParseServiceKey(opts.ServiceKey); err != nil {
					return err
				}
			}

			ep := sapai.ResolveEndpoint(opts, key)
			fmt.Fprintf(c.out, "Base URL:       %s\n", ep.BaseURL)
			fmt.Fprintf(c.out, "Completion URL: %s\n", ep.CompletionURL)
			fmt.Fprintf(c.out, "Deployment:     %s\n", ep.DeploymentID)
			fmt.Fprintf(c.out, "Resource group: %s\n", ep.ResourceGroup)
			return nil
		},
	}
}
