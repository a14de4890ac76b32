package main

import (
	"fmt"
	"strings"

	"github.com/BaSui01/sapaicore/llm"
	"github.com/BaSui01/sapaicore/llm/providers/sapai"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type chatFlags struct {
	model       string
	system      string
	temperature float64
	maxTokens   int
	stream      bool
}

func newChatCmd(c *cli) *cobra.Command {
	f := &chatFlags{}
	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Send one chat completion through the orchestration service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options()
			if err != nil {
				return err
			}
			provider, err := sapai.New(cmd.Context(), opts)
			if err != nil {
				return err
			}

			settings := llm.CallSettings{}
			params := llm.ModelParams{}
			if cmd.Flags().Changed("temperature") {
				params["temperature"] = f.temperature
			}
			if cmd.Flags().Changed("max-tokens") {
				params["max_tokens"] = f.maxTokens
			}
			if len(params) > 0 {
				settings.ModelParams = params
			}

			model, err := provider.Model(f.model, settings)
			if err != nil {
				return err
			}
			req := &llm.ChatRequest{Messages: f.messages(strings.Join(args, " "))}

			if f.stream {
				return c.streamChat(cmd, model, req)
			}
			resp, err := model.Completion(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, choice := range resp.Choices {
				fmt.Fprintln(c.out, choice.Message.Content)
			}
			c.logger.Debug("chat completed",
				zap.String("request_id", resp.RequestID),
				zap.String("model", resp.Model),
			)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.model, "model", "m", "gpt-4o", "model name")
	flags.StringVar(&f.system, "system", "", "system prompt")
	flags.Float64Var(&f.temperature, "temperature", 0, "sampling temperature")
	flags.IntVar(&f.maxTokens, "max-tokens", 0, "maximum completion tokens")
	flags.BoolVar(&f.stream, "stream", false, "stream the response")
	return cmd
}

func (f *chatFlags) messages(prompt string) []llm.Message {
	msgs := make([]llm.Message, 0, 2)
	if f.system != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: f.system})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: prompt})
}

func (c *cli) streamChat(cmd *cobra.Command, model llm.ChatModel, req *llm.ChatRequest) error {
	ch, err := model.Stream(cmd.Context(), req)
	if err != nil {
		return err
	}
	for chunk := range ch {
		if chunk.Err != nil {
			return chunk.Err
		}
		fmt.Fprint(c.out, chunk.Delta.Content)
	}
	fmt.Fprintln(c.out)
	return nil
}
