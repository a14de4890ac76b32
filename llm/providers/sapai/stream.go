package sapai

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/BaSui01/sapaicore/llm"
)

// 流式事件：每个 data 行携带一段 orchestration_result 增量
type streamEvent struct {
	RequestID           string `json:"request_id"`
	OrchestrationResult struct {
		ID      string `json:"id"`
		Model   string `json:"model"`
		Choices []struct {
			Index        int    `json:"index"`
			FinishReason string `json:"finish_reason"`
			Delta        struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
		Usage *llm.ChatUsage `json:"usage,omitempty"`
	} `json:"orchestration_result"`
}

// streamSSE 解析 SSE 响应直到 [DONE]、EOF 或 ctx 结束；退出时关闭 body 并调用 cancel。
func streamSSE(ctx context.Context, cancel context.CancelFunc, body io.ReadCloser, providerName, modelID string) <-chan llm.StreamChunk {
	ch := make(chan llm.StreamChunk)
	go func() {
		defer cancel()
		defer body.Close()
		defer close(ch)

		emit := func(chunk llm.StreamChunk) bool {
			select {
			case <-ctx.Done():
				return false
			case ch <- chunk:
				return true
			}
		}
		fail := func(err error) {
			emit(llm.StreamChunk{Provider: providerName, Model: modelID, Err: &llm.Error{
				Code: llm.ErrUpstreamError, Message: err.Error(),
				HTTPStatus: http.StatusBadGateway, Retryable: true, Provider: providerName,
			}})
		}

		reader := bufio.NewReader(body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil && (err != io.EOF || line == "") {
				if err != io.EOF {
					fail(err)
				}
				return
			}
			line = strings.TrimSpace(line)
			if line == "" || !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}

			var ev streamEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				fail(err)
				return
			}

			res := ev.OrchestrationResult
			model := res.Model
			if model == "" {
				model = modelID
			}
			// 只带 usage 的收尾事件
			if len(res.Choices) == 0 && res.Usage != nil {
				if !emit(llm.StreamChunk{ID: res.ID, Provider: providerName, Model: model, Usage: res.Usage}) {
					return
				}
				continue
			}
			for i, choice := range res.Choices {
				chunk := llm.StreamChunk{
					ID:           res.ID,
					Provider:     providerName,
					Model:        model,
					Index:        choice.Index,
					FinishReason: choice.FinishReason,
					Delta: llm.Message{
						Role:    llm.RoleAssistant,
						Content: choice.Delta.Content,
					},
				}
				if i == len(res.Choices)-1 {
					chunk.Usage = res.Usage
				}
				if !emit(chunk) {
					return
				}
			}
		}
	}()
	return ch
}
