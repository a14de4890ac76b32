// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 providers 提供跨 Provider 的通用辅助能力，是具体 Provider 实现
（目前为 sapai 子包）的公共基础层。

# 核心类型

  - OpenAICompat* 系列 — OpenAI 兼容的消息/选项/用量/响应结构体，
    SAP orchestration 的模板消息与 orchestration_result 复用这一格式

# 核心函数

  - MapHTTPError — 将 HTTP 状态码映射为语义化的 llm.Error（含 Retryable 标记）
  - ReadErrorMessage — 解析上游错误响应体，兼容嵌套与顶层 message
  - ConvertMessagesToOpenAI / ToLLMChatResponse — 消息与响应格式转换
  - ApplyHeaders / SafeCloseBody — HTTP 辅助
*/
package providers
