// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供模块全局共享的类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包。目前只承载统一的错误体系，
供 llm、sapai、config 等上层包共享，避免循环依赖。

# 错误体系

  - ErrConfiguration  — 配置错误：Service Key JSON 非法、缺少 SAP_AI_TOKEN 等
  - ErrAuthentication — OAuth token 端点返回非 2xx，携带状态码、状态文本与响应体
  - ErrInvalidUsage   — API 误用，例如在未经构造函数创建的 Provider 上调用方法

# 主要能力

  - 构造：NewConfigurationError / NewAuthenticationError / NewInvalidUsageError
  - 链式设置：WithCause / WithHTTPStatus / WithRetryable
  - 判定：IsConfigurationError / IsAuthenticationError / IsInvalidUsageError
    均基于 errors.As，可穿透 fmt.Errorf("%w") 包装
*/
package types
