// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 llm 定义模型接入层的公共契约：模型句柄、请求上下文与调用设置。

# 概述

具体 Provider（见 llm/providers/sapai）负责解析凭据与端点，
得到一个 [RequestContext]，再通过 [ChatModelConstructor] 产出
[ChatModel] 句柄。上层只依赖本包中的类型，不感知凭据来源。

# 核心类型

  - [ChatModel]：模型句柄，提供 Completion / Stream / Name / ModelID
  - [ChatModelConstructor]：(modelID, settings, requestContext) → ChatModel
  - [RequestContext]：completion 地址、header 生成函数、可选传输覆盖
  - [Doer]：最小 HTTP 传输接口
  - [CallSettings] / [ModelParams]：调用设置与模型参数
  - [ChatRequest] / [ChatResponse] / [StreamChunk]：聊天请求与响应
  - [Error]：上游错误，带错误码、HTTP 状态与可重试标记

# 设置合并

[MergeSettings] 是纯函数：顶层字段 override 优先；ModelParams
作为独立映射做浅合并，同名键 override 优先。Provider 级默认设置
与单次调用设置都通过它合并。
*/
package llm
