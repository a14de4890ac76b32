// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的 Provider 指标采集。

# 概述

Collector 通过 promauto.With 注册到调用方给定的 Registerer，
所有指标按 namespace 隔离。Collector 满足 sapai.MetricsRecorder。

# 指标

  - token_exchanges_total{outcome}：OAuth client-credentials 交换次数，
    outcome 为 success/rejected/error。
  - token_exchange_duration_seconds：交换耗时。
  - models_created_total{model}：模型句柄创建次数。
  - chat_requests_total{model,status} 与 chat_request_duration_seconds{model}：
    聊天请求次数与耗时，传输失败时 status 为 error。
*/
package metrics
