// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
sapai 是 SAP AI Core Provider 的命令行工具。

# 子命令

  - token: 解析凭据，输出认证方式、脱敏后的 token 与过期时间
  - endpoint: 输出 base URL、completion 地址、部署 ID 与资源组
  - chat: 通过 orchestration 服务发起一次聊天（支持 --stream）
  - version: 输出版本信息

# 全局参数

--config 指定 YAML 配置文件，--log-level 与 --log-format 覆盖日志配置，
--deployment 与 --resource-group 覆盖部署设置。
*/
package main
