// Package config 提供 SAP AI Core Provider 与命令行工具的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → SAPAI_ 前缀环境变量 的顺序加载，
// 三者都没有给出 service key 时才读取 AICORE_SERVICE_KEY。
// SAPAIConfig.Options 将其转换为 sapai.Options。
package config
