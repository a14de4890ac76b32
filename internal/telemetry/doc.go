// Package telemetry 封装 OpenTelemetry SDK 初始化逻辑，
// 为 sapai 命令行工具安装 OTLP gRPC 的 TracerProvider 和 MeterProvider。
// 当遥测功能禁用时保持 noop 实现，不连接任何外部服务。
package telemetry
