// Package tlsutil 提供集中式 TLS 配置与 HTTP 传输，
// 供 OAuth token 交换与 orchestration 请求使用（TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
