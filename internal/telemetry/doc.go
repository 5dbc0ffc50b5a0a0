// Package telemetry 负责把 OTel SDK 装进进程全局：OTLP gRPC 导出器、
// 资源属性与采样策略都在这里集中装配，llm 各包只面向 otel 全局接口。
// 未启用遥测时不建导出器，进程保持 noop。
package telemetry
