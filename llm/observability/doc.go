/*
包 observability 提供路由层的可观测性能力，基于 OpenTelemetry 标准。

从路由发起到响应结束，自动记录请求总量、降级事件、延迟分布与
Token 消耗，并在 llm.route Span 上标注命中的档位与 Provider。

核心类型是 [Metrics]：基于 OpenTelemetry Meter 的指标收集器。
其全部方法对 nil 接收者安全，因此未配置遥测的调用方无需判空。
*/
package observability
