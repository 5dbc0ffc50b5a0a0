/*
包 llm 提供按成本档位路由的大语言模型接入层。

# 概述

本包屏蔽不同模型服务商在鉴权、错误语义和流式协议上的差异，
对上层暴露一致的请求与响应模型。三个成本档位（fast、standard、
premium）各绑定一个 Provider，路由器按确定性回退链依次尝试。

# 核心接口

  - [Provider]：厂商客户端接口，提供 Complete / HealthCheck /
    Name / Capabilities
  - [StreamingProvider]：在 Provider 之上增加 Stream

# 核心类型

  - [CostTier]：成本档位枚举，fast < standard < premium
  - [CompletionRequest] / [Completion]：补全请求与响应
  - [StreamChunk]：流式输出分片
  - [Error]：带错误码、HTTP 状态与可重试标记的统一错误
  - [RouteError]：回退链耗尽时按链序聚合的错误
  - [TierRegistry]：档位到 Provider 的并发安全注册表
  - [Router]：回退链路由器

# 职责边界

路由器只做故障转移，从不重试：单个厂商内部的瞬时故障恢复
（429/5xx 退避、网络抖动）由各 Provider 自带的重试引擎负责。
到达路由器的错误都已是该厂商的终态结论。

# 相关子包

  - llm/providers：各厂商适配实现（groq、openai、anthropic）。
  - llm/retry：有界重试与退避引擎。
  - llm/sse：SSE 流式解码器。
  - llm/factory：配置驱动的注册表与路由器构建。
  - llm/observability：OpenTelemetry 指标与追踪。
  - llm/tokenizer：Token 计数与估算。
*/
package llm
