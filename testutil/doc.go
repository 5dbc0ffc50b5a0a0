// Package testutil 提供 Momentum 测试的共享工具。
//
// 包含可编排的 MockProvider（固定响应、错误注入、调用计数、延迟模拟）、
// 流式场景用的 MockStreamingProvider、基于 httptest 的 SSE 测试服务器，
// 以及上下文与流式收集辅助函数。
package testutil
