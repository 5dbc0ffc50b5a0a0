// Package tokenizer 提供统一的 Token 计数接口，
// 支持 tiktoken 精确计数与 CJK 估算器，用于请求的 Token 预算与用量回填。
package tokenizer
