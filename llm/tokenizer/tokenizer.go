package tokenizer

import (
	"fmt"
	"sync"
)

// Tokenizer 是统一的 token 计数接口。
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数。
	CountTokens(text string) (int, error)

	// Encode 将文本转换为 token ID 列表。
	Encode(text string) ([]int, error)

	// Decode 将 token ID 转换回文本。
	Decode(tokens []int) (string, error)

	// MaxTokens 返回模型的最大上下文长度。
	MaxTokens() int

	// Name 返回分词器的名称。
	Name() string
}

// CountPrompt 统计一次补全请求的提示词 token 数。
// 请求由 system 与 user 两段组成，每段带角色标记与分隔符的固定开销。
func CountPrompt(t Tokenizer, system, user string) (int, error) {
	total := 0
	for _, segment := range []string{system, user} {
		if segment == "" {
			continue
		}
		n, err := t.CountTokens(segment)
		if err != nil {
			return 0, err
		}
		// 每段约 4 个 token 的结构开销
		total += n + 4
	}
	// 会话收尾开销
	return total + 3, nil
}

// 全局分词器注册表。
var (
	modelTokenizers   = make(map[string]Tokenizer)
	modelTokenizersMu sync.RWMutex
)

// RegisterTokenizer 为给定的模型名称注册分词器。
func RegisterTokenizer(model string, t Tokenizer) {
	modelTokenizersMu.Lock()
	defer modelTokenizersMu.Unlock()
	modelTokenizers[model] = t
}

// ForModel 返回给定模型注册的分词器，
// 支持前缀匹配（如注册 "gpt-4o" 可匹配 "gpt-4o-mini"），多个前缀命中时取最长。
func ForModel(model string) (Tokenizer, error) {
	modelTokenizersMu.RLock()
	defer modelTokenizersMu.RUnlock()

	if t, ok := modelTokenizers[model]; ok {
		return t, nil
	}

	var (
		best    string
		matched Tokenizer
	)
	for prefix, t := range modelTokenizers {
		if len(model) >= len(prefix) && model[:len(prefix)] == prefix && len(prefix) > len(best) {
			best = prefix
			matched = t
		}
	}
	if matched != nil {
		return matched, nil
	}

	return nil, fmt.Errorf("no tokenizer registered for model: %s", model)
}

// ForModelOrEstimator 返回该模型的注册分词器，
// 未注册时回退到通用估算器。
func ForModelOrEstimator(model string) Tokenizer {
	t, err := ForModel(model)
	if err != nil {
		return NewEstimator(model, 0)
	}
	return t
}
