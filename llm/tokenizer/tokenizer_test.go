package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimatorCountTokens(t *testing.T) {
	e := NewEstimator("mystery-model", 0)

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "ascii", text: "hello world", want: 2},   // 11 runes / 4
		{name: "short ascii floors to one", text: "a", want: 1},
		{name: "cjk", text: "你好世界", want: 2},            // 4 runes / 1.5
		{name: "mixed", text: "hello 世界", want: 2},      // 6/4 + 2/1.5
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CountTokens(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimatorCJKHeavierThanASCII(t *testing.T) {
	e := NewEstimator("m", 0)

	// 同样 12 个字符，CJK 文本的 token 估算应显著更高。
	ascii, err := e.CountTokens("abcdefghijkl")
	require.NoError(t, err)
	cjk, err := e.CountTokens("一二三四五六七八九十百千")
	require.NoError(t, err)

	assert.Greater(t, cjk, ascii)
}

func TestEstimatorEncodeDecode(t *testing.T) {
	e := NewEstimator("m", 0)

	tokens, err := e.Encode("hello world, this is a sentence")
	require.NoError(t, err)

	count, err := e.CountTokens("hello world, this is a sentence")
	require.NoError(t, err)
	assert.Len(t, tokens, count)

	_, err = e.Decode(tokens)
	require.Error(t, err, "the estimator has no vocabulary to decode with")
}

func TestEstimatorMaxTokens(t *testing.T) {
	assert.Equal(t, 4096, NewEstimator("m", 0).MaxTokens())
	assert.Equal(t, 4096, NewEstimator("m", -5).MaxTokens())
	assert.Equal(t, 200000, NewEstimator("m", 200000).MaxTokens())
	assert.Equal(t, "estimator", NewEstimator("m", 0).Name())
}

func TestCountPrompt(t *testing.T) {
	e := NewEstimator("m", 0)

	t.Run("system and user", func(t *testing.T) {
		// "hello" → 1 token + 4 开销；"world" 同理；收尾 +3。
		got, err := CountPrompt(e, "hello", "world")
		require.NoError(t, err)
		assert.Equal(t, 13, got)
	})

	t.Run("empty system skipped", func(t *testing.T) {
		got, err := CountPrompt(e, "", "world")
		require.NoError(t, err)
		assert.Equal(t, 8, got)
	})

	t.Run("both empty", func(t *testing.T) {
		got, err := CountPrompt(e, "", "")
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})
}

func TestRegistryExactAndPrefixMatch(t *testing.T) {
	reg := NewEstimator("registry-family", 1234)
	RegisterTokenizer("registry-family", reg)

	t.Run("exact match", func(t *testing.T) {
		got, err := ForModel("registry-family")
		require.NoError(t, err)
		assert.Equal(t, 1234, got.MaxTokens())
	})

	t.Run("prefix match", func(t *testing.T) {
		got, err := ForModel("registry-family-32k-preview")
		require.NoError(t, err)
		assert.Equal(t, 1234, got.MaxTokens())
	})

	t.Run("no match", func(t *testing.T) {
		_, err := ForModel("never-registered-model")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no tokenizer registered")
	})
}

func TestForModelOrEstimatorFallback(t *testing.T) {
	got := ForModelOrEstimator("claude-unmapped-model")
	require.NotNil(t, got)
	assert.Equal(t, "estimator", got.Name())

	n, err := got.CountTokens("some text to count")
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}

func TestNewTiktokenEncodingSelection(t *testing.T) {
	// 只验证映射选择，不触发惰性初始化（首次编码可能联网下载数据）。
	tests := []struct {
		model        string
		wantName     string
		wantMaxToken int
	}{
		{model: "gpt-4o", wantName: "tiktoken[o200k_base]", wantMaxToken: 128000},
		{model: "gpt-4o-mini", wantName: "tiktoken[o200k_base]", wantMaxToken: 128000},
		{model: "gpt-4", wantName: "tiktoken[cl100k_base]", wantMaxToken: 8192},
		{model: "gpt-3.5-turbo", wantName: "tiktoken[cl100k_base]", wantMaxToken: 16385},
		// 前缀匹配：具体版本号落到同族编码
		{model: "gpt-4o-2024-08-06", wantName: "tiktoken[o200k_base]", wantMaxToken: 128000},
		// 未知模型回退 cl100k_base
		{model: "text-davinci-003", wantName: "tiktoken[cl100k_base]", wantMaxToken: 8192},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			tok := NewTiktoken(tt.model)
			assert.Equal(t, tt.wantName, tok.Name())
			assert.Equal(t, tt.wantMaxToken, tok.MaxTokens())
		})
	}
}
