package llm

import (
	"fmt"
	"strings"
)

// CostTier 按成本与能力对 Provider 分档。路由从首选档开始、按固定升序
// 走完剩余档位，因此零值即最便宜档。
type CostTier int

const (
	TierFast CostTier = iota
	TierStandard
	TierPremium
)

// AllTiers 返回固定升序的全部档位。每次调用返回新切片，调用方可自由改动。
func AllTiers() []CostTier {
	return []CostTier{TierFast, TierStandard, TierPremium}
}

func (t CostTier) String() string {
	switch t {
	case TierFast:
		return "fast"
	case TierStandard:
		return "standard"
	case TierPremium:
		return "premium"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Valid 报告 t 是否为已声明的档位之一。
func (t CostTier) Valid() bool {
	return t >= TierFast && t <= TierPremium
}

// ParseTier 将配置字符串解析为 CostTier，大小写不敏感。
func ParseTier(s string) (CostTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast":
		return TierFast, nil
	case "standard":
		return TierStandard, nil
	case "premium":
		return TierPremium, nil
	default:
		return 0, fmt.Errorf("unknown cost tier: %q", s)
	}
}
