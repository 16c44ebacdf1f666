package forwarder

// UsagePayload 投递给 webhook 的出站记录
// 每个事件现场构造一次，投递后即丢弃，本地不落任何状态。
type UsagePayload struct {
	UserID                string      `json:"userId"`
	AgentID               *string     `json:"agentId"`
	PromptTokens          int         `json:"promptTokens"`
	CompletionTokens      int         `json:"completionTokens"`
	TotalTokens           int         `json:"totalTokens"`
	Model                 string      `json:"model"`
	CostUSD               float64     `json:"costUsd"`
	ResponseTimeMs        int64       `json:"responseTimeMs"`
	RequestType           RequestType `json:"requestType"`
	PlatformTokensCharged float64     `json:"platformTokensCharged"`
	IsTest                bool        `json:"isTest"`
}

// 平台 token 折算常数：1 USD = 1000 平台 token，外加 2 倍加价
const (
	markupMultiplier = 2.0
	tokensPerUSD     = 1000
)

// platformTokens 按成本折算应扣的平台 token
// totalTokens 目前不参与计算，保留参数以兼容既有调用约定。
// TODO: 与计费侧确认 totalTokens 是否本应参与折算
func platformTokens(totalTokens int, costUSD float64) float64 {
	return costUSD * markupMultiplier * tokensPerUSD
}
