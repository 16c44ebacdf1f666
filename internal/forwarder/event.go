package forwarder

import "encoding/json"

// RequestParams 宿主在每次请求生命周期结束时传入的参数集合
// Metadata 为调用方附加的任意键值对（metadata bag），转发器只读不持有。
type RequestParams struct {
	Model        string
	User         string
	ResponseCost float64
	Metadata     map[string]any
}

// Usage 一次 LLM 补全的 token 统计
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response 宿主提供的补全响应
// 不同宿主版本给出的 usage 形态不同：结构化对象或原始 map，
// 两个字段至多设置其一，由 usageFromResponse 统一归一化。
type Response struct {
	Usage    *Usage
	RawUsage map[string]any
}

// usageFromResponse 归一化两种 usage 形态
// 返回 false 表示响应中没有任何用量信息，该请求不上报。
func usageFromResponse(resp *Response) (Usage, bool) {
	if resp == nil {
		return Usage{}, false
	}
	if resp.Usage != nil {
		return *resp.Usage, true
	}
	if len(resp.RawUsage) == 0 {
		return Usage{}, false
	}
	return Usage{
		PromptTokens:     intFromAny(resp.RawUsage["prompt_tokens"]),
		CompletionTokens: intFromAny(resp.RawUsage["completion_tokens"]),
		TotalTokens:      intFromAny(resp.RawUsage["total_tokens"]),
	}, true
}

// intFromAny 宽松解析 map 形态里的计数值，无法识别时取 0
func intFromAny(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		// decoder 开启 UseNumber 时计数以 json.Number 到达
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}
