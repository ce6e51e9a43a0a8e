package inject

import "strings"

// Resource 是实现选择的资源标记。宿主把"当前资源"注册到 Store 的
// Resource 接口键下（任何值都满足空接口），上下文注入器取出它的
// 动态类型参与定位器评分。
type Resource interface{}

// Location 是实现选择的层级路径，形如 "shop/checkout/payment"。
// 注册在路径 L 上的实现对 L 及其全部后代路径可见，越长的匹配前缀
// 越具体。空 Location 表示不受路径约束。
type Location string

// Contains 报告 other 是否等于 l 或位于 l 之下。
func (l Location) Contains(other Location) bool {
	if l == other {
		return true
	}
	return strings.HasPrefix(string(other), string(l)+"/")
}

// depth 返回路径段数，作为特异性评分。
func (l Location) depth() int {
	if l == "" {
		return 0
	}
	return strings.Count(string(l), "/") + 1
}
