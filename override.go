package inject

// NewOverriding 创建覆盖注入器：显式参数对每个字段——包括注入字段——
// 拥有最高优先级，甚至高于 Store 中的注册。其余层级同基础策略。
//
// 参数名依旧逐一校验，拼写错误在访问 Store 之前就会报 UnknownArgError；
// 唯一的豁免是 WithChildrenArg 显式放行的 Children。
func NewOverriding(store Store, opts ...Option) *Injector {
	return newInjector(store, policyOverriding, opts)
}
