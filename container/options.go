package container

import "reflect"

// Option 配置服务注册。
type Option func(*ServiceDefinition)

// WithScope 设置服务的生命周期范围。
func WithScope(scope ScopeType) Option {
	return func(d *ServiceDefinition) {
		d.Scope = scope
	}
}

// WithSingleton 将范围设置为 Singleton（默认）。
func WithSingleton() Option {
	return WithScope(ScopeSingleton)
}

// WithTransient 将范围设置为 Transient。
func WithTransient() Option {
	return WithScope(ScopeTransient)
}

// WithScoped 将范围设置为 Scoped。
func WithScoped() Option {
	return WithScope(ScopeScoped)
}

// WithValue 将已构建的实例注册为值，按原样返回。
func WithValue(v any) Option {
	return func(d *ServiceDefinition) {
		d.Impl = v
		d.IsValue = true
		d.Scope = ScopeSingleton
	}
}

// WithFactory 注册一个工厂函数来创建实例。工厂的参数会被按类型注入，
// context.Context 参数由调用族的 ctx 充当。
func WithFactory(fn any) Option {
	return func(d *ServiceDefinition) {
		d.Impl = fn
		d.IsFactory = true
	}
}

// Use 把本类型（通常是接口）绑定到实现类型 T：解析时转发到 T 的定义。
// T 自身必须另行注册。
func Use[T any]() Option {
	return func(d *ServiceDefinition) {
		d.Alias = reflect.TypeOf((*T)(nil)).Elem()
	}
}
