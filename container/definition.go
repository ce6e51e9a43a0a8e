// Package container 提供 inject.Store 契约的参考实现：一个按类型注册、
// 带生命周期管理的实例容器。
//
// 容器负责实例的所有权与缓存（单例、瞬态、作用域），注入引擎只通过
// Store 接口读取它。注册在 Build 之前完成，Build 会校验依赖图并按
// 拓扑顺序急切初始化单例，此后定义不可变，读取无需加锁。
package container

import (
	"reflect"
	"sync"
)

// ScopeType 定义了服务的生命周期。
type ScopeType int

const (
	// ScopeSingleton 每个容器创建一个实例。
	ScopeSingleton ScopeType = iota
	// ScopeTransient 每次请求创建一个新实例。
	ScopeTransient
	// ScopeScoped 每个作用域创建一个实例。
	ScopeScoped
)

// ServiceDefinition 包含注册服务的元数据。
type ServiceDefinition struct {
	// ID 在 Build 时分配，作用域用它做 O(1) 数组索引。
	ID   int
	Type reflect.Type

	Scope ScopeType

	// Impl 是预构建的值（IsValue）或工厂函数（IsFactory）。
	Impl      any
	IsValue   bool
	IsFactory bool

	// Alias 非空时本定义是别名：解析转发到 Alias 类型的定义。
	// 用于把接口绑定到具体实现（Use[Impl]）。
	Alias reflect.Type

	// 用于单例作用域
	singletonInst any
	singletonErr  error
	singletonOnce sync.Once
}
