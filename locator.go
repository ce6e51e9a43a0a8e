package inject

import (
	"reflect"
	"sync"
)

// Registration 是定位器里的一条不可变记录：为 Service 提供 Impl，
// 可选地限定在某个 Resource 类型与某个 Location 路径下。
// Resource 与 Location 都为空的记录是"默认实现"。
type Registration struct {
	Service  reflect.Type
	Impl     any // reflect.Type（递归构造）、函数（递归调用）或预构建实例
	Resource reflect.Type
	Location Location
}

// ServiceLocator 是一个不可变的多实现注册表。
//
// 注册序列按注册时间新到旧排列（LIFO），Register 永远返回携带新记录的
// 新实例并清空缓存——旧实例继续有效，谁被注册进 Store 谁就是"现行"的。
//
// 查询缓存是整个引擎唯一的共享可变状态。它可以在并发解析之间无锁共享：
// 同一个 key 基于同一份不可变注册序列重算必然得到同一结果，并发写彼此
// 幂等，后写覆盖先写无害。这是刻意的 lock-free racy-but-safe 设计，
// 不要给它加锁。
type ServiceLocator struct {
	registrations []Registration
	cache         *sync.Map // implKey -> any（未命中存 noMatch 哨兵）
}

// NewLocator 创建空定位器。
func NewLocator() *ServiceLocator {
	return &ServiceLocator{cache: &sync.Map{}}
}

// RegisterOption 配置一条注册记录。
type RegisterOption func(*Registration)

// WithResource 把注册限定在资源类型 R 下。
// R 应与 Store 中 Resource 值的动态类型一致（通常是结构体指针）。
func WithResource[R any]() RegisterOption {
	return func(r *Registration) {
		r.Resource = reflect.TypeOf((*R)(nil)).Elem()
	}
}

// WithResourceType 是 WithResource 的非泛型形式。
func WithResourceType(t reflect.Type) RegisterOption {
	return func(r *Registration) { r.Resource = t }
}

// WithLocation 把注册限定在路径 loc 及其后代下。
func WithLocation(loc Location) RegisterOption {
	return func(r *Registration) { r.Location = loc }
}

// Register 返回一个前插了新记录的新定位器，不修改接收者。
// 新定位器的缓存是空的：新记录可能改变任何既有查询的评分结果。
func (l *ServiceLocator) Register(service reflect.Type, impl any, opts ...RegisterOption) *ServiceLocator {
	reg := Registration{Service: service, Impl: impl}
	for _, opt := range opts {
		opt(&reg)
	}

	regs := make([]Registration, 0, len(l.registrations)+1)
	regs = append(regs, reg)
	regs = append(regs, l.registrations...)

	return &ServiceLocator{registrations: regs, cache: &sync.Map{}}
}

// RegisterFor 是 Register 的泛型形式，服务类型为 S。
func RegisterFor[S any](l *ServiceLocator, impl any, opts ...RegisterOption) *ServiceLocator {
	return l.Register(reflect.TypeOf((*S)(nil)).Elem(), impl, opts...)
}

// ImplementationFor 是 Implementation 的泛型形式，服务类型为 S。
func ImplementationFor[S any](l *ServiceLocator, resource reflect.Type, at Location) (any, bool) {
	return l.Implementation(reflect.TypeOf((*S)(nil)).Elem(), resource, at)
}

// Len 返回注册条数。
func (l *ServiceLocator) Len() int { return len(l.registrations) }

// implKey 是缓存键：同一(服务, 资源, 路径)组合的查询结果恒定。
type implKey struct {
	service  reflect.Type
	resource reflect.Type
	location Location
}

// noMatch 是缓存中的未命中哨兵。
type noMatch struct{}

// Implementation 返回服务在(资源, 路径)上下文中评分最高的实现。
//
// 评分规则（资源轴）：资源类型完全一致计 2 分；记录不限定资源计 0 分
// 作为默认兜底；请求的资源类型可赋给记录限定的资源类型（父类/接口）
// 计 1 分；限定了资源但与请求无关计 -1 分，淘汰。路径轴：不限定计 0 分，
// 前缀包含按段数计分（越具体越高），不包含淘汰。两轴合成按字典序：
// 先比资源分，再比路径分；任一轴为负即淘汰。资源完全一致且路径也
// 完全一致时不可能再被超越，扫描立即短路。
//
// 记录按新到旧扫描，同分首见者胜——也就是最近注册的一条。
// 没有匹配不是错误，返回 (nil, false) 交由调用方决定。
func (l *ServiceLocator) Implementation(service reflect.Type, resource reflect.Type, location Location) (any, bool) {
	key := implKey{service: service, resource: resource, location: location}
	if v, ok := l.cache.Load(key); ok {
		if _, miss := v.(noMatch); miss {
			return nil, false
		}
		return v, true
	}

	best := -1
	bestRes, bestLoc := -1, -1

	for i := range l.registrations {
		r := &l.registrations[i]
		if r.Service != service {
			continue
		}

		rs := scoreResource(r.Resource, resource)
		if rs < 0 {
			continue
		}
		ls := scoreLocation(r.Location, location)
		if ls < 0 {
			continue
		}

		if rs > bestRes || (rs == bestRes && ls > bestLoc) {
			best, bestRes, bestLoc = i, rs, ls
		}

		if rs == 2 && r.Location == location {
			break // 双轴精确命中，不可能更好
		}
	}

	if best < 0 {
		l.cache.Store(key, noMatch{})
		return nil, false
	}

	impl := l.registrations[best].Impl
	l.cache.Store(key, impl)
	return impl, true
}

// scoreResource 给记录的资源约束打分。
func scoreResource(entry, requested reflect.Type) int {
	if entry == nil {
		return 0
	}
	if requested == nil {
		return -1
	}
	if entry == requested {
		return 2
	}
	if requested.AssignableTo(entry) {
		return 1
	}
	return -1
}

// scoreLocation 给记录的路径约束打分。
func scoreLocation(entry, requested Location) int {
	if entry == "" {
		return 0
	}
	if requested == "" || !entry.Contains(requested) {
		return -1
	}
	return entry.depth()
}
