package container

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/gocrud/inject"
)

// Container 是容器的接口。使用 New 创建实例。
// 它实现 inject.Store，可以直接交给注入引擎。
type Container interface {
	// Add 注册服务定义。Build 之后调用会失败。
	Add(def *ServiceDefinition) error

	// Build 校验依赖图（检测缺失与环）并急切初始化单例。
	Build() error

	// Get 检索请求类型的实例。
	Get(typ reflect.Type) (any, error)

	// GetContext 是 Get 的 context 变体，ctx 会传给接受它的工厂。
	GetContext(ctx context.Context, typ reflect.Type) (any, error)

	// GetInterface 按接口类型检索实例：先查直接注册，再在具体注册里
	// 找唯一可赋值的实现。
	GetInterface(typ reflect.Type) (any, error)

	// GetInterfaceContext 是 GetInterface 的 context 变体。
	GetInterfaceContext(ctx context.Context, typ reflect.Type) (any, error)

	// CreateScope 为作用域实例创建一个新作用域。
	CreateScope() Scope

	// serviceCount 返回注册服务的总数（用于作用域数组大小）。
	serviceCount() int
}

// container 是具体的实现。
type container struct {
	mu              sync.RWMutex
	definitions     map[reflect.Type]*ServiceDefinition
	built           atomic.Bool
	serviceCountVal int

	// resolver 处理实例的创建
	resolver *resolver
}

// New 创建一个新的空容器。
func New() Container {
	return &container{
		definitions: make(map[reflect.Type]*ServiceDefinition),
		resolver:    newResolver(),
	}
}

// Add 向容器添加服务定义。
func (c *container) Add(def *ServiceDefinition) error {
	if def.Type == nil {
		return fmt.Errorf("container: definition has no type")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// built 在 Build 的锁内翻转，必须持锁检查：
	// 否则 Add 可能与构建后的无锁读取并发修改 definitions。
	if c.built.Load() {
		return fmt.Errorf("container: cannot register after Build")
	}

	if _, exists := c.definitions[def.Type]; exists {
		return fmt.Errorf("container: %v already registered", def.Type)
	}

	c.definitions[def.Type] = def
	return nil
}

// Build 校验依赖图并急切初始化单例。
func (c *container) Build() error {
	if c.built.Load() {
		return nil // 已构建
	}

	c.mu.Lock()
	if c.built.Load() {
		c.mu.Unlock()
		return nil
	}

	// 为定义分配 ID。顺序无关紧要，唯一且构建后稳定即可。
	c.serviceCountVal = 0
	for _, def := range c.definitions {
		def.ID = c.serviceCountVal
		c.serviceCountVal++
	}

	// 依赖图校验与拓扑排序
	graph := newGraphBuilder(c.definitions)
	order, err := graph.buildOrder()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	// 标记为已构建。此后 Add 会失败，定义事实上不可变。
	c.built.Store(true)
	c.mu.Unlock()

	// 在锁外按拓扑顺序急切初始化单例，避免与 Get 死锁。
	for _, typ := range order {
		def := c.definitions[typ]
		if def.Scope == ScopeSingleton {
			if _, err := c.Get(typ); err != nil {
				return fmt.Errorf("container: building singleton %v: %w", typ, err)
			}
		}
	}

	return nil
}

func (c *container) Get(typ reflect.Type) (any, error) {
	return c.GetContext(context.Background(), typ)
}

func (c *container) GetContext(ctx context.Context, typ reflect.Type) (any, error) {
	if !c.built.Load() {
		return nil, fmt.Errorf("container: not built")
	}

	// 构建后定义不可变，built 的 Store/Load 提供内存屏障，无锁读取安全。
	def, ok := c.definitions[typ]
	if !ok {
		return nil, fmt.Errorf("container: %v: %w", typ, inject.ErrNotFound)
	}

	return c.resolveDefinition(ctx, c, def)
}

// resolveDefinition 按生命周期解析一个定义。host 是依赖解析的入口，
// 作用域会传入自己以便瞬态依赖落在作用域内。
func (c *container) resolveDefinition(ctx context.Context, host Container, def *ServiceDefinition) (any, error) {
	switch def.Scope {
	case ScopeSingleton:
		// 单例：在定义本身上使用 sync.Once
		def.singletonOnce.Do(func() {
			def.singletonInst, def.singletonErr = c.resolver.createInstance(ctx, host, def)
		})
		return def.singletonInst, def.singletonErr

	case ScopeTransient:
		return c.resolver.createInstance(ctx, host, def)

	case ScopeScoped:
		return nil, fmt.Errorf("container: scoped service %v requires CreateScope()", def.Type)
	}

	return nil, fmt.Errorf("container: unknown scope %v", def.Scope)
}

func (c *container) GetInterface(typ reflect.Type) (any, error) {
	return c.GetInterfaceContext(context.Background(), typ)
}

func (c *container) GetInterfaceContext(ctx context.Context, typ reflect.Type) (any, error) {
	if !c.built.Load() {
		return nil, fmt.Errorf("container: not built")
	}

	target, err := c.interfaceTarget(typ)
	if err != nil {
		return nil, err
	}
	return c.GetContext(ctx, target)
}

// interfaceTarget 把接口类型映射到应被解析的注册键：直接注册优先，
// 否则要求具体注册中恰有一个可赋给该接口。
func (c *container) interfaceTarget(typ reflect.Type) (reflect.Type, error) {
	if _, ok := c.definitions[typ]; ok {
		return typ, nil
	}
	if typ.Kind() != reflect.Interface {
		return nil, fmt.Errorf("container: %v is not an interface: %w", typ, inject.ErrNotFound)
	}

	var match reflect.Type
	for t := range c.definitions {
		if t.Kind() == reflect.Interface {
			continue
		}
		if t.AssignableTo(typ) {
			if match != nil {
				return nil, fmt.Errorf("container: multiple implementations of %v (%v, %v)", typ, match, t)
			}
			match = t
		}
	}
	if match == nil {
		return nil, fmt.Errorf("container: %v: %w", typ, inject.ErrNotFound)
	}
	return match, nil
}

// CreateScope 为作用域实例创建一个新作用域。
func (c *container) CreateScope() Scope {
	return newScope(c)
}

func (c *container) serviceCount() int {
	return c.serviceCountVal
}
