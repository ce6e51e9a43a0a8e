package container

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sync"
	"sync/atomic"
)

// Scope 表示作用域生命周期上下文。作用域内的 ScopeScoped 服务各有一份
// 实例，单例委托给父容器，瞬态的依赖也落在作用域内。
type Scope interface {
	Container
	// Dispose 释放与作用域关联的资源：实现了 io.Closer 的作用域实例
	// 会被关闭（关闭错误被忽略），之后实例不再可达。
	Dispose()
}

type scopeEntry struct {
	val atomic.Value // 存储 entryValue（未创建则为空）
	mu  sync.Mutex   // 用于创建此特定实例的锁
}

// entryValue 包装实例，使合法的 nil 实例也能缓存。
type entryValue struct {
	inst any
}

type scope struct {
	parent  *container
	entries []scopeEntry // 按 ServiceDefinition.ID 索引的数组

	disposed atomic.Bool
}

func newScope(parent *container) *scope {
	return &scope{
		parent:  parent,
		entries: make([]scopeEntry, parent.serviceCount()),
	}
}

func (s *scope) Add(def *ServiceDefinition) error {
	return fmt.Errorf("container: cannot register on a scope")
}

func (s *scope) Build() error {
	return nil // 作用域基于已构建的父容器
}

func (s *scope) CreateScope() Scope {
	return s.parent.CreateScope()
}

func (s *scope) serviceCount() int {
	return s.parent.serviceCount()
}

func (s *scope) Get(typ reflect.Type) (any, error) {
	return s.GetContext(context.Background(), typ)
}

func (s *scope) GetContext(ctx context.Context, typ reflect.Type) (any, error) {
	def, ok := s.parent.definitions[typ]
	if !ok {
		// 与父容器同样的缺注册错误
		return s.parent.GetContext(ctx, typ)
	}

	switch def.Scope {
	case ScopeSingleton:
		return s.parent.GetContext(ctx, typ)

	case ScopeTransient:
		// 以作用域为宿主创建新实例，依赖落在作用域内
		return s.parent.resolver.createInstance(ctx, s, def)

	case ScopeScoped:
		return s.scopedInstance(ctx, def)
	}

	return nil, fmt.Errorf("container: unknown scope %v", def.Scope)
}

func (s *scope) scopedInstance(ctx context.Context, def *ServiceDefinition) (any, error) {
	if def.ID < 0 || def.ID >= len(s.entries) {
		// ID 分配正确时不应发生
		return nil, fmt.Errorf("container: internal error, invalid service ID %d", def.ID)
	}

	// 切片大小固定，条目指针稳定。
	entry := &s.entries[def.ID]

	// 快速路径：已创建
	if v := entry.val.Load(); v != nil {
		return v.(entryValue).inst, nil
	}

	// 慢速路径：带锁创建
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if v := entry.val.Load(); v != nil {
		return v.(entryValue).inst, nil
	}

	inst, err := s.parent.resolver.createInstance(ctx, s, def)
	if err != nil {
		return nil, err
	}

	entry.val.Store(entryValue{inst: inst})
	return inst, nil
}

func (s *scope) GetInterface(typ reflect.Type) (any, error) {
	return s.GetInterfaceContext(context.Background(), typ)
}

func (s *scope) GetInterfaceContext(ctx context.Context, typ reflect.Type) (any, error) {
	target, err := s.parent.interfaceTarget(typ)
	if err != nil {
		return nil, err
	}
	return s.GetContext(ctx, target)
}

// Dispose 关闭实现了 io.Closer 的作用域实例并清空缓存。
func (s *scope) Dispose() {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}
	for i := range s.entries {
		entry := &s.entries[i]
		if v := entry.val.Load(); v != nil {
			if closer, ok := v.(entryValue).inst.(io.Closer); ok {
				_ = closer.Close()
			}
		}
	}
	s.entries = nil
}
