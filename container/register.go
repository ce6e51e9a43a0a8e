package container

import (
	"context"
	"fmt"
	"reflect"
)

// Register 向容器注册类型 T 的服务。
// T 是接口时，用 Use[Impl]() 指定实现，或用 WithFactory/WithValue 直接提供。
func Register[T any](c Container, opts ...Option) {
	typ := reflect.TypeOf((*T)(nil)).Elem()

	def := &ServiceDefinition{
		Type:  typ,
		Scope: ScopeSingleton, // 默认单例
	}

	for _, opt := range opts {
		opt(def)
	}

	if err := c.Add(def); err != nil {
		panic(fmt.Sprintf("container: failed to register %v: %v", typ, err))
	}
}

// Resolve 从容器或作用域解析类型 T 的实例。
func Resolve[T any](c Container) (T, error) {
	return ResolveContext[T](context.Background(), c)
}

// ResolveContext 是 Resolve 的 context 变体。
func ResolveContext[T any](ctx context.Context, c Container) (T, error) {
	var zero T
	typ := reflect.TypeOf((*T)(nil)).Elem()

	var val any
	var err error
	if typ.Kind() == reflect.Interface {
		val, err = c.GetInterfaceContext(ctx, typ)
	} else {
		val, err = c.GetContext(ctx, typ)
	}
	if err != nil {
		return zero, err
	}
	if val == nil {
		return zero, nil
	}

	v, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("container: resolved %T, expected %v", val, typ)
	}
	return v, nil
}

// MustResolve 解析类型 T 的实例，失败时 panic。
func MustResolve[T any](c Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		panic(err)
	}
	return v
}
