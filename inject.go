package inject

import (
	"context"
	"fmt"
	"reflect"
)

// Builder 是注入器的构造面，供泛型辅助函数与需要注入"注入器自身"
// 的组件使用。*Injector 的三种策略都满足它。
type Builder interface {
	Build(target any, args ...Arg) (any, error)
	BuildContext(ctx context.Context, target any, args ...Arg) (any, error)
}

// Build 构造类型 T 的实例。T 为结构体指针时返回指针：
//
//	svc, err := inject.Build[*UserService](in)
func Build[T any](b Builder, args ...Arg) (T, error) {
	var zero T
	typ := reflect.TypeOf((*T)(nil)).Elem()

	out, err := b.Build(typ, args...)
	if err != nil {
		return zero, err
	}
	v, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("inject: built %T, expected %v", out, typ)
	}
	return v, nil
}

// BuildContext 是 Build 的 context 变体。
func BuildContext[T any](ctx context.Context, b Builder, args ...Arg) (T, error) {
	var zero T
	typ := reflect.TypeOf((*T)(nil)).Elem()

	out, err := b.BuildContext(ctx, typ, args...)
	if err != nil {
		return zero, err
	}
	v, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("inject: built %T, expected %v", out, typ)
	}
	return v, nil
}

// TypeOf 获取类型 T 的 reflect.Type（泛型辅助函数）。
//
//	locator = locator.Register(inject.TypeOf[Greeting](), &DefaultGreeting{})
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
