package inject

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// NewContextual 创建上下文注入器。对每个注入字段，优先级从高到低：
//
//  1. 显式参数；
//  2. 字段请求的就是 Store 本身时，直接交出容器句柄；
//  3. 从 Store 发现当前 Resource（取其动态类型）与 Location，
//     询问 ServiceLocator 是否有评分选中的实现——有则递归构造它；
//  4. 普通 Store 取值，取不到不报错，继续向下；
//  5. 声明的默认值。
//
// Store 中没有注册 *ServiceLocator 时，行为退化为 NewOverriding。
func NewContextual(store Store, opts ...Option) *Injector {
	return newInjector(store, policyContextual, opts)
}

var (
	locatorType  = reflect.TypeOf((*ServiceLocator)(nil))
	resourceType = reflect.TypeOf((*Resource)(nil)).Elem()
	locationType = reflect.TypeOf(Location(""))
)

// resolveContextual 解析上下文策略下的单个注入字段。
// ptr 在函数参数场景下无效，此时字段也不会有默认值。
func (in *Injector) resolveContextual(ctx context.Context, useCtx bool, f *FieldInfo, ptr reflect.Value, depth int) (reflect.Value, bool, error) {
	// 容器句柄短路：字段要的就是 Store。
	if f.InnerType == storeType || (in.store != nil && f.InnerType == reflect.TypeOf(in.store)) {
		return toValue(in.store, f.Type), true, nil
	}

	if impl, ok := in.lookupImplementation(ctx, useCtx, f.InnerType); ok {
		v, err := in.buildImplementation(ctx, useCtx, impl, depth)
		if err != nil {
			return reflect.Value{}, false, fmt.Errorf("inject: field %s: %w", f.Name, err)
		}
		return toValue(v, f.Type), true, nil
	}

	v, err := in.fetch(ctx, useCtx, f.InnerType, f.IsInterface)
	if err == nil {
		return toValue(v, f.Type), true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return reflect.Value{}, false, fmt.Errorf("inject: field %s: %w", f.Name, err)
	}

	// Store 缺注册在本策略下不是硬失败，落到默认值层。
	if f.HasDefault {
		return in.defaultValue(f, ptr), true, nil
	}
	return reflect.Value{}, false, nil
}

// lookupImplementation 询问定位器。定位器、Resource、Location 三者
// 任何一个缺席都不是错误：缺定位器直接跳过本层，缺 Resource/Location
// 则以空约束参与评分。
func (in *Injector) lookupImplementation(ctx context.Context, useCtx bool, service reflect.Type) (any, bool) {
	raw, err := in.fetch(ctx, useCtx, locatorType, false)
	if err != nil {
		return nil, false
	}
	loc, ok := raw.(*ServiceLocator)
	if !ok || loc == nil {
		return nil, false
	}

	var resource reflect.Type
	if rv, err := in.fetch(ctx, useCtx, resourceType, true); err == nil && rv != nil {
		resource = reflect.TypeOf(rv)
	}

	var at Location
	if lv, err := in.fetch(ctx, useCtx, locationType, false); err == nil {
		if l, ok := lv.(Location); ok {
			at = l
		}
	}

	return loc.Implementation(service, resource, at)
}

// buildImplementation 构造定位器选中的实现：类型走递归构造，函数走
// 递归调用（其参数同样会被注入），其余当作预构建实例直接使用。
func (in *Injector) buildImplementation(ctx context.Context, useCtx bool, impl any, depth int) (any, error) {
	switch v := impl.(type) {
	case nil:
		return nil, nil
	case reflect.Type:
		return in.build(ctx, useCtx, v, nil, depth+1)
	default:
		if reflect.ValueOf(impl).Kind() == reflect.Func {
			return in.call(ctx, useCtx, impl, depth+1)
		}
		return v, nil
	}
}
