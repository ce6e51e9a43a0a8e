package container

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/gocrud/inject"
)

type resolver struct{}

func newResolver() *resolver {
	return &resolver{}
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// createInstance 创建 def 描述的服务的新实例。
// 依赖通过 host 递归解析，作用域传入自己即可让依赖落在作用域内。
func (r *resolver) createInstance(ctx context.Context, host Container, def *ServiceDefinition) (any, error) {
	if def.IsValue {
		return def.Impl, nil
	}

	if def.Alias != nil {
		return host.GetContext(ctx, def.Alias)
	}

	if def.IsFactory || (def.Impl != nil && reflect.TypeOf(def.Impl).Kind() == reflect.Func) {
		return r.invokeFactory(ctx, host, def.Impl)
	}

	return nil, fmt.Errorf("container: definition %v has no value, factory, or alias", def.Type)
}

// invokeFactory 调用工厂函数：参数按类型注入，开头（或任意位置）的
// context.Context 直接使用当前 ctx；返回值遵循 (T) 或 (T, error) 约定。
func (r *resolver) invokeFactory(ctx context.Context, host Container, fn any) (any, error) {
	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()

	args := make([]reflect.Value, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		argType := fnType.In(i)
		if argType == ctxType {
			args[i] = reflect.ValueOf(ctx)
			continue
		}

		argVal, err := host.GetContext(ctx, argType)
		if err != nil && errors.Is(err, inject.ErrNotFound) && argType.Kind() == reflect.Interface {
			// 接口参数允许落到唯一实现
			argVal, err = host.GetInterfaceContext(ctx, argType)
		}
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		if argVal == nil {
			args[i] = reflect.Zero(argType)
		} else {
			args[i] = reflect.ValueOf(argVal)
		}
	}

	results := fnVal.Call(args)

	if len(results) == 0 {
		return nil, fmt.Errorf("container: factory returned no values")
	}

	// 检查末位 error
	if len(results) > 1 {
		last := results[len(results)-1]
		if last.Type().Implements(errType) && !last.IsNil() {
			return nil, fmt.Errorf("container: factory failed: %w", last.Interface().(error))
		}
	}

	// 检查 nil 实例
	first := results[0]
	if first.Kind() == reflect.Ptr || first.Kind() == reflect.Interface {
		if first.IsNil() {
			return nil, fmt.Errorf("container: factory returned nil instance")
		}
	}

	return first.Interface(), nil
}
