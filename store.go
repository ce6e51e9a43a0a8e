package inject

import (
	"context"
	"reflect"
)

// Store 是引擎消费的外部值仓库契约。
//
// 引擎只需要两种能力：按具体类型取值、按接口类型取值。两者各有同步与
// 携带 context 的变体，分别服务于 Build/Call 与 BuildContext/CallContext
// 两个调用族。未注册的类型必须返回可被 errors.Is(err, ErrNotFound)
// 识别的错误。
//
// 实例的生命周期（单例、作用域等）完全由 Store 自己保证，引擎不做任何
// 缓存或去重。参考实现见子包 container。
type Store interface {
	// Get 按具体类型取值。
	Get(typ reflect.Type) (any, error)

	// GetContext 是 Get 的 context 变体，供异步调用族使用。
	GetContext(ctx context.Context, typ reflect.Type) (any, error)

	// GetInterface 按接口类型取值（typ 必须是接口类型）。
	GetInterface(typ reflect.Type) (any, error)

	// GetInterfaceContext 是 GetInterface 的 context 变体。
	GetInterfaceContext(ctx context.Context, typ reflect.Type) (any, error)
}

// storeType 用于识别"请求容器自身"的字段。
var storeType = reflect.TypeOf((*Store)(nil)).Elem()

// fetch 按调用族选择 Store 的取值方法。
func (in *Injector) fetch(ctx context.Context, useCtx bool, typ reflect.Type, iface bool) (any, error) {
	if useCtx {
		if iface {
			return in.store.GetInterfaceContext(ctx, typ)
		}
		return in.store.GetContext(ctx, typ)
	}
	if iface {
		return in.store.GetInterface(typ)
	}
	return in.store.Get(typ)
}
