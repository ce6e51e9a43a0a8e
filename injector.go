package inject

import (
	"context"
	"fmt"
	"reflect"
)

// policy 决定参数覆盖、定位器与 Store 之间的优先级关系。
type policy int

const (
	// policyBasic 注入字段始终走 Store，参数只作用于普通字段。
	policyBasic policy = iota
	// policyOverriding 显式参数对所有字段拥有最高优先级。
	policyOverriding
	// policyContextual 在 Store 之前先询问 ServiceLocator。
	policyContextual
)

// Injector 按所选策略解析目标的全部参数并完成构造。
// 它不持有任何实例，线程安全性完全取决于背后的 Store。
type Injector struct {
	store       Store
	policy      policy
	childrenArg bool
	maxDepth    int
}

// DefaultMaxDepth 是上下文策略递归构造的默认深度上限。
// 超过上限几乎总是意味着定位器注册形成了环。
const DefaultMaxDepth = 32

// Option 配置注入器。
type Option func(*Injector)

// WithChildrenArg 允许名为 Children 的参数在目标没有同名字段时被静默接受。
// 这是给模板式调用方（总是附带 children 的组合场景）留的显式豁免，
// 不是通配符：其他未知参数名依旧报错。
func WithChildrenArg() Option {
	return func(in *Injector) { in.childrenArg = true }
}

// WithMaxDepth 设置上下文策略递归构造的深度上限。
func WithMaxDepth(n int) Option {
	return func(in *Injector) {
		if n > 0 {
			in.maxDepth = n
		}
	}
}

// Arg 是一个按字段名传入的显式参数。
type Arg struct {
	Name  string
	Value any
}

// Set 构造一个显式参数。
func Set(name string, value any) Arg {
	return Arg{Name: name, Value: value}
}

// New 创建基础注入器：di 字段从 Store 取值（取不到即失败），
// 普通字段依次使用显式参数、默认值、零值。
func New(store Store, opts ...Option) *Injector {
	return newInjector(store, policyBasic, opts)
}

func newInjector(store Store, p policy, opts []Option) *Injector {
	in := &Injector{store: store, policy: p, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Build 构造目标并返回实例。目标是结构体指针类型（或原型）时返回指针，
// 结构体类型时返回值。全部字段解析完成后目标才会被构造。
func (in *Injector) Build(target any, args ...Arg) (any, error) {
	return in.build(context.Background(), false, target, args, 0)
}

// BuildContext 是 Build 的 context 变体：Store 取值走 context 方法，
// Init 钩子优先使用 InitContext。
func (in *Injector) BuildContext(ctx context.Context, target any, args ...Arg) (any, error) {
	return in.build(ctx, true, target, args, 0)
}

// Call 解析函数的全部参数并调用它。参数按类型从 Store（或定位器）解析；
// 返回值遵循 (T) 或 (T, error) 约定。
func (in *Injector) Call(fn any) (any, error) {
	return in.call(context.Background(), false, fn, 0)
}

// CallContext 是 Call 的 context 变体；函数开头的 context.Context
// 参数由调用方的 ctx 直接充当。
func (in *Injector) CallContext(ctx context.Context, fn any) (any, error) {
	return in.call(ctx, true, fn, 0)
}

// ---------------- 构造 ----------------

func (in *Injector) build(ctx context.Context, useCtx bool, target any, args []Arg, depth int) (any, error) {
	if depth > in.maxDepth {
		return nil, fmt.Errorf("inject: building %T: %w", target, ErrDepthExceeded)
	}

	st, wantPtr, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}

	infos, err := fieldInfos(st)
	if err != nil {
		return nil, err
	}

	// 参数校验先于任何 Store 访问。
	argMap, err := in.validateArgs(st, infos, args)
	if err != nil {
		return nil, err
	}

	ptr := reflect.New(st)
	elem := ptr.Elem()

	for i := range infos {
		f := &infos[i]
		val, found, err := in.resolveField(ctx, useCtx, st, f, argMap, ptr, depth)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if err := setField(st, elem, f, val); err != nil {
			return nil, err
		}
	}

	if err := in.runInit(ctx, useCtx, ptr); err != nil {
		return nil, fmt.Errorf("inject: init %s: %w", st, err)
	}

	// initonly 字段到此为止：构造完成后不再保留。
	for i := range infos {
		if infos[i].InitOnly {
			elem.Field(infos[i].Index).SetZero()
		}
	}

	if wantPtr {
		return ptr.Interface(), nil
	}
	return elem.Interface(), nil
}

// validateArgs 校验每个参数名都对应一个已知字段，返回名字到值的映射。
// 唯一的例外是显式开启的 Children 豁免。
func (in *Injector) validateArgs(st reflect.Type, infos []FieldInfo, args []Arg) (map[string]any, error) {
	if len(args) == 0 {
		return nil, nil
	}

	valid := make(map[string]bool, len(infos))
	names := make([]string, 0, len(infos))
	for i := range infos {
		valid[infos[i].Name] = true
		names = append(names, infos[i].Name)
	}

	m := make(map[string]any, len(args))
	for _, a := range args {
		if valid[a.Name] {
			m[a.Name] = a.Value
			continue
		}
		if in.childrenArg && a.Name == "Children" {
			// 接受但丢弃：目标没有地方放它。
			continue
		}
		return nil, &UnknownArgError{Name: a.Name, Valid: names}
	}
	return m, nil
}

// resolveField 按策略为单个字段决定取值。返回 found=false 表示所有层级
// 都没有给出值，字段保持零值（函数参数场景则由调用方报缺参错误）。
func (in *Injector) resolveField(ctx context.Context, useCtx bool, st reflect.Type, f *FieldInfo, args map[string]any, ptr reflect.Value, depth int) (reflect.Value, bool, error) {
	if av, ok := args[f.Name]; ok {
		// 基础策略下注入字段始终以 Store 为准，参数不覆盖它。
		if in.policy != policyBasic || !f.Injectable {
			return toValue(av, f.Type), true, nil
		}
	}

	if f.Injectable {
		if in.policy == policyContextual {
			return in.resolveContextual(ctx, useCtx, f, ptr, depth)
		}
		v, err := in.fetch(ctx, useCtx, f.InnerType, f.IsInterface)
		if err != nil {
			// 缺注册在此层级是硬失败，原样向上传播。
			return reflect.Value{}, false, fmt.Errorf("inject: %s.%s: %w", st, f.Name, err)
		}
		return toValue(v, f.Type), true, nil
	}

	if f.HasDefault {
		return in.defaultValue(f, ptr), true, nil
	}
	return reflect.Value{}, false, nil
}

// defaultValue 取字段默认值：工厂方法每次调用，字面值直接使用。
func (in *Injector) defaultValue(f *FieldInfo, ptr reflect.Value) reflect.Value {
	if f.DefaultMethod != "" && ptr.IsValid() {
		return ptr.MethodByName(f.DefaultMethod).Call(nil)[0]
	}
	return f.Default
}

func setField(st reflect.Type, elem reflect.Value, f *FieldInfo, val reflect.Value) error {
	fv := elem.Field(f.Index)
	if !val.IsValid() {
		fv.SetZero()
		return nil
	}
	if !val.Type().AssignableTo(fv.Type()) {
		if !val.Type().ConvertibleTo(fv.Type()) {
			return &InvalidFieldError{Target: st, Field: f.Name,
				Reason: fmt.Sprintf("cannot assign %s to %s", val.Type(), fv.Type())}
		}
		val = val.Convert(fv.Type())
	}
	fv.Set(val)
	return nil
}

// toValue 把 any 转成可赋给 t 的 reflect.Value；nil 映射为 t 的零值。
func toValue(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(v)
}

// ---------------- Init 钩子 ----------------

// Initializer 在字段全部解析并写入之后、initonly 字段清零之前被调用。
type Initializer interface {
	Init() error
}

// ContextInitializer 是 Initializer 的 context 变体，
// 仅在 BuildContext 调用族中生效，并优先于 Init。
type ContextInitializer interface {
	InitContext(ctx context.Context) error
}

func (in *Injector) runInit(ctx context.Context, useCtx bool, ptr reflect.Value) error {
	if useCtx {
		if ci, ok := ptr.Interface().(ContextInitializer); ok {
			return ci.InitContext(ctx)
		}
	}
	if i, ok := ptr.Interface().(Initializer); ok {
		return i.Init()
	}
	return nil
}

// ---------------- 函数调用 ----------------

var ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
var errType = reflect.TypeOf((*error)(nil)).Elem()

func (in *Injector) call(ctx context.Context, useCtx bool, fn any, depth int) (any, error) {
	if depth > in.maxDepth {
		return nil, fmt.Errorf("inject: calling %T: %w", fn, ErrDepthExceeded)
	}

	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, &InvalidTargetError{Target: reflect.TypeOf(fn), Reason: "not a function"}
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, &InvalidTargetError{Target: ft, Reason: "variadic functions are not supported"}
	}

	callArgs := make([]reflect.Value, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		pt := ft.In(i)
		if pt == ctxType {
			callArgs[i] = reflect.ValueOf(ctx)
			continue
		}

		f := FieldInfo{
			Name:        fmt.Sprintf("arg%d", i),
			Type:        pt,
			Injectable:  true,
			InnerType:   pt,
			IsInterface: pt.Kind() == reflect.Interface,
		}

		var val reflect.Value
		var found bool
		var err error
		if in.policy == policyContextual {
			val, found, err = in.resolveContextual(ctx, useCtx, &f, reflect.Value{}, depth)
		} else {
			var raw any
			raw, err = in.fetch(ctx, useCtx, pt, f.IsInterface)
			if err == nil {
				val, found = toValue(raw, pt), true
			}
		}
		if err != nil {
			return nil, fmt.Errorf("inject: argument %d (%s): %w", i, pt, err)
		}
		if !found {
			// 函数参数没有零值兜底：缺失即缺参。
			return nil, fmt.Errorf("inject: argument %d (%s): %w", i, pt, ErrNotFound)
		}
		if !val.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("inject: argument %d: cannot assign %s to %s", i, val.Type(), pt)
		}
		callArgs[i] = val
	}

	results := fv.Call(callArgs)
	if len(results) == 0 {
		return nil, nil
	}

	// 末位 error 约定，与工厂调用一致。
	last := results[len(results)-1]
	if last.Type().Implements(errType) {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		if len(results) == 1 {
			return nil, nil
		}
	}
	return results[0].Interface(), nil
}
