package container

import (
	"fmt"
	"reflect"
	"strings"
)

// graphBuilder 处理依赖图的构建和验证。
type graphBuilder struct {
	definitions map[reflect.Type]*ServiceDefinition
}

func newGraphBuilder(defs map[reflect.Type]*ServiceDefinition) *graphBuilder {
	return &graphBuilder{definitions: defs}
}

// buildOrder 返回单例的最佳构建顺序并验证图中无环。
func (g *graphBuilder) buildOrder() ([]reflect.Type, error) {
	dependencies := make(map[reflect.Type][]reflect.Type, len(g.definitions))
	for typ, def := range g.definitions {
		dependencies[typ] = g.inspectDependencies(def)
	}

	// 拓扑排序（基于 DFS）
	visited := make(map[reflect.Type]bool)
	onStack := make(map[reflect.Type]bool)
	var order []reflect.Type

	var visit func(u reflect.Type, stack []reflect.Type) error
	visit = func(u reflect.Type, stack []reflect.Type) error {
		visited[u] = true
		onStack[u] = true
		stack = append(stack, u)

		for _, v := range dependencies[u] {
			// 未注册的依赖在这里跳过：工厂调用时会给出缺注册错误。
			if _, exists := g.definitions[v]; !exists {
				continue
			}
			if onStack[v] {
				return circularError(v, stack)
			}
			if !visited[v] {
				if err := visit(v, stack); err != nil {
					return err
				}
			}
		}

		onStack[u] = false
		order = append(order, u)
		return nil
	}

	for typ := range g.definitions {
		if !visited[typ] {
			if err := visit(typ, nil); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}

// inspectDependencies 提取一个定义的直接依赖：
// 工厂的参数类型（context 除外），或别名指向的类型。
func (g *graphBuilder) inspectDependencies(def *ServiceDefinition) []reflect.Type {
	if def.Alias != nil {
		return []reflect.Type{def.Alias}
	}
	if def.IsValue || def.Impl == nil {
		return nil
	}

	fnType := reflect.TypeOf(def.Impl)
	if fnType.Kind() != reflect.Func {
		return nil
	}

	deps := make([]reflect.Type, 0, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		in := fnType.In(i)
		if in == ctxType {
			continue
		}
		deps = append(deps, in)
	}
	return deps
}

func circularError(t reflect.Type, stack []reflect.Type) error {
	i := 0
	for ; i < len(stack); i++ {
		if stack[i] == t {
			break
		}
	}

	chain := make([]string, 0, len(stack)-i+1)
	for ; i < len(stack); i++ {
		chain = append(chain, stack[i].String())
	}
	chain = append(chain, t.String())

	return fmt.Errorf("container: circular dependency: %s", strings.Join(chain, " -> "))
}
