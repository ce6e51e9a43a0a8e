package inject

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrNotFound 表示 Store 中没有请求类型的注册。
	// Store 的实现必须返回可被 errors.Is 匹配到本哨兵的错误。
	ErrNotFound = errors.New("inject: service not found")

	// ErrDepthExceeded 表示上下文策略的递归构造超过了深度上限，
	// 通常意味着 ServiceLocator 的注册形成了环。
	ErrDepthExceeded = errors.New("inject: max resolution depth exceeded")
)

// UnknownArgError 表示调用方传入的参数名不匹配目标的任何字段。
// 在访问 Store 之前就会被检出，避免拼写错误被静默吞掉。
type UnknownArgError struct {
	Name  string
	Valid []string
}

func (e *UnknownArgError) Error() string {
	return "inject: unknown arg " + strconv.Quote(e.Name) +
		" (valid: " + strings.Join(e.Valid, ", ") + ")"
}

// InvalidFieldError 表示目标声明本身有问题：di 标签落在不可设置的字段上、
// 标签选项无法识别、默认值无法解析，或解析出的值无法赋给字段。
// 这是目标的编程错误，在解析期立即暴露。
type InvalidFieldError struct {
	Target reflect.Type
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return "inject: " + e.Target.String() + "." + e.Field + ": " + e.Reason
}

// InvalidTargetError 表示传入的目标既不是可构造的结构体（或其指针/类型），
// 也不是受支持的函数。
type InvalidTargetError struct {
	Target reflect.Type
	Reason string
}

func (e *InvalidTargetError) Error() string {
	name := "<nil>"
	if e.Target != nil {
		name = e.Target.String()
	}
	return "inject: invalid target " + name + ": " + e.Reason
}
