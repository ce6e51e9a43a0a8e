package inject

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// FieldInfo 描述目标的一个参数：它叫什么、声明了什么类型、是否要求注入、
// 注入时向 Store 请求什么类型、有没有默认值、是否仅构造期可见。
//
// 描述符在每次解析调用时重新计算，不做跨调用缓存——目标类型在进程内
// 重定义的场景极少，但重算换来的简单性与正确性是值得的。
type FieldInfo struct {
	Name  string
	Index int
	Type  reflect.Type

	// Injectable 为 true 时，InnerType 是向 Store 请求的类型；
	// IsInterface 决定走接口查找还是具体类型查找。
	Injectable  bool
	InnerType   reflect.Type
	IsInterface bool

	// HasDefault 为 true 时，Default 持有字面默认值，或 DefaultMethod
	// 指向一个每次解析都会被调用的零参工厂方法（二者互斥）。
	HasDefault    bool
	Default       reflect.Value
	DefaultMethod string

	// InitOnly 字段参与解析、对 Init 钩子可见，但在构造完成前被清零。
	InitOnly bool
}

var durationType = reflect.TypeOf(time.Duration(0))

// Fields 返回目标的字段描述符，顺序与声明顺序一致。
// 目标可以是结构体类型、结构体指针类型，或对应的（可为 nil 的）值。
func Fields(target any) ([]FieldInfo, error) {
	st, _, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}
	return fieldInfos(st)
}

// fieldInfos 提取结构体类型的字段描述符。
func fieldInfos(st reflect.Type) ([]FieldInfo, error) {
	ptr := reflect.PointerTo(st)
	infos := make([]FieldInfo, 0, st.NumField())

	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		tag, tagged := sf.Tag.Lookup("di")

		if sf.PkgPath != "" {
			// 非导出字段无法通过反射赋值；带 di 标签即是声明错误。
			if tagged {
				return nil, &InvalidFieldError{Target: st, Field: sf.Name,
					Reason: "di tag on unexported field"}
			}
			continue
		}

		fi := FieldInfo{
			Name:  sf.Name,
			Index: i,
			Type:  sf.Type,
		}

		if tagged {
			if err := parseTag(st, sf, tag, &fi); err != nil {
				return nil, err
			}
		}

		if err := extractDefault(st, ptr, sf, &fi); err != nil {
			return nil, err
		}

		infos = append(infos, fi)
	}

	return infos, nil
}

// parseTag 解析 di 标签。语法：
//
//	di:""            注入
//	di:",initonly"   注入 + 仅构造期
//	di:"-,initonly"  不注入 + 仅构造期
func parseTag(st reflect.Type, sf reflect.StructField, tag string, fi *FieldInfo) error {
	parts := strings.Split(tag, ",")

	switch parts[0] {
	case "":
		fi.Injectable = true
		fi.InnerType = sf.Type
		fi.IsInterface = sf.Type.Kind() == reflect.Interface
	case "-":
		// 显式标记为不注入，通常与 initonly 组合使用。
	default:
		return &InvalidFieldError{Target: st, Field: sf.Name,
			Reason: fmt.Sprintf("unknown di tag value %q", parts[0])}
	}

	for _, opt := range parts[1:] {
		switch opt {
		case "initonly":
			fi.InitOnly = true
		default:
			return &InvalidFieldError{Target: st, Field: sf.Name,
				Reason: fmt.Sprintf("unknown di tag option %q", opt)}
		}
	}

	return nil
}

// extractDefault 发现字段的默认值：default 标签里的字面值，或目标指针
// 类型上的 Default<字段名>() 工厂方法。解析器需要区分二者——字面值直接
// 使用，工厂在每次解析时调用。
func extractDefault(st, ptr reflect.Type, sf reflect.StructField, fi *FieldInfo) error {
	lit, hasLit := sf.Tag.Lookup("default")

	name := "Default" + sf.Name
	m, hasMethod := ptr.MethodByName(name)
	if hasMethod {
		// 方法签名必须是 func() T（除接收者外零入参、单返回值）。
		mt := m.Type
		if mt.NumIn() != 1 || mt.NumOut() != 1 || mt.Out(0) != sf.Type {
			return &InvalidFieldError{Target: st, Field: sf.Name,
				Reason: name + " must have signature func() " + sf.Type.String()}
		}
	}

	if hasLit && hasMethod {
		return &InvalidFieldError{Target: st, Field: sf.Name,
			Reason: "both default tag and " + name + " declared"}
	}

	if hasMethod {
		fi.HasDefault = true
		fi.DefaultMethod = name
		return nil
	}

	if hasLit {
		v, err := parseDefault(sf.Type, lit)
		if err != nil {
			return &InvalidFieldError{Target: st, Field: sf.Name,
				Reason: "bad default: " + err.Error()}
		}
		fi.HasDefault = true
		fi.Default = v
	}

	return nil
}

// parseDefault 把标签里的字面值解析成字段类型的值。
// 只支持标量：字符串、布尔、整型、无符号整型、浮点与 time.Duration。
func parseDefault(t reflect.Type, s string) (reflect.Value, error) {
	v := reflect.New(t).Elem()

	if t == durationType {
		d, err := time.ParseDuration(s)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetInt(int64(d))
		return v, nil
	}

	switch t.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return reflect.Value{}, err
		}
		if v.OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("value %s overflows %s", s, t)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return reflect.Value{}, err
		}
		if v.OverflowUint(n) {
			return reflect.Value{}, fmt.Errorf("value %s overflows %s", s, t)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetFloat(f)
	default:
		return reflect.Value{}, fmt.Errorf("unsupported default kind %s (declare a factory method instead)", t.Kind())
	}

	return v, nil
}

// normalizeTarget 把目标统一成（结构体类型, 是否返回指针）。
// 接受 reflect.Type、*T 原型（含 typed nil）或结构体值。
func normalizeTarget(target any) (reflect.Type, bool, error) {
	var t reflect.Type
	if typ, ok := target.(reflect.Type); ok {
		t = typ
	} else {
		t = reflect.TypeOf(target)
	}
	if t == nil {
		return nil, false, &InvalidTargetError{Reason: "target is nil"}
	}

	switch {
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		return t.Elem(), true, nil
	case t.Kind() == reflect.Struct:
		return t, false, nil
	}
	return nil, false, &InvalidTargetError{Target: t,
		Reason: "want a struct or a struct pointer"}
}
