// Package inject 提供一个按类型解析参数并构造对象的依赖注入引擎。
//
// 引擎本身不拥有任何实例：它从外部的 Store（值仓库/容器）按类型取值，
// 再结合调用方显式传入的参数覆盖与字段声明的默认值，按固定的优先级
// 把目标结构体（或函数）的每个参数解析出来，最后完成构造或调用。
//
// 三种解析策略：
//
//  1. New          基础策略：带 di 标签的字段从 Store 取值（取不到即失败），
//     其余字段使用参数或默认值。
//  2. NewOverriding 覆盖策略：显式参数对所有字段拥有最高优先级，其余同基础策略。
//  3. NewContextual 上下文策略：在回落到 Store 之前，先询问 ServiceLocator
//     是否存在按 Resource/Location 评分选中的实现；选中的实现会被递归构造。
//
// 字段标记通过结构体标签完成：
//
//	type UserService struct {
//	    DB     *gorm.DB `di:""`                 // 从 Store 注入
//	    Logger Logger   `di:""`                 // 接口类型走接口查找
//	    Salt   string   `di:"-,initonly"`       // 仅构造期可见，构造后清零
//	    Limit  int      `default:"100"`         // 字面默认值
//	}
//
// 默认值工厂通过方法声明：为字段 X 定义 DefaultX() T 方法即可。
//
// Store 的参考实现位于子包 container；任何实现了 Store 接口的容器都可以
// 接入本引擎。
package inject
