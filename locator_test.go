package inject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocrud/inject"
)

// ---------------- 测试类型 ----------------

type Renderer interface {
	Render() string
}

type PlainRenderer struct{}

func (r *PlainRenderer) Render() string { return "plain" }

type FancyRenderer struct{}

func (r *FancyRenderer) Render() string { return "fancy" }

type Tenant interface {
	TenantID() string
}

type AcmeTenant struct{}

func (t *AcmeTenant) TenantID() string { return "acme" }

var (
	rendererType = inject.TypeOf[Renderer]()
	acmeType     = inject.TypeOf[*AcmeTenant]()
)

// ---------------- 注册与不可变性 ----------------

func TestLocatorImmutableRegister(t *testing.T) {
	base := inject.NewLocator()
	one := inject.RegisterFor[Renderer](base, inject.TypeOf[*PlainRenderer]())
	two := inject.RegisterFor[Renderer](one, inject.TypeOf[*FancyRenderer]())

	assert.Equal(t, 0, base.Len())
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 2, two.Len())

	// 旧实例看不到后续注册
	impl, ok := one.Implementation(rendererType, nil, "")
	require.True(t, ok)
	assert.Equal(t, inject.TypeOf[*PlainRenderer](), impl)
}

func TestLocatorNewestWinsTies(t *testing.T) {
	loc := inject.RegisterFor[Renderer](inject.NewLocator(), inject.TypeOf[*PlainRenderer]())
	loc = inject.RegisterFor[Renderer](loc, inject.TypeOf[*FancyRenderer]())

	// 两条记录同为无约束（同分），后注册的一条胜出
	impl, ok := loc.Implementation(rendererType, nil, "")
	require.True(t, ok)
	assert.Equal(t, inject.TypeOf[*FancyRenderer](), impl)
}

func TestLocatorNoMatch(t *testing.T) {
	loc := inject.NewLocator()
	impl, ok := loc.Implementation(rendererType, nil, "")
	assert.False(t, ok)
	assert.Nil(t, impl)

	// 限定了资源的记录对无资源查询不可见
	loc = inject.RegisterFor[Renderer](loc, inject.TypeOf[*PlainRenderer](),
		inject.WithResource[*AcmeTenant]())
	_, ok = loc.Implementation(rendererType, nil, "")
	assert.False(t, ok)
}

// ---------------- 资源评分 ----------------

func TestLocatorResourceScoring(t *testing.T) {
	unconstrained := "unconstrained"
	viaInterface := "via-interface"
	exact := "exact"

	// 注册顺序从旧到新：精确、接口、无约束——确保胜出靠评分而不是顺序
	loc := inject.RegisterFor[Renderer](inject.NewLocator(), exact,
		inject.WithResource[*AcmeTenant]())
	loc = inject.RegisterFor[Renderer](loc, viaInterface,
		inject.WithResource[Tenant]())
	loc = inject.RegisterFor[Renderer](loc, unconstrained)

	// 精确类型命中压过接口赋值命中和无约束
	impl, ok := loc.Implementation(rendererType, acmeType, "")
	require.True(t, ok)
	assert.Equal(t, exact, impl)

	// 没有精确记录时接口赋值命中压过无约束
	locNoExact := inject.RegisterFor[Renderer](inject.NewLocator(), viaInterface,
		inject.WithResource[Tenant]())
	locNoExact = inject.RegisterFor[Renderer](locNoExact, unconstrained)
	impl, ok = locNoExact.Implementation(rendererType, acmeType, "")
	require.True(t, ok)
	assert.Equal(t, viaInterface, impl)

	// 无关资源回退到无约束记录
	impl, ok = loc.Implementation(rendererType, inject.TypeOf[*PlainRenderer](), "")
	require.True(t, ok)
	assert.Equal(t, unconstrained, impl)
}

// ---------------- 路径评分 ----------------

func TestLocatorLocationScoring(t *testing.T) {
	root := "root"
	checkout := "checkout"
	payment := "payment"

	loc := inject.RegisterFor[Renderer](inject.NewLocator(), root)
	loc = inject.RegisterFor[Renderer](loc, checkout,
		inject.WithLocation("shop/checkout"))
	loc = inject.RegisterFor[Renderer](loc, payment,
		inject.WithLocation("shop/checkout/payment"))

	cases := []struct {
		at   inject.Location
		want any
	}{
		{"shop/checkout/payment/card", payment}, // 最长前缀最具体
		{"shop/checkout/payment", payment},      // 路径自身也算包含
		{"shop/checkout", checkout},
		{"shop/browse", root}, // 不相关路径只剩无约束记录
		{"", root},            // 无路径时受限记录全部淘汰
	}
	for _, tc := range cases {
		impl, ok := loc.Implementation(rendererType, nil, tc.at)
		require.True(t, ok, "at %q", tc.at)
		assert.Equal(t, tc.want, impl, "at %q", tc.at)
	}
}

func TestLocatorResourceDominatesLocation(t *testing.T) {
	deepPath := "deep-path"
	exactRes := "exact-resource"

	// 路径再深也压不过资源轴上的更高分：两轴按字典序合成
	loc := inject.RegisterFor[Renderer](inject.NewLocator(), deepPath,
		inject.WithLocation("a/b/c/d"))
	loc = inject.RegisterFor[Renderer](loc, exactRes,
		inject.WithResource[*AcmeTenant]())

	impl, ok := loc.Implementation(rendererType, acmeType, "a/b/c/d")
	require.True(t, ok)
	assert.Equal(t, exactRes, impl)
}

// ---------------- 缓存 ----------------

func TestLocatorCacheStable(t *testing.T) {
	loc := inject.RegisterFor[Renderer](inject.NewLocator(), inject.TypeOf[*PlainRenderer](),
		inject.WithResource[*AcmeTenant]())

	for i := 0; i < 3; i++ {
		impl, ok := loc.Implementation(rendererType, acmeType, "")
		require.True(t, ok)
		assert.Equal(t, inject.TypeOf[*PlainRenderer](), impl)
	}
	// 未命中同样被缓存且保持未命中
	for i := 0; i < 3; i++ {
		_, ok := loc.Implementation(rendererType, nil, "")
		assert.False(t, ok)
	}
}

func TestLocatorRegisterResetsCache(t *testing.T) {
	loc := inject.RegisterFor[Renderer](inject.NewLocator(), inject.TypeOf[*PlainRenderer]())
	impl, ok := loc.Implementation(rendererType, nil, "")
	require.True(t, ok)
	assert.Equal(t, inject.TypeOf[*PlainRenderer](), impl)

	// 新实例重新评分，旧实例的缓存结果不变
	next := inject.RegisterFor[Renderer](loc, inject.TypeOf[*FancyRenderer]())
	impl, ok = next.Implementation(rendererType, nil, "")
	require.True(t, ok)
	assert.Equal(t, inject.TypeOf[*FancyRenderer](), impl)

	impl, ok = loc.Implementation(rendererType, nil, "")
	require.True(t, ok)
	assert.Equal(t, inject.TypeOf[*PlainRenderer](), impl)
}

func TestLocatorConcurrentLookup(t *testing.T) {
	loc := inject.RegisterFor[Renderer](inject.NewLocator(), inject.TypeOf[*PlainRenderer]())
	loc = inject.RegisterFor[Renderer](loc, inject.TypeOf[*FancyRenderer](),
		inject.WithResource[*AcmeTenant]())

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				impl, ok := loc.Implementation(rendererType, acmeType, "")
				if !ok || impl != any(inject.TypeOf[*FancyRenderer]()) {
					t.Errorf("concurrent lookup got %v", impl)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

func TestLocatorRegisterWithResourceType(t *testing.T) {
	loc := inject.NewLocator().Register(rendererType, "impl",
		inject.WithResourceType(acmeType))

	impl, ok := inject.ImplementationFor[Renderer](loc, acmeType, "")
	require.True(t, ok)
	assert.Equal(t, "impl", impl)
}

func TestLocatorLocationHelpers(t *testing.T) {
	l := inject.Location("shop/checkout")
	assert.True(t, l.Contains("shop/checkout"))
	assert.True(t, l.Contains("shop/checkout/payment"))
	assert.False(t, l.Contains("shop/checkout2"))
	assert.False(t, l.Contains("shop"))
}
