package inject_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/gocrud/inject"
)

type fieldSample struct {
	DB      *Database     `di:""`
	Logger  Logger        `di:""`
	Secret  string        `di:"-,initonly"`
	Token   string        `di:",initonly"`
	Name    string        `default:"anon"`
	Retries uint          `default:"3"`
	Ratio   float64       `default:"0.5"`
	Debug   bool          `default:"true"`
	Wait    time.Duration `default:"1500ms"`
	Plain   int
}

func TestFieldExtraction(t *testing.T) {
	infos, err := inject.Fields((*fieldSample)(nil))
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}

	names := make([]string, len(infos))
	for i, f := range infos {
		names[i] = f.Name
	}
	want := []string{"DB", "Logger", "Secret", "Token", "Name", "Retries", "Ratio", "Debug", "Wait", "Plain"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("field order = %v, want %v", names, want)
	}

	byName := make(map[string]inject.FieldInfo, len(infos))
	for _, f := range infos {
		byName[f.Name] = f
	}

	if f := byName["DB"]; !f.Injectable || f.InnerType != inject.TypeOf[*Database]() || f.IsInterface {
		t.Errorf("DB descriptor wrong: %+v", f)
	}
	if f := byName["Logger"]; !f.Injectable || !f.IsInterface {
		t.Errorf("Logger descriptor wrong: %+v", f)
	}
	if f := byName["Secret"]; f.Injectable || !f.InitOnly {
		t.Errorf("Secret descriptor wrong: %+v", f)
	}
	if f := byName["Token"]; !f.Injectable || !f.InitOnly {
		t.Errorf("Token descriptor wrong: %+v", f)
	}
	if f := byName["Plain"]; f.Injectable || f.HasDefault || f.InitOnly {
		t.Errorf("Plain descriptor wrong: %+v", f)
	}
}

func TestFieldLiteralDefaults(t *testing.T) {
	infos, err := inject.Fields(reflect.TypeOf(fieldSample{}))
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	byName := make(map[string]inject.FieldInfo, len(infos))
	for _, f := range infos {
		byName[f.Name] = f
	}

	cases := map[string]any{
		"Name":    "anon",
		"Retries": uint(3),
		"Ratio":   0.5,
		"Debug":   true,
		"Wait":    1500 * time.Millisecond,
	}
	for name, want := range cases {
		f := byName[name]
		if !f.HasDefault || f.DefaultMethod != "" {
			t.Errorf("%s: expected literal default, got %+v", name, f)
			continue
		}
		if got := f.Default.Interface(); got != want {
			t.Errorf("%s default = %v (%T), want %v", name, got, got, want)
		}
	}
}

func TestFieldFactoryDefault(t *testing.T) {
	infos, err := inject.Fields((*ReportService)(nil))
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 field, got %d", len(infos))
	}
	f := infos[0]
	if !f.HasDefault || f.DefaultMethod != "DefaultTags" {
		t.Errorf("Tags descriptor wrong: %+v", f)
	}
}

type badUnexported struct {
	db *Database `di:""`
}

type badTagValue struct {
	DB *Database `di:"wat"`
}

type badTagOption struct {
	DB *Database `di:",lazy"`
}

type badDefault struct {
	Limit int `default:"many"`
}

type badBothDefaults struct {
	Name string `default:"a"`
}

func (b *badBothDefaults) DefaultName() string { return "b" }

func TestFieldDeclarationErrors(t *testing.T) {
	targets := []any{
		(*badUnexported)(nil),
		(*badTagValue)(nil),
		(*badTagOption)(nil),
		(*badDefault)(nil),
		(*badBothDefaults)(nil),
	}
	for _, target := range targets {
		_, err := inject.Fields(target)
		var ife *inject.InvalidFieldError
		if !errors.As(err, &ife) {
			t.Errorf("%T: expected InvalidFieldError, got %v", target, err)
		}
	}
}

func TestFieldErrorsSurfaceAtBuild(t *testing.T) {
	// 声明错误在解析期暴露，而不是被静默跳过
	_, err := inject.New(newFakeStore()).Build((*badTagValue)(nil))
	var ife *inject.InvalidFieldError
	if !errors.As(err, &ife) {
		t.Fatalf("expected InvalidFieldError from Build, got %v", err)
	}
}
