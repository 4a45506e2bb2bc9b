package css_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/jsxstyle/jsxstyle-sub000/css"
)

func TestClassNameCache_Idempotent(t *testing.T) {
	for _, naming := range []css.Naming{css.NamingCounter, css.NamingHash, css.NamingReadable} {
		t.Run(naming.String(), func(t *testing.T) {
			c := css.NewClassNameCache(naming, "")
			a := c.ClassName("color:red")
			b := c.ClassName("color:blue")
			if a == b {
				t.Fatalf("distinct keys share class %q", a)
			}
			if again := c.ClassName("color:red"); again != a {
				t.Errorf("ClassName() = %q on second call, want %q", again, a)
			}
			if !strings.HasPrefix(a, css.DefaultPrefix) {
				t.Errorf("class %q lacks prefix", a)
			}
			if c.Len() != 2 {
				t.Errorf("Len() = %d, want 2", c.Len())
			}
		})
	}
}

func TestClassNameCache_CounterIsBase36(t *testing.T) {
	c := css.NewClassNameCache(css.NamingCounter, "_x")
	var last string
	for i := 0; i < 37; i++ {
		last = c.ClassName(strings.Repeat("k", i+1))
	}
	if last != "_x10" {
		t.Errorf("37th name = %q, want _x10", last)
	}
}

func TestClassNameCache_SeedKeepsCounterMonotonic(t *testing.T) {
	c := css.NewClassNameCache(css.NamingCounter, "_x")
	if !c.Seed("color:red", "_x5") {
		t.Fatal("Seed() refused fresh assignment")
	}
	if c.Seed("color:red", "_x9") {
		t.Error("Seed() replaced an existing key")
	}
	if got := c.ClassName("color:red"); got != "_x5" {
		t.Errorf("seeded name = %q, want _x5", got)
	}
	if got := c.ClassName("color:blue"); got != "_x6" {
		t.Errorf("next name = %q, want _x6", got)
	}
}

func TestEmissionLog_InsertRuleOnce(t *testing.T) {
	l := css.NewEmissionLog()
	for i := 0; i < 3; i++ {
		l.InsertRule("._x0 { color: red }", "color:red")
	}
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	if got := l.Since(1); len(got) != 0 {
		t.Errorf("Since(1) = %v, want empty", got)
	}
}

func TestDeclaration_Rule(t *testing.T) {
	tests := []struct {
		name string
		decl css.Declaration
		want string
	}{
		{
			name: "plain",
			decl: css.Declaration{Property: "color", Value: "red"},
			want: "._x0 { color: red }",
		},
		{
			name: "specificity",
			decl: css.Declaration{Property: "margin-left", Value: "4px", Specificity: 1},
			want: "._x0._x0 { margin-left: 4px }",
		},
		{
			name: "specificity capped",
			decl: css.Declaration{Property: "margin-left", Value: "4px", Specificity: 9},
			want: "._x0._x0._x0._x0 { margin-left: 4px }",
		},
		{
			name: "pseudo",
			decl: css.Declaration{Property: "color", Value: "red", PseudoClass: "hover", PseudoElement: css.PseudoAfter},
			want: "._x0:hover::after { color: red }",
		},
		{
			name: "media",
			decl: css.Declaration{Property: "color", Value: "red", MediaQuery: "@media (min-width: 600px)", Specificity: 1},
			want: "@media (min-width: 600px) { ._x0._x0 { color: red } }",
		},
		{
			name: "ampersand",
			decl: css.Declaration{Property: "color", Value: "red", Ampersand: ".dark &:hover"},
			want: ".dark ._x0:hover { color: red }",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.decl.Rule("_x0"); got != tt.want {
				t.Errorf("Rule() = %q, want %q", got, tt.want)
			}
			if err := css.CheckRule(tt.decl.Rule("_x0")); err != nil {
				t.Errorf("CheckRule() = %v", err)
			}
		})
	}
}

func TestDeclaration_KeyDistinguishesContext(t *testing.T) {
	base := css.Declaration{Property: "color", Value: "red"}
	hover := base
	hover.PseudoClass = "hover"
	bumped := base
	bumped.Specificity = 1
	keys := map[string]bool{base.Key(): true, hover.Key(): true, bumped.Key(): true}
	if len(keys) != 3 {
		t.Errorf("keys collide: %v", keys)
	}
}

func TestRegistry_ClassForEmitsOnce(t *testing.T) {
	r := css.NewRegistry(nil, nil, zaptest.NewLogger(t))
	d := css.Declaration{Property: "color", Value: "red"}

	first, err := r.ClassFor(d)
	if err != nil {
		t.Fatalf("ClassFor() error = %v", err)
	}
	second, err := r.ClassFor(d)
	if err != nil {
		t.Fatalf("ClassFor() error = %v", err)
	}
	if first != second {
		t.Errorf("ClassFor() = %q then %q", first, second)
	}
	if n := r.Emitted().Len(); n != 1 {
		t.Errorf("emitted %d rules, want 1", n)
	}
}

func TestRegistry_KeyframesShared(t *testing.T) {
	r := css.NewRegistry(nil, nil, zaptest.NewLogger(t))
	frames := func() []css.Keyframe {
		return []css.Keyframe{
			{Selector: "from", Declarations: []css.Declaration{{Property: "opacity", Value: "0"}}},
			{Selector: "to", Declarations: []css.Declaration{{Property: "opacity", Value: "1"}}},
		}
	}
	d := css.Declaration{Property: "animation-name", Keyframes: frames(), Specificity: 1}

	a, err := r.ClassFor(d)
	if err != nil {
		t.Fatalf("ClassFor() error = %v", err)
	}
	b, err := r.ClassFor(css.Declaration{Property: "animation-name", Keyframes: frames(), Specificity: 1})
	if err != nil {
		t.Fatalf("ClassFor() error = %v", err)
	}
	if a != b {
		t.Errorf("identical animations got %q and %q", a, b)
	}

	rules := r.Emitted().Rules()
	if len(rules) != 2 {
		t.Fatalf("emitted %d rules, want keyframes + class", len(rules))
	}
	want := "@keyframes _x0 { from { opacity: 0 } to { opacity: 1 } }"
	if rules[0].Text != want {
		t.Errorf("keyframes rule = %q, want %q", rules[0].Text, want)
	}
	if rules[1].Text != "._x1._x1 { animation-name: _x0 }" {
		t.Errorf("animation rule = %q", rules[1].Text)
	}
}

func TestRegistry_RefusesBrokenRule(t *testing.T) {
	r := css.NewRegistry(nil, nil, nil)
	_, err := r.ClassFor(css.Declaration{Property: "color", Value: "red } body { color: blue"})
	if !errors.Is(err, css.ErrUnsafeValue) {
		t.Fatalf("ClassFor() error = %v, want ErrUnsafeValue", err)
	}
	if r.Names().Len() != 0 || r.Emitted().Len() != 0 {
		t.Error("refused declaration still assigned a name")
	}
}

func TestRegistry_ClassesForRefusesWholeSet(t *testing.T) {
	r := css.NewRegistry(nil, nil, zaptest.NewLogger(t))
	_, err := r.ClassesFor([]css.Declaration{
		{Property: "color", Value: "red"},
		{Property: "margin", Value: "0 } body { color: blue"},
	})
	if !errors.Is(err, css.ErrUnsafeValue) {
		t.Fatalf("ClassesFor() error = %v, want ErrUnsafeValue", err)
	}
	if r.Names().Len() != 0 || r.Emitted().Len() != 0 {
		t.Errorf("refused set left %d names and %d rules behind", r.Names().Len(), r.Emitted().Len())
	}
}

func TestCheckValue(t *testing.T) {
	good := []string{"red", "4px", "calc(100% - 4px)", `"a;b"`, "url(x.png)", "rgba(0, 0, 0, 0.5)", "1px solid #000"}
	for _, v := range good {
		if err := css.CheckValue(v); err != nil {
			t.Errorf("CheckValue(%q) = %v", v, err)
		}
	}
	bad := []string{"", "red; color: blue", "red }", "{", "calc(1px", `"unterminated`}
	for _, v := range bad {
		if err := css.CheckValue(v); !errors.Is(err, css.ErrUnsafeValue) {
			t.Errorf("CheckValue(%q) = %v, want ErrUnsafeValue", v, err)
		}
	}
}

func TestStylesheet_WriteTo(t *testing.T) {
	sheet := css.NewStylesheet([]css.Rule{
		{Key: "a", Text: "._x0 { color: red }"},
		{Key: "b", Text: "._x1 { color: blue }"},
	})
	sheet.Banner = "generated"
	sheet.Imports = []string{`base".css`}

	want := "/* generated */\n@import url(\"base\\\".css\");\n._x0 { color: red }\n._x1 { color: blue }\n"
	if got := sheet.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
