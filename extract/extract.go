// Package extract is the entry point of the static style extractor. It walks
// a program, rewrites every layout component whose styles can be computed
// ahead of time and collects the CSS rules those styles need.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
	"github.com/jsxstyle/jsxstyle-sub000/css"
	"github.com/jsxstyle/jsxstyle-sub000/evaluate"
	"github.com/jsxstyle/jsxstyle-sub000/scope"
	"github.com/jsxstyle/jsxstyle-sub000/styles"
)

// DefaultOutputElement replaces fully static components.
const DefaultOutputElement = "div"

// DefaultComponentModules are the modules layout components are imported from.
var DefaultComponentModules = []string{"jsxstyle"}

var (
	tagPattern         = regexp.MustCompile(`^(?:[a-z][a-z0-9-]*|[A-Z][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)$`)
	classPrefixPattern = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*$`)
)

// Options configure an Extractor.
type Options struct {
	// ComponentModules lists module specifiers providing layout components.
	ComponentModules []string
	// OutputElement is the element fully static components become.
	OutputElement string
	// Naming and ClassPrefix configure per-unit class name caches. They are
	// ignored when Names is set.
	Naming      css.Naming
	ClassPrefix string
	// Names and Emitted, when set, are shared by every processed unit.
	Names   *css.ClassNameCache
	Emitted *css.EmissionLog
	// Modules holds statically known exports of other modules by path.
	Modules scope.Modules
	// Fallback is consulted after the built-in sandbox.
	Fallback evaluate.Fallback
	// Strict reports every element that still needs the runtime as an error.
	Strict bool

	Warn  Reporter
	Error Reporter
}

// Extractor processes units one at a time. It is not safe for concurrent use.
type Extractor struct {
	log        *zap.Logger
	opts       Options
	classifier *styles.Classifier
	modules    map[string]bool
}

// New validates opts and returns an extractor.
func New(opts Options, log *zap.Logger) (*Extractor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("extract")

	if len(opts.ComponentModules) == 0 {
		opts.ComponentModules = DefaultComponentModules
	}
	if opts.OutputElement == "" {
		opts.OutputElement = DefaultOutputElement
	}

	var errs error
	modules := make(map[string]bool, len(opts.ComponentModules))
	for _, m := range opts.ComponentModules {
		if strings.TrimSpace(m) == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: empty component module", ErrConfiguration))
			continue
		}
		modules[m] = true
	}
	if !tagPattern.MatchString(opts.OutputElement) {
		errs = multierr.Append(errs, fmt.Errorf("%w: output element %q is not a tag name", ErrConfiguration, opts.OutputElement))
	}
	if opts.Naming < css.NamingCounter || opts.Naming > css.NamingReadable {
		errs = multierr.Append(errs, fmt.Errorf("%w: unknown class naming %d", ErrConfiguration, opts.Naming))
	}
	if opts.ClassPrefix != "" {
		if opts.Names != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: class prefix cannot be combined with a shared class name cache", ErrConfiguration))
		}
		if !classPrefixPattern.MatchString(opts.ClassPrefix) {
			errs = multierr.Append(errs, fmt.Errorf("%w: class prefix %q is not a CSS identifier", ErrConfiguration, opts.ClassPrefix))
		}
	}
	if errs != nil {
		return nil, errs
	}

	if opts.Warn == nil {
		opts.Warn = logReporter(log.Warn)
	}
	if opts.Error == nil {
		opts.Error = logReporter(log.Error)
	}
	return &Extractor{
		log:        log,
		opts:       opts,
		classifier: styles.NewClassifier(log),
		modules:    modules,
	}, nil
}

// Mode tells how an element was rewritten.
type Mode int

const (
	// ModeStatic elements were replaced by the output element.
	ModeStatic Mode = iota
	// ModePartial elements keep the component for their dynamic attributes.
	ModePartial
)

func (m Mode) String() string {
	if m == ModePartial {
		return "partial"
	}
	return "static"
}

// Replacement is a rewritten element. Original is never modified; Element
// shares its spans and children.
type Replacement struct {
	Original *ast.JSXElement
	Element  *ast.JSXElement
	Mode     Mode
}

// Result of processing one unit.
type Result struct {
	Path         string
	Replacements []Replacement
	// Rules emitted while processing this unit, in emission order.
	Rules []css.Rule
	// Dynamic is set when any layout component still needs the runtime.
	Dynamic     bool
	Diagnostics []Diagnostic
	// Err aggregates error diagnostics. The result is still usable.
	Err error
}

// Process extracts styles from prog. Only structural problems that make the
// requested output impossible are returned as errors, everything else
// degrades to leaving the element dynamic.
func (x *Extractor) Process(prog *ast.Program) (*Result, error) {
	if prog == nil {
		return nil, fmt.Errorf("%w: no program", ErrConfiguration)
	}

	names := x.opts.Names
	if names == nil {
		names = css.NewClassNameCache(x.opts.Naming, x.opts.ClassPrefix)
	}
	u := &unit{
		x:        x,
		log:      x.log.With(zap.String("path", prog.Path)),
		path:     prog.Path,
		cache:    scope.NewBindingCache(),
		registry: css.NewRegistry(names, x.opts.Emitted, x.log),
		res:      &Result{Path: prog.Path},
	}
	start := u.registry.Emitted().Len()

	var fatal error
	scope.Walk(prog, func(el *ast.JSXElement, s *scope.Scope) {
		if fatal == nil {
			fatal = u.element(el, s)
		}
	})
	if fatal != nil {
		return nil, fatal
	}

	u.res.Rules = u.registry.Emitted().Since(start)
	u.log.Debug("Processed unit",
		zap.Int("replacements", len(u.res.Replacements)),
		zap.Int("rules", len(u.res.Rules)),
		zap.Bool("dynamic", u.res.Dynamic))
	return u.res, nil
}

// unit is the state of one Process call.
type unit struct {
	x        *Extractor
	log      *zap.Logger
	path     string
	cache    *scope.BindingCache
	registry *css.Registry
	res      *Result
}

func (u *unit) warn(span ast.Span, err error) {
	d := Diagnostic{Severity: SeverityWarning, Path: u.path, Span: span, Err: err}
	u.res.Diagnostics = append(u.res.Diagnostics, d)
	u.x.opts.Warn(d)
}

func (u *unit) fail(span ast.Span, err error) {
	d := Diagnostic{Severity: SeverityError, Path: u.path, Span: span, Err: err}
	u.res.Diagnostics = append(u.res.Diagnostics, d)
	u.res.Err = multierr.Append(u.res.Err, d)
	u.x.opts.Error(d)
}

// needsRuntime records that el still depends on the runtime.
func (u *unit) needsRuntime(el *ast.JSXElement) {
	u.res.Dynamic = true
	if u.x.opts.Strict {
		u.fail(el.OpenSpan, fmt.Errorf("%w: <%s> has dynamic styles", ErrRuntimeRequired, el.Name))
	}
}

// componentName resolves the layout component an element refers to through
// the import or require binding of its tag.
func (x *Extractor) componentName(el *ast.JSXElement, s *scope.Scope) (string, bool) {
	head, member, _ := strings.Cut(el.Name, ".")
	b := s.Lookup(head)
	if b == nil || b.Import == nil || !x.modules[b.Import.Source] {
		return "", false
	}
	var name string
	switch {
	case member != "":
		if b.Import.Export != "*" || len(b.Path) != 0 || strings.Contains(member, ".") {
			return "", false
		}
		name = member
	case b.Import.Export == "*":
		if len(b.Path) != 1 || b.Path[0].Rest || b.Path[0].Key == "" {
			return "", false
		}
		name = b.Path[0].Key
	default:
		name = b.Import.Export
	}
	return name, styles.IsComponent(name)
}
