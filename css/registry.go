package css

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Naming selects how class names are generated.
type Naming int

const (
	NamingCounter  Naming = iota // prefix + base-36 counter
	NamingHash                   // prefix + base-36 xxhash of the key
	NamingReadable               // prefix + slug of the key
)

// ParseNaming parses a naming mode name.
func ParseNaming(s string) (Naming, error) {
	switch strings.ToLower(s) {
	case "", "counter":
		return NamingCounter, nil
	case "hash":
		return NamingHash, nil
	case "readable":
		return NamingReadable, nil
	}
	return NamingCounter, fmt.Errorf("unknown class naming %q", s)
}

func (n Naming) String() string {
	switch n {
	case NamingHash:
		return "hash"
	case NamingReadable:
		return "readable"
	default:
		return "counter"
	}
}

// DefaultPrefix is prepended to every generated name.
const DefaultPrefix = "_x"

const readableMaxLength = 40

// Assignment is one key to class name mapping.
type Assignment struct {
	Key  string
	Name string
}

// ClassNameCache assigns class names to declaration keys. The first call for
// a key assigns, later calls return the same name.
type ClassNameCache struct {
	naming  Naming
	prefix  string
	names   map[string]string // key -> name
	owners  map[string]string // name -> key
	order   []string          // keys in assignment order
	counter int
}

// NewClassNameCache returns an empty cache.
func NewClassNameCache(naming Naming, prefix string) *ClassNameCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &ClassNameCache{
		naming: naming,
		prefix: prefix,
		names:  make(map[string]string),
		owners: make(map[string]string),
	}
}

// ClassName returns the class name for key, assigning one if needed.
func (c *ClassNameCache) ClassName(key string) string {
	if name, ok := c.names[key]; ok {
		return name
	}
	var name string
	switch c.naming {
	case NamingHash:
		name = c.unique(c.prefix + strconv.FormatUint(xxhash.Sum64String(key), 36))
	case NamingReadable:
		s := slug.Make(key)
		if len(s) > readableMaxLength {
			s = strings.TrimRight(s[:readableMaxLength], "-")
		}
		name = c.unique(c.prefix + s)
	default:
		name = c.nextCounterName()
	}
	c.assign(key, name)
	return name
}

// Seed records an assignment made elsewhere (for example loaded from a
// persistent store). Keys or names that are already taken are skipped.
func (c *ClassNameCache) Seed(key, name string) bool {
	if _, ok := c.names[key]; ok {
		return false
	}
	if _, ok := c.owners[name]; ok {
		return false
	}
	c.assign(key, name)
	if rest, ok := strings.CutPrefix(name, c.prefix); ok && c.naming == NamingCounter {
		if n, err := strconv.ParseInt(rest, 36, 64); err == nil && int(n) >= c.counter {
			c.counter = int(n) + 1
		}
	}
	return true
}

// Lookup returns the name assigned to key without assigning.
func (c *ClassNameCache) Lookup(key string) (string, bool) {
	name, ok := c.names[key]
	return name, ok
}

// Len returns number of assigned names.
func (c *ClassNameCache) Len() int {
	return len(c.order)
}

// Assignments returns all assignments in the order they were made.
func (c *ClassNameCache) Assignments() []Assignment {
	out := make([]Assignment, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, Assignment{Key: k, Name: c.names[k]})
	}
	return out
}

func (c *ClassNameCache) assign(key, name string) {
	c.names[key] = name
	c.owners[name] = key
	c.order = append(c.order, key)
}

func (c *ClassNameCache) nextCounterName() string {
	for {
		name := c.prefix + strconv.FormatInt(int64(c.counter), 36)
		c.counter++
		if _, taken := c.owners[name]; !taken {
			return name
		}
	}
}

func (c *ClassNameCache) unique(base string) string {
	if _, taken := c.owners[base]; !taken {
		return base
	}
	for i := 2; ; i++ {
		name := base + "-" + strconv.Itoa(i)
		if _, taken := c.owners[name]; !taken {
			return name
		}
	}
}

// Rule is an emitted CSS rule.
type Rule struct {
	Key  string
	Text string
}

// EmissionLog records emitted rules in order, at most once per key.
type EmissionLog struct {
	rules []Rule
	seen  map[string]struct{}
}

// NewEmissionLog returns an empty log.
func NewEmissionLog() *EmissionLog {
	return &EmissionLog{seen: make(map[string]struct{})}
}

// InsertRule appends text under key unless key was already emitted. It
// reports whether the rule was added.
func (l *EmissionLog) InsertRule(text, key string) bool {
	if _, ok := l.seen[key]; ok {
		return false
	}
	l.seen[key] = struct{}{}
	l.rules = append(l.rules, Rule{Key: key, Text: text})
	return true
}

// Rules returns emitted rules in emission order.
func (l *EmissionLog) Rules() []Rule {
	return l.rules
}

// Since returns rules emitted after the first n.
func (l *EmissionLog) Since(n int) []Rule {
	if n >= len(l.rules) {
		return nil
	}
	return l.rules[n:]
}

// Len returns number of emitted rules.
func (l *EmissionLog) Len() int {
	return len(l.rules)
}

// Registry turns declarations into class names, emitting each rule once.
type Registry struct {
	log     *zap.Logger
	names   *ClassNameCache
	emitted *EmissionLog
}

// NewRegistry combines a class name cache and an emission log. Either may be
// shared between registries.
func NewRegistry(names *ClassNameCache, emitted *EmissionLog, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	if names == nil {
		names = NewClassNameCache(NamingCounter, DefaultPrefix)
	}
	if emitted == nil {
		emitted = NewEmissionLog()
	}
	return &Registry{log: log.Named("css-registry"), names: names, emitted: emitted}
}

// Names returns the underlying class name cache.
func (r *Registry) Names() *ClassNameCache {
	return r.names
}

// Emitted returns the underlying emission log.
func (r *Registry) Emitted() *EmissionLog {
	return r.emitted
}

// Check reports whether d would be accepted by ClassFor without assigning
// a name or emitting anything.
func (r *Registry) Check(d Declaration) error {
	if d.Keyframes != nil {
		if err := CheckRule(KeyframesRule("x", d.Keyframes)); err != nil {
			return err
		}
		d.Value, d.Keyframes = "x", nil
	}
	return CheckRule(d.Rule("x"))
}

// CheckAll reports the first declaration of ds Check refuses.
func (r *Registry) CheckAll(ds []Declaration) error {
	for _, d := range ds {
		if err := r.Check(d); err != nil {
			return err
		}
	}
	return nil
}

// ClassFor returns the class for d, emitting its rule (and keyframes) when
// seen for the first time. Rules that do not parse back as CSS are refused
// before a name is assigned.
func (r *Registry) ClassFor(d Declaration) (string, error) {
	if d.Keyframes != nil {
		key := KeyframesKey(d.Keyframes)
		name, known := r.names.Lookup(key)
		if !known {
			if err := r.Check(d); err != nil {
				return "", err
			}
			name = r.names.ClassName(key)
		}
		if r.emitted.InsertRule(KeyframesRule(name, d.Keyframes), key) {
			r.log.Debug("Emitted keyframes", zap.String("name", name))
		}
		d.Value = name
		d.Keyframes = nil
	}
	key := d.Key()
	cls, known := r.names.Lookup(key)
	if !known {
		if err := CheckRule(d.Rule("x")); err != nil {
			return "", err
		}
		cls = r.names.ClassName(key)
	}
	if r.emitted.InsertRule(d.Rule(cls), key) {
		r.log.Debug("Emitted rule", zap.String("class", cls), zap.String("key", key))
	}
	return cls, nil
}

// ClassesFor returns classes for ds in order, without duplicates. A refused
// declaration aborts the whole set before any rule is emitted.
func (r *Registry) ClassesFor(ds []Declaration) ([]string, error) {
	if err := r.CheckAll(ds); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ds))
	seen := make(map[string]struct{}, len(ds))
	for _, d := range ds {
		cls, err := r.ClassFor(d)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[cls]; ok {
			continue
		}
		seen[cls] = struct{}{}
		out = append(out, cls)
	}
	return out, nil
}
