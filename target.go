package redisbus

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dermesser/redisbus/codec"
)

// Func is the executable part of a target. args holds every declared parameter,
// with defaults applied.
type Func func(ctx context.Context, args Args) (any, error)

// Param declares one parameter of a target. Parameters bind positionally in
// declaration order, or by name.
type Param struct {
	Name    string
	Default any
	// HasDefault marks the parameter as optional.
	HasDefault bool
}

// Required declares a parameter without default.
func Required(name string) Param {
	return Param{Name: name}
}

// Optional declares a parameter that takes def when the caller omits it.
func Optional(name string, def any) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// Target is executable logic plus its statically declared parameter list.
type Target struct {
	Params []Param
	Func   Func
}

var targets = struct {
	sync.RWMutex
	m map[string]*Target
}{m: make(map[string]*Target)}

/*
RegisterTarget makes t resolvable under ref in this process. ref is a dotted path,
conventionally "<package>.<function>". Call it from init() in a package that both clients
and workers link.

It panics if ref is registered twice, t has no Func, or two parameters share a name.
*/
func RegisterTarget(ref string, t Target) {
	if t.Func == nil {
		panic("redisbus: RegisterTarget " + ref + " without Func")
	}
	seen := make(map[string]bool, len(t.Params))
	for _, p := range t.Params {
		if p.Name == "" || seen[p.Name] {
			panic(fmt.Sprintf("redisbus: RegisterTarget %s: bad or duplicate parameter %q", ref, p.Name))
		}
		seen[p.Name] = true
	}

	targets.Lock()
	defer targets.Unlock()

	if _, dup := targets.m[ref]; dup {
		panic("redisbus: RegisterTarget called twice for " + ref)
	}
	targets.m[ref] = &t
}

// LookupTarget returns the target registered under ref.
func LookupTarget(ref string) (*Target, bool) {
	targets.RLock()
	defer targets.RUnlock()
	t, ok := targets.m[ref]
	return t, ok
}

// Targets returns the sorted references of all registered targets.
func Targets() []string {
	targets.RLock()
	defer targets.RUnlock()

	refs := make([]string, 0, len(targets.m))
	for ref := range targets.m {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

func checkTargetRef(ref string) error {
	if ref == "" {
		return &RegistrationError{Target: ref, Reason: "empty target reference"}
	}
	if strings.HasPrefix(ref, "main.") {
		return &RegistrationError{Target: ref, Reason: `targets in package "main" cannot be resolved by other processes`}
	}
	if !strings.Contains(ref, ".") {
		return &RegistrationError{Target: ref, Reason: "target reference must be qualified as <package>.<name>"}
	}
	if _, ok := LookupTarget(ref); !ok {
		return &RegistrationError{Target: ref, Reason: "no such target linked into this process"}
	}
	return nil
}

// Args are the bound arguments of one call, keyed by parameter name.
type Args map[string]any

func (a Args) Get(name string) any {
	return a[name]
}

// String returns the argument as a string; non-string values are formatted with fmt.Sprint.
func (a Args) String(name string) string {
	switch v := a[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns an integral argument, or 0 if it is missing or not a number.
func (a Args) Int(name string) int64 {
	switch v := a[name].(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Float returns a numeric argument as float64, or 0.
func (a Args) Float(name string) float64 {
	switch v := a[name].(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	default:
		return float64(a.Int(name))
	}
}

func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Decode converts the argument into v (a pointer), e.g. into a struct.
func (a Args) Decode(name string, v any) error {
	c := codec.Default()
	b, err := c.Marshal(a[name])
	if err != nil {
		return err
	}
	return c.Unmarshal(b, v)
}
