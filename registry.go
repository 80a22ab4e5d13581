package redisbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dermesser/redisbus/broker"
	"github.com/dermesser/redisbus/log"
	"github.com/gobwas/glob"
)

// Method is a registered method record. Records are never mutated once stored.
type Method struct {
	Name string
	// Target is the reference passed to RegisterTarget.
	Target string
	// CacheKey is the cache key template; empty if the method is not cached.
	CacheKey string
}

// Cached reports whether outcomes of this method are cached.
func (m *Method) Cached() bool {
	return m.CacheKey != ""
}

// Resolve returns the target from this process' target table.
func (m *Method) Resolve() (*Target, error) {
	t, ok := LookupTarget(m.Target)
	if !ok {
		return nil, &RegistrationError{Target: m.Target, Reason: "no such target linked into this process"}
	}
	return t, nil
}

// Stored in <ns>:methods. "ck" is null for uncached methods.
type methodRecord struct {
	Fn string  `json:"fn"`
	Ck *string `json:"ck"`
}

func (m *Method) marshal() ([]byte, error) {
	r := methodRecord{Fn: m.Target}
	if m.CacheKey != "" {
		ck := m.CacheKey
		r.Ck = &ck
	}
	return json.Marshal(r)
}

func unmarshalMethod(name string, data []byte) (*Method, error) {
	var r methodRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("redisbus: corrupt method record %q: %w", name, err)
	}
	m := &Method{Name: name, Target: r.Fn}
	if r.Ck != nil {
		m.CacheKey = *r.Ck
	}
	return m, nil
}

type registerOptions struct {
	name     string
	cacheKey string
}

// RegisterOption configures a single registration.
type RegisterOption func(*registerOptions)

// WithMethodName overrides the default method name (the target's last path segment,
// prefixed with the bus prefix).
func WithMethodName(name string) RegisterOption {
	return func(o *registerOptions) {
		o.name = name
	}
}

// WithCacheKey caches the method's outcomes under the given key template, e.g. "{user}/{page}".
func WithCacheKey(template string) RegisterOption {
	return func(o *registerOptions) {
		o.cacheKey = template
	}
}

/*
Register stores a method record for the target registered under ref, and returns it.
Registering an existing name replaces its record.

The target must be registered with RegisterTarget in this process, and in every worker
process that serves the method. References into package main are refused, as are
cache templates naming parameters the target does not declare.
*/
func (b *Bus) Register(ctx context.Context, ref string, opts ...RegisterOption) (*Method, error) {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := checkTargetRef(ref); err != nil {
		return nil, err
	}
	t, _ := LookupTarget(ref)
	if o.cacheKey != "" {
		if err := CheckTemplate(o.cacheKey, t.Params); err != nil {
			return nil, err
		}
	}

	m := &Method{Name: o.name, Target: ref, CacheKey: o.cacheKey}
	if m.Name == "" {
		m.Name = b.prefix + ref[strings.LastIndex(ref, ".")+1:]
	}
	if strings.ContainsAny(m.Name, ":*?[") {
		return nil, &RegistrationError{Target: ref, Reason: fmt.Sprintf("invalid method name %q", m.Name)}
	}

	data, err := m.marshal()
	if err != nil {
		return nil, err
	}
	if err := b.broker.HashSet(ctx, b.MethodsKey(), m.Name, data); err != nil {
		return nil, err
	}
	if b.methods != nil {
		b.methods.Remove(m.Name)
	}

	log.Log(log.LOGLEVEL_INFO, "registered method", m.Name, "->", ref)
	return m, nil
}

// Lookup returns the record of the named method, or a *NotFoundError.
func (b *Bus) Lookup(ctx context.Context, name string) (*Method, error) {
	if b.methods != nil {
		if m, ok := b.methods.Get(name); ok {
			return m, nil
		}
	}

	data, err := b.broker.HashGet(ctx, b.MethodsKey(), name)
	if errors.Is(err, broker.ErrNil) {
		return nil, &NotFoundError{Method: name}
	} else if err != nil {
		return nil, err
	}

	m, err := unmarshalMethod(name, data)
	if err != nil {
		return nil, err
	}
	if b.methods != nil {
		b.methods.Add(name, m)
	}
	return m, nil
}

// AllMethods returns the sorted names of all registered methods.
func (b *Bus) AllMethods(ctx context.Context) ([]string, error) {
	names, err := b.broker.HashFields(ctx, b.MethodsKey())
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// List returns the sorted names of the methods matching a glob pattern
// ("*", "?", "[...]" and "{a,b}"). An empty pattern means ServePattern().
func (b *Bus) List(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = b.ServePattern()
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("bad method pattern %q: %v", pattern, err)}
	}

	names, err := b.AllMethods(ctx)
	if err != nil {
		return nil, err
	}
	matched := names[:0]
	for _, n := range names {
		if g.Match(n) {
			matched = append(matched, n)
		}
	}
	return matched, nil
}

// Reset deletes every key of the namespace: methods, pending calls, results and cache.
func (b *Bus) Reset(ctx context.Context) error {
	keys, err := b.broker.Keys(ctx, b.name+":*")
	if err != nil {
		return err
	}
	if b.methods != nil {
		b.methods.Purge()
	}
	if len(keys) == 0 {
		return nil
	}
	log.Log(log.LOGLEVEL_INFO, "reset bus", b.name, "deleting", len(keys), "keys")
	return b.broker.Delete(ctx, keys...)
}
