package redisbus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dermesser/redisbus/codec"
)

// Bind maps positional and keyword arguments onto params. Positional arguments bind in
// declaration order; omitted parameters take their default. Every value in the result is
// normalized, i.e. it is what a worker decoding the call would see.
func Bind(params []Param, args []any, kwargs map[string]any) (Args, error) {
	if len(args) > len(params) {
		return nil, &BindingError{Message: fmt.Sprintf("takes %d positional arguments but %d were given", len(params), len(args))}
	}

	c := codec.Default()
	bound := make(Args, len(params))

	for i, a := range args {
		v, err := c.Normalize(a)
		if err != nil {
			return nil, &BindingError{Message: fmt.Sprintf("argument %q: %v", params[i].Name, err)}
		}
		bound[params[i].Name] = v
	}

	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !hasParam(params, name) {
			return nil, &BindingError{Message: fmt.Sprintf("got an unexpected keyword argument %q", name)}
		}
		if _, dup := bound[name]; dup {
			return nil, &BindingError{Message: fmt.Sprintf("got multiple values for argument %q", name)}
		}
		v, err := c.Normalize(kwargs[name])
		if err != nil {
			return nil, &BindingError{Message: fmt.Sprintf("argument %q: %v", name, err)}
		}
		bound[name] = v
	}

	for _, p := range params {
		if _, ok := bound[p.Name]; ok {
			continue
		}
		if !p.HasDefault {
			return nil, &BindingError{Message: fmt.Sprintf("missing required argument %q", p.Name)}
		}
		v, err := c.Normalize(p.Default)
		if err != nil {
			return nil, &BindingError{Message: fmt.Sprintf("default of %q: %v", p.Name, err)}
		}
		bound[p.Name] = v
	}
	return bound, nil
}

func hasParam(params []Param, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

/*
ResolveCacheKey binds the arguments of a call and interpolates them into template.

ok is false when template is empty, i.e. the method is not cached. Placeholders are
written as {name} where name is a declared parameter; {{ and }} produce literal braces.
Values are formatted with fmt.Sprint. A template naming an unknown parameter or with
unbalanced braces yields a *KeyFormatError; arguments that do not bind yield a *BindingError.
*/
func ResolveCacheKey(template string, params []Param, args []any, kwargs map[string]any) (key string, ok bool, err error) {
	if template == "" {
		return "", false, nil
	}
	bound, err := Bind(params, args, kwargs)
	if err != nil {
		return "", false, err
	}
	key, err = renderKey(template, bound)
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}

// CheckTemplate verifies that template parses and only names declared parameters.
func CheckTemplate(template string, params []Param) error {
	segs, err := parseTemplate(template)
	if err != nil {
		return err
	}
	for _, s := range segs {
		if s.field && !hasParam(params, s.text) {
			return &KeyFormatError{Template: template, Message: fmt.Sprintf("unknown parameter %q", s.text)}
		}
	}
	return nil
}

func renderKey(template string, bound Args) (string, error) {
	segs, err := parseTemplate(template)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, s := range segs {
		if !s.field {
			b.WriteString(s.text)
			continue
		}
		v, ok := bound[s.text]
		if !ok {
			return "", &KeyFormatError{Template: template, Message: fmt.Sprintf("unknown parameter %q", s.text)}
		}
		fmt.Fprint(&b, v)
	}
	return b.String(), nil
}

type segment struct {
	text  string
	field bool
}

func parseTemplate(template string) ([]segment, error) {
	var segs []segment
	var lit strings.Builder

	for i := 0; i < len(template); i++ {
		switch c := template[i]; c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(template[i+1:], "{}")
			if end < 0 || template[i+1+end] != '}' {
				return nil, &KeyFormatError{Template: template, Message: fmt.Sprintf("unclosed '{' at offset %d", i)}
			}
			name := template[i+1 : i+1+end]
			if name == "" {
				return nil, &KeyFormatError{Template: template, Message: "empty placeholder"}
			}
			if lit.Len() > 0 {
				segs = append(segs, segment{text: lit.String()})
				lit.Reset()
			}
			segs = append(segs, segment{text: name, field: true})
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, &KeyFormatError{Template: template, Message: fmt.Sprintf("single '}' at offset %d", i)}
		default:
			lit.WriteByte(c)
		}
	}
	if lit.Len() > 0 {
		segs = append(segs, segment{text: lit.String()})
	}
	return segs, nil
}
