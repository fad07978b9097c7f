package state

import "sort"

// Context represents accumulated conversation state
type Context map[string]Value

// NewContext creates an empty context
func NewContext() Context {
	return Context{}
}

// FromMap converts Go native map into a context
func FromMap(values map[string]interface{}) Context {
	ret := make(Context, len(values))
	for k, v := range values {
		ret[k] = Of(v)
	}
	return ret
}

// Lookup returns value and presence flag
func (c Context) Lookup(name string) (Value, bool) {
	if c == nil {
		return Null(), false
	}
	v, ok := c[name]
	return v, ok
}

// Set sets a value
func (c Context) Set(name string, value Value) {
	c[name] = value
}

// Clone returns a shallow copy, nil context is cloned into an empty one
func (c Context) Clone() Context {
	ret := make(Context, len(c))
	for k, v := range c {
		ret[k] = v
	}
	return ret
}

// Merge returns a new context with entries of others applied over c
func (c Context) Merge(others ...Context) Context {
	ret := c.Clone()
	for _, other := range others {
		for k, v := range other {
			ret[k] = v
		}
	}
	return ret
}

// Keys returns sorted keys
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns Go native representation
func (c Context) Map() map[string]interface{} {
	ret := make(map[string]interface{}, len(c))
	for k, v := range c {
		ret[k] = v.Interface()
	}
	return ret
}
