package validation

// Payload is the normalized result of a successful validation. Values are
// string, int64 or nil (explicit null on a Nullable field).
type Payload map[string]interface{}

// Has reports whether the field was supplied, including as null.
func (p Payload) Has(name string) bool {
	_, ok := p[name]
	return ok
}

func (p Payload) String(name string) string {
	s, _ := p[name].(string)
	return s
}

// OptString returns nil for absent or null fields.
func (p Payload) OptString(name string) *string {
	s, ok := p[name].(string)
	if !ok {
		return nil
	}
	return &s
}

// OptInt returns nil for absent or null fields.
func (p Payload) OptInt(name string) *int {
	n, ok := p[name].(int64)
	if !ok {
		return nil
	}
	v := int(n)
	return &v
}
