package validation

type kind int

const (
	kindRequired kind = iota
	kindNullable
	kindString
	kindEmail
	kindInt
	kindUUID
	kindMax
	kindMin
	kindIn
	kindUnique
	kindExists
)

// Check is one requirement on a field. Build checks with the constructors
// below rather than by hand.
type Check struct {
	kind   kind
	n      int
	values []string
	table  string
	column string
}

func Required() Check { return Check{kind: kindRequired} }

// Nullable lets an explicit JSON null through; the field is stored as NULL.
func Nullable() Check { return Check{kind: kindNullable} }

func String() Check { return Check{kind: kindString} }
func Email() Check  { return Check{kind: kindEmail} }
func Int() Check    { return Check{kind: kindInt} }
func UUID() Check   { return Check{kind: kindUUID} }

// Max bounds string length in characters, or integer value.
func Max(n int) Check { return Check{kind: kindMax, n: n} }

// Min bounds string length in characters, or integer value.
func Min(n int) Check { return Check{kind: kindMin, n: n} }

func In(values ...string) Check { return Check{kind: kindIn, values: values} }

// Unique requires that no other row of table has column equal to the value.
func Unique(table, column string) Check {
	return Check{kind: kindUnique, table: table, column: column}
}

// Exists requires a row of table with column equal to the value.
func Exists(table, column string) Check {
	return Check{kind: kindExists, table: table, column: column}
}

// Field declares the checks of one payload key.
type Field struct {
	Name   string
	Checks []Check
}

func F(name string, checks ...Check) Field {
	return Field{Name: name, Checks: checks}
}

func (f Field) has(k kind) bool {
	for _, c := range f.Checks {
		if c.kind == k {
			return true
		}
	}
	return false
}

// typ returns the declared value type of the field; fields without one
// accept strings and numbers and are normalized to strings.
func (f Field) typ() kind {
	for _, c := range f.Checks {
		switch c.kind {
		case kindString, kindEmail, kindInt, kindUUID:
			return c.kind
		}
	}
	return kindString
}

// Rules is the rule set of one operation, evaluated in declaration order.
type Rules []Field

// Partial derives the rule set of a partial update: every field becomes
// optional, all other checks stay.
func (r Rules) Partial() Rules {
	out := make(Rules, 0, len(r))
	for _, f := range r {
		checks := make([]Check, 0, len(f.Checks))
		for _, c := range f.Checks {
			if c.kind != kindRequired {
				checks = append(checks, c)
			}
		}
		out = append(out, Field{Name: f.Name, Checks: checks})
	}
	return out
}

// With returns a copy of r where the checks of field name are replaced.
func (r Rules) With(name string, checks ...Check) Rules {
	out := make(Rules, 0, len(r))
	for _, f := range r {
		if f.Name == name {
			f = Field{Name: name, Checks: checks}
		}
		out = append(out, f)
	}
	return out
}
