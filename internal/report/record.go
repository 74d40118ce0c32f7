package report

// RepositoryField is the record field naming the owning repository. It is
// present on org- and enterprise-scope records and used to attribute admin
// logins per row.
const RepositoryField = "repository"

// Field is a single named column value of a flattened alert.
type Field struct {
	Name  string
	Value string
}

// Record is an ordered list of fields. Order matters: the CSV header is the
// field names of the first record, so every record of one feature must add
// its fields in the same order.
type Record struct {
	fields []Field
}

func (r *Record) Add(name, value string) {
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

func (r *Record) Len() int {
	return len(r.fields)
}

func (r *Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

func (r *Record) Values() []string {
	values := make([]string, len(r.fields))
	for i, f := range r.fields {
		values[i] = f.Value
	}
	return values
}

func (r *Record) Get(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Repository returns the record's repository full name, or "" when the
// record has no repository field (single-repository scope).
func (r *Record) Repository() string {
	v, _ := r.Get(RepositoryField)
	return v
}
