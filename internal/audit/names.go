package audit

import "fmt"

// Registry maps entity types to their human labels and "name-like"
// columns. It replaces probing arbitrary struct fields at runtime: every
// auditable entity declares up front which columns can serve as its
// display name, in priority order.
type Registry struct {
	labels map[string]string
	fields map[string][]string
}

// NewRegistry returns a registry preloaded with the application's
// entities. Unknown types fall back to the raw type name and primary key.
func NewRegistry() *Registry {
	r := &Registry{
		labels: map[string]string{},
		fields: map[string][]string{},
	}
	r.Register("CashBox", "cash box", "name", "code")
	r.Register("CashTransaction", "cash transaction", "voucher_number")
	r.Register("User", "user", "full_name", "username")
	r.Register("Session", "session", "id")
	return r
}

// Register declares the label and the prioritized name columns for one
// entity type.
func (r *Registry) Register(entityType, label string, nameColumns ...string) {
	r.labels[entityType] = label
	r.fields[entityType] = nameColumns
}

// Label returns the human label for an entity type.
func (r *Registry) Label(entityType string) string {
	if l, ok := r.labels[entityType]; ok {
		return l
	}
	return entityType
}

// DisplayName picks the first non-empty registered name column out of the
// row's values, falling back to the primary key rendered as a string.
func (r *Registry) DisplayName(entityType string, values map[string]any, pk any) string {
	for _, col := range r.fields[entityType] {
		if v, ok := values[col]; ok {
			switch s := v.(type) {
			case string:
				if s != "" {
					return s
				}
			case []byte:
				if len(s) > 0 {
					return string(s)
				}
			}
		}
	}
	return fmt.Sprint(pk)
}
