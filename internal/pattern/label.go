package pattern

// TypeRef is what a type slot resolves to: either a concrete Label or an
// UnboundVariable standing in for a type.
type TypeRef interface {
	typeRef()
	String() string
}

// Label names a type. Role types are scoped by their relation
// (marriage:husband); every other label is unscoped.
type Label struct {
	Scope string
	Name  string
}

// NewLabel returns an unscoped label.
func NewLabel(name string) Label {
	return Label{Name: name}
}

// NewScopedLabel returns a label qualified by scope.
func NewScopedLabel(scope, name string) Label {
	return Label{Scope: scope, Name: name}
}

func (Label) typeRef() {}

// IsScoped reports whether the label carries a scope.
func (l Label) IsScoped() bool {
	return l.Scope != ""
}

func (l Label) String() string {
	if l.IsScoped() {
		return l.Scope + ":" + l.Name
	}
	return l.Name
}
