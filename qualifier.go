package berth

// Qualifier narrows a typed lookup. With no qualifier only unnamed beans match.
type Qualifier interface {
	matches(beanName string) bool
	String() string
}

type namedQualifier string

func (q namedQualifier) matches(beanName string) bool { return beanName == string(q) }
func (q namedQualifier) String() string               { return "named(" + string(q) + ")" }

type anyQualifier struct{}

func (anyQualifier) matches(string) bool { return true }
func (anyQualifier) String() string      { return "any" }

// Named matches the bean registered with WithName(name).
func Named(name string) Qualifier {
	return namedQualifier(name)
}

// AnyQualifier matches every bean of the requested type.
func AnyQualifier() Qualifier {
	return anyQualifier{}
}

func matchesAll(quals []Qualifier, beanName string) bool {
	if len(quals) == 0 {
		return beanName == ""
	}

	for _, q := range quals {
		if !q.matches(beanName) {
			return false
		}
	}

	return true
}
