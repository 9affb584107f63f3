package domain

// Tag is one documentation tag with its raw value.
type Tag struct {
	Name  string
	Value string
}

// Tags is an ordered tag list. Later values of the same name replace earlier ones.
type Tags []Tag

// Get returns the value of the named tag.
func (t Tags) Get(name string) (string, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Name == name {
			return t[i].Value, true
		}
	}
	return "", false
}

// Has reports whether the named tag is present.
func (t Tags) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Set replaces the named tag in place or appends it.
func (t Tags) Set(name, value string) Tags {
	for i := range t {
		if t[i].Name == name {
			t[i].Value = value
			return t
		}
	}
	return append(t, Tag{Name: name, Value: value})
}
