package vowpal

// Arg is one command line option for vw. HasValue is false for bare flags
// such as --conjugate_gradient.
type Arg struct {
	Name     string
	Value    string
	HasValue bool
}

// Flag returns an option without a value.
func Flag(name string) Arg {
	return Arg{Name: name}
}

// Option returns an option followed by value.
func Option(name, value string) Arg {
	return Arg{Name: name, Value: value, HasValue: true}
}

// Args is an ordered set of options keyed by name.
type Args []Arg

// Get returns the option with the given name.
func (a Args) Get(name string) (Arg, bool) {
	for _, arg := range a {
		if arg.Name == name {
			return arg, true
		}
	}
	return Arg{}, false
}

// Set returns a copy of a with arg set. An existing option with the same name
// is replaced in place, otherwise arg is appended.
func (a Args) Set(arg Arg) Args {
	out := append(Args(nil), a...)
	for i := range out {
		if out[i].Name == arg.Name {
			out[i] = arg
			return out
		}
	}
	return append(out, arg)
}

// Merge overlays other onto a. Options in other win on name collisions and keep
// the position they had in a; new names are appended in the order of other.
func (a Args) Merge(other Args) Args {
	out := append(Args(nil), a...)
	for _, arg := range other {
		out = out.Set(arg)
	}
	return out
}

// Flatten returns the argv tokens for the options.
func (a Args) Flatten() []string {
	var out []string
	for _, arg := range a {
		out = append(out, arg.Name)
		if arg.HasValue {
			out = append(out, arg.Value)
		}
	}
	return out
}
