// Package lattice models the zero-ness abstract domain behind the divisor
// advisories: how much a straight-line reading of the code knows about an
// integer value being zero.
package lattice

// Zeroness is one point of the domain. Bottom marks values no execution
// reaches, Top marks values nothing is known about.
type Zeroness int

const (
	Bottom Zeroness = iota
	Zero
	NonZero
	MaybeZero
	Top
)

func (z Zeroness) String() string {
	switch z {
	case Bottom:
		return "unreachable"
	case Zero:
		return "zero"
	case NonZero:
		return "nonzero"
	case MaybeZero:
		return "maybe-zero"
	case Top:
		return "unknown"
	default:
		return "invalid"
	}
}

// Join returns the least upper bound of z and o: the weakest fact implied
// by both.
func (z Zeroness) Join(o Zeroness) Zeroness {
	if z == Bottom {
		return o
	}
	if o == Bottom {
		return z
	}
	if z == Top || o == Top {
		return Top
	}
	if z == o {
		return z
	}
	// Zero with NonZero, or anything with MaybeZero.
	return MaybeZero
}

// Meet returns the greatest lower bound of z and o: the strongest fact
// consistent with both. Contradictory facts meet at Bottom.
func (z Zeroness) Meet(o Zeroness) Zeroness {
	if z == Bottom || o == Bottom {
		return Bottom
	}
	if z == Top {
		return o
	}
	if o == Top {
		return z
	}
	if z == o {
		return z
	}
	if z == MaybeZero {
		return o
	}
	if o == MaybeZero {
		return z
	}
	return Bottom
}

// State maps variable names to zero-ness facts. Names without an entry
// are Top.
type State map[string]Zeroness

// Get returns the recorded fact for name, Top when absent.
func (s State) Get(name string) Zeroness {
	if z, ok := s[name]; ok {
		return z
	}
	return Top
}

// Set records a fact, dropping entries that carry no information.
func (s State) Set(name string, z Zeroness) {
	if z == Top {
		delete(s, name)
		return
	}
	s[name] = z
}

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for name, z := range s {
		out[name] = z
	}
	return out
}

// Join merges two states variable-wise into a fresh state, keeping only
// facts that survive either path.
func (s State) Join(o State) State {
	out := make(State)
	for name, z := range s {
		out.Set(name, z.Join(o.Get(name)))
	}
	for name, z := range o {
		if _, ok := s[name]; ok {
			continue
		}
		out.Set(name, z.Join(s.Get(name)))
	}
	return out
}
