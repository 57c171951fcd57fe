package lattice

// Station is one element's place along the beamline: the path length at its
// entrance and its focusing strength, both read straight from the element
// parameters.
type Station struct {
	S        float64
	Element  Element
	Length   float64
	Strength float64
}

// Survey walks the lattice and accumulates path length. Thin elements and
// monitors contribute zero length.
func Survey(l Lattice) []Station {
	stations := make([]Station, 0, len(l))
	s := 0.0
	for _, e := range l {
		st := Station{S: s, Element: e, Length: length(e), Strength: strength(e)}
		stations = append(stations, st)
		s += st.Length
	}
	return stations
}

// PathLength returns the total beamline length in meters.
func PathLength(l Lattice) float64 {
	total := 0.0
	for _, e := range l {
		total += length(e)
	}
	return total
}

func length(e Element) float64 {
	if v, ok := e.Params.Get("ds"); ok && !v.IsString() {
		return v.Float()
	}
	return 0
}

func strength(e Element) float64 {
	var name string
	switch e.Kind {
	case Quad:
		name = "k"
	case ConstF:
		name = "kx"
	case Multipole:
		name = "K_normal"
	case Kicker:
		name = "xkick"
	default:
		return 0
	}
	if v, ok := e.Params.Get(name); ok && !v.IsString() {
		return v.Float()
	}
	return 0
}
