package features

// Feature is one model input. Sources lists alternative augmented columns
// that may supply it when Name itself is absent, tried in order.
type Feature struct {
	Name    string   `yaml:"name" json:"name"`
	Sources []string `yaml:"sources,omitempty" json:"sources,omitempty"`
}

// Schema is the ordered input layout of one model.
type Schema struct {
	Model    string
	Features []Feature
}

// Vector is a model-ordered projection of an augmented record.
type Vector struct {
	Names  []string
	Values []float64
}

// Len returns the number of features.
func (v Vector) Len() int { return len(v.Values) }

// With returns a copy of v whose i-th value is replaced.
func (v Vector) With(i int, value float64) Vector {
	values := make([]float64, len(v.Values))
	copy(values, v.Values)
	values[i] = value
	return Vector{Names: v.Names, Values: values}
}

// Names returns the feature names in model order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Features))
	for i, f := range s.Features {
		out[i] = f.Name
	}
	return out
}

// Project selects and renames the schema's features from a. Extra columns in
// a are ignored; every unresolved feature is reported at once.
func (s Schema) Project(a Augmented) (Vector, error) {
	vec := Vector{Names: s.Names(), Values: make([]float64, len(s.Features))}
	var missing []string
	for i, f := range s.Features {
		v, ok := resolve(a, f)
		if !ok {
			missing = append(missing, f.Name)
			continue
		}
		vec.Values[i] = v
	}
	if len(missing) > 0 {
		return Vector{}, &FeatureMismatchError{Model: s.Model, Missing: missing}
	}
	return vec, nil
}

// Check verifies that v matches the schema's length and order.
func (s Schema) Check(v Vector) error {
	if v.Len() != len(s.Features) || len(v.Names) != len(s.Features) {
		return &FeatureMismatchError{Model: s.Model, Want: len(s.Features), Got: v.Len()}
	}
	var missing []string
	for i, f := range s.Features {
		if v.Names[i] != f.Name {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return &FeatureMismatchError{Model: s.Model, Missing: missing}
	}
	return nil
}

func resolve(a Augmented, f Feature) (float64, bool) {
	if v, ok := a[f.Name]; ok {
		return v, true
	}
	for _, src := range f.Sources {
		if v, ok := a[src]; ok {
			return v, true
		}
	}
	return 0, false
}
