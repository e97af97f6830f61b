package db

// PredicateBuilder is a fluent builder for search predicates.
type PredicateBuilder struct {
	def PredicateDefinition
}

// NewPredicate starts building a predicate over the given columns.
func NewPredicate(fields ...string) *PredicateBuilder {
	return &PredicateBuilder{
		def: PredicateDefinition{
			Fields:          append([]string(nil), fields...),
			NormalizeFunc:   DefaultNormalizeFunc,
			PublishedColumn: DefaultPublishedColumn,
			Operator:        OperatorLike,
		},
	}
}

// Terms adds terms that must all match.
func (b *PredicateBuilder) Terms(terms ...string) *PredicateBuilder {
	b.def.Terms = append(b.def.Terms, terms...)
	return b
}

// Operator sets the comparison operator.
func (b *PredicateBuilder) Operator(op Operator) *PredicateBuilder {
	b.def.Operator = op
	return b
}

// NormalizeFunc sets the SQL normalization function name.
func (b *PredicateBuilder) NormalizeFunc(name string) *PredicateBuilder {
	b.def.NormalizeFunc = name
	return b
}

// PublishedColumn sets the publication guard column. Empty disables the guard.
func (b *PredicateBuilder) PublishedColumn(col string) *PredicateBuilder {
	b.def.PublishedColumn = col
	return b
}

// Build validates and renders the predicate.
func (b *PredicateBuilder) Build() (Clause, error) {
	if err := b.def.Validate(); err != nil {
		return Clause{}, err
	}
	return b.def.Render(), nil
}

// MustBuild calls Build and panics on error.
func (b *PredicateBuilder) MustBuild() Clause {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
