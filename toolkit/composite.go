package toolkit

// Thickness is the composite shape margins/paddings are represented as;
// adapters return this (rather than four loose numbers) from ReadProperty
// when a property is thickness-typed, so the analyzer can format it as
// the spec's "(l,t,r,b)" tuple notation.
type Thickness struct {
	Left, Top, Right, Bottom float64
}

// Color is the composite shape colors/brushes are represented as;
// adapters return this from ReadProperty for color-typed properties, so
// the analyzer can format it as "#AARRGGBB".
type Color struct {
	A, R, G, B uint8
}
