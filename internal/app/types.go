package app

// OpenRequest lists the sources to load. System sources are loaded first,
// in order, followed by the remaining sources.
type OpenRequest struct {
	SystemSources []string
	Sources       []string
	Configuration string
	// Package is the default package for names without one. When empty
	// the first package of the last loaded source is used.
	Package string
}

type ResolveRequest struct {
	Ref      string
	Density  string
	MayBeBag bool
	// Follow resolves references through to their final value.
	Follow bool
}

type BagRequest struct {
	Ref string
}

type ThemeStyle struct {
	Ref   string
	Force bool
}

type ThemeRequest struct {
	Styles     []ThemeStyle
	Attributes []string
	// Follow resolves attribute values through the manager's references.
	Follow bool
}

type CompileRequest struct {
	SpecPath   string
	OutputPath string
}

type CompileResult struct {
	OutputPath string
	Packages   []string
	Bytes      int
}
