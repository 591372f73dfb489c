package types

// ValueReport describes one resolved value in reports and API responses.
type ValueReport struct {
	ResID          string `yaml:"resid" json:"resid"`
	Name           string `yaml:"name,omitempty" json:"name,omitempty"`
	Configuration  string `yaml:"configuration" json:"configuration"`
	SelectedConfig string `yaml:"selected_config,omitempty" json:"selected_config,omitempty"`
	Type           string `yaml:"type" json:"type"`
	Data           string `yaml:"data" json:"data"`
	Display        string `yaml:"display" json:"display"`
	Cookie         int32  `yaml:"cookie" json:"cookie"`
	Source         string `yaml:"source,omitempty" json:"source,omitempty"`
	TypeSpecFlags  string `yaml:"type_spec_flags" json:"type_spec_flags"`
	LastReference  string `yaml:"last_reference,omitempty" json:"last_reference,omitempty"`
}

type BagEntryReport struct {
	Key     string `yaml:"key" json:"key"`
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Type    string `yaml:"type" json:"type"`
	Data    string `yaml:"data" json:"data"`
	Display string `yaml:"display" json:"display"`
	Cookie  int32  `yaml:"cookie" json:"cookie"`
}

type BagReport struct {
	ResID         string           `yaml:"resid" json:"resid"`
	Name          string           `yaml:"name,omitempty" json:"name,omitempty"`
	Configuration string           `yaml:"configuration" json:"configuration"`
	TypeSpecFlags string           `yaml:"type_spec_flags" json:"type_spec_flags"`
	Entries       []BagEntryReport `yaml:"entries" json:"entries"`
}

// ThemeReport lists the styles applied to a theme and the attributes read
// back from it.
type ThemeReport struct {
	Configuration string        `yaml:"configuration" json:"configuration"`
	Styles        []string      `yaml:"styles" json:"styles"`
	TypeSpecFlags string        `yaml:"type_spec_flags" json:"type_spec_flags"`
	Attributes    []ValueReport `yaml:"attributes" json:"attributes"`
}

// SourceReport summarises one loaded source.
type SourceReport struct {
	Cookie          int32    `yaml:"cookie" json:"cookie"`
	Path            string   `yaml:"path" json:"path"`
	System          bool     `yaml:"system" json:"system"`
	ManifestPackage string   `yaml:"manifest_package,omitempty" json:"manifest_package,omitempty"`
	Packages        []string `yaml:"packages" json:"packages"`
}
