package types

// TableSpec is the YAML description of a resource table. One file compiles
// to one binary table holding one or more packages.
type TableSpec struct {
	Packages []PackageSpec     `yaml:"packages"`
	Assets   map[string]string `yaml:"assets,omitempty"`
}

// PackageSpec describes one package. An ID of 0 declares a shared library
// whose runtime id is assigned at load time.
type PackageSpec struct {
	Name      string        `yaml:"name"`
	ID        int           `yaml:"id"`
	Libraries []LibrarySpec `yaml:"libraries,omitempty"`
	Types     []TypeSpec    `yaml:"types"`
}

// LibrarySpec declares the build-time id a referenced shared library was
// compiled against.
type LibrarySpec struct {
	Name string `yaml:"name"`
	ID   int    `yaml:"id"`
}

// TypeSpec holds the entries of one resource type. Type ids follow list
// order starting at 1; entry ids follow list order starting at 0.
type TypeSpec struct {
	Name    string      `yaml:"name"`
	Entries []EntrySpec `yaml:"entries"`
}

type EntrySpec struct {
	Name   string            `yaml:"name"`
	Public bool              `yaml:"public,omitempty"`
	Values []ConfigValueSpec `yaml:"values"`
}

// ConfigValueSpec is one configuration variant of an entry. Exactly one of
// Value or Bag is set.
type ConfigValueSpec struct {
	Config string     `yaml:"config,omitempty"`
	Value  *ValueSpec `yaml:"value,omitempty"`
	Bag    *BagSpec   `yaml:"bag,omitempty"`
}

// ValueSpec is a typed value. Data is interpreted according to Type:
// references accept "0x7f010000", "type/entry" or "package:type/entry";
// strings are interned into the table's global string pool.
type ValueSpec struct {
	Type string `yaml:"type"`
	Data string `yaml:"data"`
}

type BagSpec struct {
	Parent string        `yaml:"parent,omitempty"`
	Items  []BagItemSpec `yaml:"items"`
}

type BagItemSpec struct {
	Key   string    `yaml:"key"`
	Value ValueSpec `yaml:",inline"`
}
