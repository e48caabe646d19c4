package project

type cargoManifest struct {
	Package cargoPackage `toml:"package"`
	Bin     []cargoBin   `toml:"bin"`
}

type cargoPackage struct {
	Name        string   `toml:"name"`
	Version     string   `toml:"version"`
	Edition     string   `toml:"edition"`
	Authors     []string `toml:"authors,omitempty"`
	Description string   `toml:"description,omitempty"`
}

type cargoBin struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// Cargo renders the Cargo.toml of the generated crate. The binary's root is
// main.rs next to the manifest.
func (c *Config) Cargo() ([]byte, error) {
	m := cargoManifest{
		Package: cargoPackage{
			Name:        c.Package.Name,
			Version:     c.Package.Version,
			Edition:     c.Package.Edition,
			Authors:     c.Package.Authors,
			Description: c.Package.Description,
		},
		Bin: []cargoBin{{Name: c.Package.Name, Path: "main.rs"}},
	}
	return tomlSettings.Marshal(&m)
}
