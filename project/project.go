// Package project reads jrust.toml and lays out a project on disk.
package project

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/naoina/toml"
)

// FileName is the project configuration file at the project root.
const FileName = "jrust.toml"

const (
	DefaultEntry   = "src/index.jr"
	DefaultOutput  = "generated"
	DefaultVersion = "0.1.0"
	DefaultEdition = "2021"
)

var ErrNoProject = errors.New("no " + FileName + " found")

var editions = map[string]bool{"2015": true, "2018": true, "2021": true, "2024": true}

// Unknown keys are rejected so typos do not go unnoticed.
var tomlSettings = toml.Config{
	NormFieldName: toml.DefaultConfig.NormFieldName,
	FieldToKey:    toml.DefaultConfig.FieldToKey,
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

type Config struct {
	Package Package `toml:"package"`
	Build   Build   `toml:"build"`
}

type Package struct {
	Name        string   `toml:"name"`
	Version     string   `toml:"version"`
	Edition     string   `toml:"edition"`
	Authors     []string `toml:"authors,omitempty"`
	Description string   `toml:"description,omitempty"`
}

type Build struct {
	// Entry is the entry module, relative to the project root.
	Entry string `toml:"entry"`
	// Output is the directory of the generated crate.
	Output string `toml:"output"`
	// SearchRoots are extra directories searched for local imports that
	// are not found next to the importing file.
	SearchRoots []string `toml:"search_roots,omitempty"`
}

// Default returns the configuration `jrust init` writes.
func Default(name string) *Config {
	return &Config{
		Package: Package{Name: name, Version: DefaultVersion, Edition: DefaultEdition},
		Build:   Build{Entry: DefaultEntry, Output: DefaultOutput},
	}
}

// Load reads a configuration file. Missing build settings take their
// defaults.
func Load(file string) (*Config, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := new(Config)
	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	if err != nil {
		return nil, err
	}
	cfg.fill()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	log.Debug("Loaded project config", "file", file, "name", cfg.Package.Name, "entry", cfg.Build.Entry)
	return cfg, nil
}

func (c *Config) fill() {
	if c.Package.Version == "" {
		c.Package.Version = DefaultVersion
	}
	if c.Package.Edition == "" {
		c.Package.Edition = DefaultEdition
	}
	if c.Build.Entry == "" {
		c.Build.Entry = DefaultEntry
	}
	if c.Build.Output == "" {
		c.Build.Output = DefaultOutput
	}
}

func (c *Config) validate() error {
	if c.Package.Name == "" {
		return errors.New("package name is required")
	}
	if !editions[c.Package.Edition] {
		return fmt.Errorf("unknown Rust edition %q", c.Package.Edition)
	}
	if filepath.Ext(c.Build.Entry) != ".jr" {
		return fmt.Errorf("entry %q is not a .jr file", c.Build.Entry)
	}
	return nil
}

// Marshal encodes c as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return tomlSettings.Marshal(c)
}

// EntryPath is the entry module's path under root.
func (c *Config) EntryPath(root string) string {
	return filepath.Join(root, filepath.FromSlash(c.Build.Entry))
}

// OutputPath is the generated crate's directory under root.
func (c *Config) OutputPath(root string) string {
	return filepath.Join(root, filepath.FromSlash(c.Build.Output))
}

// SearchPaths resolves the configured search roots under root.
func (c *Config) SearchPaths(root string) []string {
	var paths []string
	for _, r := range c.Build.SearchRoots {
		if filepath.IsAbs(r) {
			paths = append(paths, r)
		} else {
			paths = append(paths, filepath.Join(root, filepath.FromSlash(r)))
		}
	}
	return paths
}

// FindRoot returns the nearest directory at or above dir that holds a
// project file.
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProject
		}
		dir = parent
	}
}

const helloSource = `function main(): void {
    print("Hello, World!");
}
`

// Init creates a project in dir with a default configuration and an entry
// module. It refuses to overwrite an existing project file; an existing
// entry module is kept.
func Init(dir, name string) (*Config, error) {
	if name == "" {
		name = filepath.Base(dir)
	}
	name = strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	cfg := Default(name)

	file := filepath.Join(dir, FileName)
	if _, err := os.Stat(file); err == nil {
		return nil, fmt.Errorf("%s already exists", file)
	}
	out, err := cfg.Marshal()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(file, out, 0644); err != nil {
		return nil, err
	}
	log.Info("Wrote project config", "file", file)

	entry := cfg.EntryPath(dir)
	if _, err := os.Stat(entry); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(entry), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(entry, []byte(helloSource), 0644); err != nil {
			return nil, err
		}
		log.Info("Wrote entry module", "file", entry)
	}
	return cfg, nil
}
