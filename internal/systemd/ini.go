package systemd

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// UnitOption is a single directive from a unit file section.
type UnitOption struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// UnitFile is a parsed systemd unit fragment.
type UnitFile struct {
	file *ini.File
}

// LoadUnitFile parses the unit fragment at path using go-ini. Repeated
// directives such as ExecStartPre are kept as separate options in file order.
func LoadUnitFile(path string) (*UnitFile, error) {
	file, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit file %s: %w", path, err)
	}
	return &UnitFile{file: file}, nil
}

// Section returns the directives of the named section, nil when the section
// is absent or empty.
func (f *UnitFile) Section(name string) []UnitOption {
	section, err := f.file.GetSection(name)
	if err != nil {
		return nil
	}

	var opts []UnitOption
	for _, key := range section.Keys() {
		for _, value := range key.ValueWithShadows() {
			opts = append(opts, UnitOption{Key: key.Name(), Value: value})
		}
	}
	return opts
}

// Sections lists the non-empty section names present in the fragment.
func (f *UnitFile) Sections() []string {
	var names []string
	for _, section := range f.file.Sections() {
		if section.Name() == ini.DefaultSection || len(section.Keys()) == 0 {
			continue
		}
		names = append(names, section.Name())
	}
	return names
}
