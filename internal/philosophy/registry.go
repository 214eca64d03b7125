package philosophy

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry holds the active profile set
type Registry struct {
	profiles map[Name]Profile
}

// Builtin returns a registry of the built-in profiles
func Builtin() *Registry {
	r := &Registry{profiles: make(map[Name]Profile, len(builtin))}
	for name, p := range builtin {
		r.profiles[name] = p.Clone()
	}
	return r
}

// Lookup returns the profile for a name, title or alias
func (r *Registry) Lookup(name string) (Profile, bool) {
	n, ok := resolve(name)
	if !ok {
		return Profile{}, false
	}
	p, ok := r.profiles[n]
	if !ok {
		return Profile{}, false
	}
	return p.Clone(), true
}

// Get returns the named profile, falling back to ValueDCF for unknown names
func (r *Registry) Get(name string) Profile {
	if p, ok := r.Lookup(name); ok {
		return p
	}
	p := r.profiles[ValueDCF]
	return p.Clone()
}

// All returns every profile in display order
func (r *Registry) All() []Profile {
	out := make([]Profile, 0, len(Names))
	for _, n := range Names {
		if p, ok := r.profiles[n]; ok {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Get looks a profile up in the built-in set
func Get(name string) Profile {
	return Builtin().Get(name)
}

// overrideFile is the YAML layout accepted by LoadFile.
// Each key is optional; present fields replace the built-in values.
type overrideFile struct {
	Profiles struct {
		ValueDCF       *Profile `yaml:"ValueDCF"`
		DividendIncome *Profile `yaml:"DividendIncome"`
		GARP           *Profile `yaml:"GARP"`
		Momentum       *Profile `yaml:"Momentum"`
		IndexPassive   *Profile `yaml:"IndexPassive"`
	} `yaml:"profiles"`
}

// LoadFile reads profile overrides from a YAML file on top of the built-ins.
// Unknown keys fail the load, and every resulting profile is validated.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}
	return Parse(data)
}

// Parse is LoadFile over raw YAML bytes
func Parse(data []byte) (*Registry, error) {
	reg := Builtin()

	var file overrideFile
	slots := map[Name]**Profile{
		ValueDCF:       &file.Profiles.ValueDCF,
		DividendIncome: &file.Profiles.DividendIncome,
		GARP:           &file.Profiles.GARP,
		Momentum:       &file.Profiles.Momentum,
		IndexPassive:   &file.Profiles.IndexPassive,
	}
	// 기본값 위에 덮어쓰기: 포인터가 채워져 있으면 yaml.v3 는 기존 값을 재사용
	for name, slot := range slots {
		p := reg.profiles[name]
		*slot = &p
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	for name, slot := range slots {
		p := **slot
		if p.Name != name {
			return nil, fmt.Errorf("profile %s: name field must be %q, got %q", name, name, p.Name)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		reg.profiles[name] = p
	}

	return reg, nil
}
