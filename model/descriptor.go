package model

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/gjson"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Motion is one entry of a motion group
type Motion struct {
	File    string
	FadeIn  float64
	FadeOut float64
}

// Descriptor is the part of a .model3.json file the binding uses. Paths are
// resolved against the descriptor's folder.
type Descriptor struct {
	Path        string
	Version     int
	Moc         string
	Textures    []string
	Physics     string
	DisplayInfo string
	Motions     map[string][]Motion
	Expressions []string
	Groups      map[string][]string
}

// Entry names one parameter or part in a display-info file
type Entry struct {
	ID    string
	Name  string
	Group string
}

// DisplayInfo lists the human-readable names from a .cdi3.json file
type DisplayInfo struct {
	Version    int
	Parameters []Entry
	Parts      []Entry
}

// Physics summarises a .physics3.json file
type Physics struct {
	Version  int
	Settings int
	FPS      float64
}

func readDescriptor(path string) (gjson.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return gjson.Result{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return gjson.Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	// Cubism exports are often written with a UTF-8 BOM
	data = bytes.TrimPrefix(data, utf8BOM)
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%w: %s is not valid JSON", ErrInvalidDescriptor, path)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: %s is not a JSON object", ErrInvalidDescriptor, path)
	}
	return root, nil
}

// ReadModel3 parses a .model3.json descriptor
func ReadModel3(path string) (*Descriptor, error) {
	root, err := readDescriptor(path)
	if err != nil {
		return nil, err
	}

	refs := root.Get("FileReferences")
	if !refs.IsObject() {
		return nil, fmt.Errorf("%w: %s has no FileReferences", ErrInvalidDescriptor, path)
	}

	dir := filepath.Dir(path)
	resolve := func(rel string) string {
		if rel == "" {
			return ""
		}
		return filepath.Join(dir, filepath.FromSlash(rel))
	}

	d := &Descriptor{
		Path:        path,
		Version:     int(root.Get("Version").Int()),
		Moc:         resolve(refs.Get("Moc").String()),
		Physics:     resolve(refs.Get("Physics").String()),
		DisplayInfo: resolve(refs.Get("DisplayInfo").String()),
		Motions:     make(map[string][]Motion),
		Groups:      make(map[string][]string),
	}

	for _, tex := range refs.Get("Textures").Array() {
		if tex.String() != "" {
			d.Textures = append(d.Textures, resolve(tex.String()))
		}
	}

	refs.Get("Motions").ForEach(func(group, entries gjson.Result) bool {
		for _, entry := range entries.Array() {
			d.Motions[group.String()] = append(d.Motions[group.String()], Motion{
				File:    resolve(entry.Get("File").String()),
				FadeIn:  entry.Get("FadeInTime").Float(),
				FadeOut: entry.Get("FadeOutTime").Float(),
			})
		}
		return true
	})

	for _, expr := range refs.Get("Expressions").Array() {
		if name := expr.Get("Name").String(); name != "" {
			d.Expressions = append(d.Expressions, name)
		}
	}

	for _, group := range root.Get("Groups").Array() {
		name := group.Get("Name").String()
		if name == "" {
			continue
		}
		for _, id := range group.Get("Ids").Array() {
			d.Groups[name] = append(d.Groups[name], id.String())
		}
	}

	return d, nil
}

// MotionGroups returns the motion group names in sorted order
func (d *Descriptor) MotionGroups() []string {
	groups := make([]string, 0, len(d.Motions))
	for name := range d.Motions {
		groups = append(groups, name)
	}
	sort.Strings(groups)
	return groups
}

// ReadDisplayInfo parses a .cdi3.json display-info file
func ReadDisplayInfo(path string) (*DisplayInfo, error) {
	root, err := readDescriptor(path)
	if err != nil {
		return nil, err
	}

	info := &DisplayInfo{Version: int(root.Get("Version").Int())}
	for _, p := range root.Get("Parameters").Array() {
		info.Parameters = append(info.Parameters, Entry{
			ID:    p.Get("Id").String(),
			Name:  p.Get("Name").String(),
			Group: p.Get("GroupId").String(),
		})
	}
	for _, p := range root.Get("Parts").Array() {
		info.Parts = append(info.Parts, Entry{
			ID:   p.Get("Id").String(),
			Name: p.Get("Name").String(),
		})
	}
	return info, nil
}

// ReadPhysics parses a .physics3.json file
func ReadPhysics(path string) (*Physics, error) {
	root, err := readDescriptor(path)
	if err != nil {
		return nil, err
	}

	settings := int(root.Get("Meta.PhysicsSettingCount").Int())
	if settings == 0 {
		settings = len(root.Get("PhysicsSettings").Array())
	}
	return &Physics{
		Version:  int(root.Get("Version").Int()),
		Settings: settings,
		FPS:      root.Get("Meta.Fps").Float(),
	}, nil
}
