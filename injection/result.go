// ABOUTME: Ordered result structures for resolved attribute injections.
// ABOUTME: Result maps files to per-element attribute overlays with update-not-replace merge semantics.
package injection

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/HPENetworking/topology-sub000/szn"
)

// FileInjection holds the attribute overlays resolved for one file: optional
// environment overrides plus per-element attribute sets keyed by the
// element's display string (node name, "node:port", or
// "node1:port1 -- node2:port2").
type FileInjection struct {
	Path        string
	Environment *szn.AttributeSet

	keys     []string
	elements map[string]*szn.AttributeSet
}

// NewFileInjection returns an empty overlay for path.
func NewFileInjection(path string) *FileInjection {
	return &FileInjection{
		Path:        path,
		Environment: szn.NewAttributeSet(),
		elements:    make(map[string]*szn.AttributeSet),
	}
}

// Elements returns the element keys in first-seen order.
func (fi *FileInjection) Elements() []string {
	keys := make([]string, len(fi.keys))
	copy(keys, fi.keys)
	return keys
}

// Attributes returns the overlay for an element key, or nil when the key has
// no overlay.
func (fi *FileInjection) Attributes(key string) *szn.AttributeSet {
	return fi.elements[key]
}

// Merge overlays attributes onto an element key, updating existing keys
// rather than replacing the set. Map iteration is ordered by sorted key so
// repeated resolutions are deterministic.
func (fi *FileInjection) Merge(key string, attrs map[string]any) {
	set, ok := fi.elements[key]
	if !ok {
		set = szn.NewAttributeSet()
		fi.elements[key] = set
		fi.keys = append(fi.keys, key)
	}
	for _, name := range sortedKeys(attrs) {
		set.Set(name, attrs[name])
	}
}

// MergeEnvironment overlays rule-level environment attributes.
func (fi *FileInjection) MergeEnvironment(attrs map[string]any) {
	for _, name := range sortedKeys(attrs) {
		fi.Environment.Set(name, attrs[name])
	}
}

// MarshalJSON serializes the overlay as {element_key: {attr: value}} with the
// environment under its own key when present.
func (fi *FileInjection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	if fi.Environment.Len() > 0 {
		buf.WriteString(`"environment":`)
		env, err := json.Marshal(fi.Environment)
		if err != nil {
			return nil, err
		}
		buf.Write(env)
		first = false
	}
	for _, key := range fi.keys {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(fi.elements[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Result is the fully merged outcome of resolving an injection spec: an
// ordered mapping from absolute file path to that file's attribute overlays.
type Result struct {
	files  []string
	byFile map[string]*FileInjection
}

// newResult returns an empty result.
func newResult() *Result {
	return &Result{byFile: make(map[string]*FileInjection)}
}

// Files returns the matched file paths in first-seen order.
func (r *Result) Files() []string {
	files := make([]string, len(r.files))
	copy(files, r.files)
	return files
}

// File returns the overlay for a file path, or nil when the file was not
// matched by any rule.
func (r *Result) File(path string) *FileInjection {
	return r.byFile[path]
}

// file returns the overlay for path, creating it on first use.
func (r *Result) file(path string) *FileInjection {
	fi, ok := r.byFile[path]
	if !ok {
		fi = NewFileInjection(path)
		r.byFile[path] = fi
		r.files = append(r.files, path)
	}
	return fi
}

// MarshalJSON serializes the result as an ordered object keyed by file path.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, path := range r.files {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(path)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(r.byFile[path])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// sortedKeys returns the map's keys in sorted order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
