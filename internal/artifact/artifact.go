package artifact

// Map is an ordered mapping from relative file path to file content.
// Keys are unique; insertion order is preserved so that results compare
// deterministically across runs.
type Map struct {
	files map[string]string
	order []string
}

// NewMap creates an empty artifact map.
func NewMap() *Map {
	return &Map{
		files: make(map[string]string),
		order: make([]string, 0),
	}
}

// Set stores content under path. Re-setting an existing path overwrites
// its content but keeps the path's original position in the order.
func (m *Map) Set(path, content string) {
	if _, exists := m.files[path]; !exists {
		m.order = append(m.order, path)
	}
	m.files[path] = content
}

// Get returns the content for path.
func (m *Map) Get(path string) (string, bool) {
	c, ok := m.files[path]
	return c, ok
}

// Paths returns all paths in insertion order.
func (m *Map) Paths() []string {
	paths := make([]string, len(m.order))
	copy(paths, m.order)
	return paths
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.files)
}

// Merge copies every entry of other into m, overwriting existing paths.
// Entries are applied in other's insertion order, so for duplicate paths
// the later map always wins.
func (m *Map) Merge(other *Map) {
	if other == nil {
		return
	}
	for _, path := range other.order {
		m.Set(path, other.files[path])
	}
}

// Files returns a plain map copy of the entries. Mutating the returned
// map does not affect m.
func (m *Map) Files() map[string]string {
	files := make(map[string]string, len(m.files))
	for path, content := range m.files {
		files[path] = content
	}
	return files
}
