package model

// RouteEntry is one navigable location of a route table.
// Children are resolved relative to the parent path.
type RouteEntry struct {
	Path     string
	Name     string
	Module   string
	Chunk    string
	Children []RouteEntry
}

// Clone returns a deep copy of the entry.
func (re RouteEntry) Clone() RouteEntry {
	res := re
	if re.Children != nil {
		res.Children = make([]RouteEntry, 0, len(re.Children))
		for _, ch := range re.Children {
			res.Children = append(res.Children, ch.Clone())
		}
	}
	return res
}
