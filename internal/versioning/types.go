package versioning

// ID is an opaque documentation version identifier such as "v0.8".
//
// Latest (the empty ID) names the default/latest documentation set. It is its own
// cache key and never equal to an explicit version: explicit versions come from
// non-empty URL path segments.
type ID string

// Latest is the default/latest documentation set.
const Latest ID = ""

// IsLatest reports whether id names the default/latest set.
func (id ID) IsLatest() bool { return id == Latest }

// String returns the identifier, or "latest" for the default set.
func (id ID) String() string {
	if id.IsLatest() {
		return "latest"
	}
	return string(id)
}

// Version describes one entry of the site's version list.
type Version struct {
	ID          ID     `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	IsLatest    bool   `json:"is_latest" yaml:"is_latest"`
	IsNext      bool   `json:"is_next" yaml:"is_next"`
}
