package driver

// SanitizeLabel reduces an arbitrary type name to a safe Cypher label.
// Labels cannot be passed as query parameters, so anything interpolated into
// a query text must be restricted to [A-Za-z0-9_].
func SanitizeLabel(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			out = append(out, c)
		case c >= '0' && c <= '9':
			if len(out) > 0 {
				out = append(out, c)
			}
		}
	}
	return string(out)
}

// LabelFragment renders the extra label clause for SaveEntityNodeQuery.
// An empty or unusable type name yields no extra label.
func LabelFragment(name string) string {
	label := SanitizeLabel(name)
	if label == "" || label == "Entity" {
		return ""
	}
	return ":" + label
}
