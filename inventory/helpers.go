package inventory

// NameFromTags returns the Name tag if present, falling back to the given id.
func NameFromTags(tags map[string]string, fallback string) string {
	if name, ok := tags["Name"]; ok && name != "" {
		return name
	}
	return fallback
}

// NonNilMaps ensures Details and Tags are never absent on a record.
// Collectors built from sparse API responses may leave them nil.
func (r *Record) NonNilMaps() {
	if r.Details == nil {
		r.Details = map[string]any{}
	}
	if r.Tags == nil {
		r.Tags = map[string]string{}
	}
}
