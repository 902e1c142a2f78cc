package workflow

// TypeInfo is the metadata for one registered task type, shaped for
// client-side form generation: the full status sequence plus the required
// fields keyed by target status.
type TypeInfo struct {
	TaskType  string             `json:"taskType"`
	MaxStatus int                `json:"maxStatus"`
	Statuses  []StatusDefinition `json:"statuses"`

	// FieldsByStatus maps a forward-target status to its required fields.
	// Statuses with no requirement are omitted entirely, not present with an
	// empty list.
	FieldsByStatus map[int][]FieldDefinition `json:"fieldsByStatus"`
}

// Catalog exposes the type metadata derived from a registry. Like the
// registry it is immutable after startup and shared by all requests.
type Catalog struct {
	registry *Registry
}

// NewCatalog builds a catalog over the given registry.
func NewCatalog(registry *Registry) *Catalog {
	return &Catalog{registry: registry}
}

// ListAll returns the metadata for every registered task type, sorted by
// type name.
func (c *Catalog) ListAll() []TypeInfo {
	strategies := c.registry.All()
	out := make([]TypeInfo, 0, len(strategies))
	for _, s := range strategies {
		fields := make(map[int][]FieldDefinition)
		for status := 1; status <= s.MaxStatus(); status++ {
			if required := s.RequiredFields(status); len(required) > 0 {
				fields[status] = required
			}
		}
		out = append(out, TypeInfo{
			TaskType:       s.TaskType(),
			MaxStatus:      s.MaxStatus(),
			Statuses:       s.StatusDefinitions(),
			FieldsByStatus: fields,
		})
	}
	return out
}
