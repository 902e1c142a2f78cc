package workflow

import "github.com/scrypster/taskflow/pkg/types"

// DevelopmentStrategy is the four-step software delivery workflow: spec,
// implementation branch, then a released version number.
type DevelopmentStrategy struct{}

func (DevelopmentStrategy) TaskType() string { return "Development" }

func (DevelopmentStrategy) MaxStatus() int { return 4 }

func (DevelopmentStrategy) StatusDefinitions() []StatusDefinition {
	return []StatusDefinition{
		{Status: 1, Label: "Created"},
		{Status: 2, Label: "Specification completed"},
		{Status: 3, Label: "Development completed"},
		{Status: 4, Label: "Distribution completed"},
	}
}

func (DevelopmentStrategy) RequiredFields(targetStatus int) []FieldDefinition {
	switch targetStatus {
	case 2:
		return []FieldDefinition{
			{FieldName: "specificationText", Label: "Specification Text", FieldType: "string", Required: true},
		}
	case 3:
		return []FieldDefinition{
			{FieldName: "branchName", Label: "Branch Name", FieldType: "string", Required: true},
		}
	case 4:
		return []FieldDefinition{
			{FieldName: "versionNumber", Label: "Version Number", FieldType: "string", Required: true},
		}
	default:
		return nil
	}
}

func (s DevelopmentStrategy) Validate(targetStatus int, data types.CustomData) []string {
	return validateRequired(s, targetStatus, data)
}
