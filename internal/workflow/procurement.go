package workflow

import "github.com/scrypster/taskflow/pkg/types"

// ProcurementStrategy is the three-step purchasing workflow: collect supplier
// quotes, then complete the purchase with a receipt.
type ProcurementStrategy struct{}

func (ProcurementStrategy) TaskType() string { return "Procurement" }

func (ProcurementStrategy) MaxStatus() int { return 3 }

func (ProcurementStrategy) StatusDefinitions() []StatusDefinition {
	return []StatusDefinition{
		{Status: 1, Label: "Created"},
		{Status: 2, Label: "Supplier offers received"},
		{Status: 3, Label: "Purchase completed"},
	}
}

func (ProcurementStrategy) RequiredFields(targetStatus int) []FieldDefinition {
	switch targetStatus {
	case 2:
		return []FieldDefinition{
			{FieldName: "priceQuote1", Label: "Price Quote 1", FieldType: "string", Required: true},
			{FieldName: "priceQuote2", Label: "Price Quote 2", FieldType: "string", Required: true},
		}
	case 3:
		return []FieldDefinition{
			{FieldName: "receipt", Label: "Receipt", FieldType: "string", Required: true},
		}
	default:
		return nil
	}
}

func (s ProcurementStrategy) Validate(targetStatus int, data types.CustomData) []string {
	return validateRequired(s, targetStatus, data)
}
