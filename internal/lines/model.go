package lines

import "strings"

// ProductionLine is a manufacturing line materials are requested for.
type ProductionLine struct {
	ID          int64  `json:"id" db:"line_id"`
	Name        string `json:"name" db:"line_name"`
	Description string `json:"description" db:"description"`
	IsActive    bool   `json:"is_active" db:"is_active"`
}

// Form is the editable part of a ProductionLine. A nil IsActive means active.
type Form struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (f Form) line(id int64) ProductionLine {
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	return ProductionLine{
		ID:          id,
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		IsActive:    active,
	}
}

func (l ProductionLine) meta() map[string]any {
	return map[string]any{"name": l.Name, "description": l.Description, "is_active": l.IsActive}
}
