package materials

import "strings"

// Material is a raw material tracked by the plant.
type Material struct {
	ID          int64  `json:"id" db:"material_id"`
	Name        string `json:"name" db:"material_name"`
	Description string `json:"description" db:"description"`
	Unit        string `json:"unit" db:"unit_of_measure"`
}

// Form is the editable part of a Material.
type Form struct {
	Name        string `json:"name" validate:"required,max=150"`
	Unit        string `json:"unit" validate:"required,max=50"`
	Description string `json:"description" validate:"max=1000"`
}

func (f Form) normalize() Form {
	return Form{
		Name:        strings.TrimSpace(f.Name),
		Unit:        strings.TrimSpace(f.Unit),
		Description: strings.TrimSpace(f.Description),
	}
}

func (f Form) meta() map[string]any {
	return map[string]any{"name": f.Name, "unit": f.Unit, "description": f.Description}
}
