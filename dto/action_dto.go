package dto

type SearchActionDTO struct {
	Term  string `json:"term" binding:"max=200"`
	Flush bool   `json:"flush"`
}

// FilterActionDTO carries the select that changed and the search box text at
// that moment. Absent fields are left as they are.
type FilterActionDTO struct {
	Term     *string `json:"term" binding:"omitempty,max=200"`
	Category *string `json:"category"`
	Brand    *string `json:"brand"`
	Price    *string `json:"price" binding:"omitempty,oneof=under10 10to50 50to100 over100"`
}

func (f FilterActionDTO) Empty() bool {
	return f.Category == nil && f.Brand == nil && f.Price == nil
}
