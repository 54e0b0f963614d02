package table

// Table is a header plus rows. Every row has the header's length.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Page returns the rows of the given 0-based page. perPage below 1 is treated
// as 1. A page past the end yields an empty, non-nil slice.
func (t Table) Page(page, perPage int) [][]string {
	if perPage < 1 {
		perPage = 1
	}
	if page < 0 {
		page = 0
	}
	// compare page counts, page*perPage may overflow
	pages := len(t.Rows) / perPage
	if len(t.Rows)%perPage != 0 {
		pages++
	}
	if page >= pages {
		return [][]string{}
	}
	start := page * perPage
	return t.Rows[start : start+min(perPage, len(t.Rows)-start)]
}
