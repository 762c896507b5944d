package friend

// Category is a pure tag applied to friends. It carries no health semantics
// and no ownership: deleting a category detaches it from friends, never the
// other way around.
type Category struct {
	ID        int64
	Name      string
	Icon      string
	ColorHex  string
	IsDefault bool
	SortOrder int
}

// DefaultCategories returns the predefined tabs seeded on first run.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Family", Icon: "house", ColorHex: "5B9BD5", IsDefault: true, SortOrder: 0},
		{Name: "Friends", Icon: "people", ColorHex: "70C1B3", IsDefault: true, SortOrder: 1},
		{Name: "Work", Icon: "briefcase", ColorHex: "F4A259", IsDefault: true, SortOrder: 2},
		{Name: "Other", Icon: "tag", ColorHex: "9B9B9B", IsDefault: true, SortOrder: 3},
	}
}
