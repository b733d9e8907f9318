package model

// Category is a clothing category posts are filed under.
type Category struct {
	ID   int64  `json:"id,string"`
	Name string `json:"name"`
}

// DefaultCategories is the fixed public catalog. The development backend
// seeds it on first start.
var DefaultCategories = []Category{
	{ID: 1, Name: "Formal"},
	{ID: 2, Name: "Business Casual"},
	{ID: 3, Name: "Dating"},
	{ID: 4, Name: "Casual"},
	{ID: 5, Name: "Bumming"},
	{ID: 6, Name: "Athletic"},
	{ID: 7, Name: "Ski/Snowboard"},
}
