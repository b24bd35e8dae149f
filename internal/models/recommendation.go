package models

// CandidateRecommendation is a title+year pair suggested by the recommendation
// source. It lives only for the duration of a curation run.
type CandidateRecommendation struct {
	Title string `json:"title" validate:"required,max=300"`
	Year  int    `json:"year" validate:"gte=1870,lte=2100"`
}

// Category is one recommendation category curated into its own collection.
type Category struct {
	ID     string `json:"id" mapstructure:"id" validate:"required,max=64"`
	Title  string `json:"title" mapstructure:"title" validate:"required"`
	Prompt string `json:"prompt" mapstructure:"prompt"`
}

// CollectionID returns the dashboard collection id under which the category's
// matches are cached.
func (c Category) CollectionID() string {
	return AICollectionPrefix + c.ID
}

// AICollectionPrefix marks collection ids produced by curation.
const AICollectionPrefix = "ai:"

// DefaultCategories are curated when the configuration names none.
func DefaultCategories() []Category {
	return []Category{
		{ID: "trending", Title: "Trending Now", Prompt: "titles that are currently popular and widely discussed"},
		{ID: "top_rated", Title: "Top Rated", Prompt: "critically acclaimed titles with excellent ratings"},
		{ID: "action", Title: "Action Picks", Prompt: "action movies and shows with high energy and great set pieces"},
	}
}
