package domain

// Table names a stored table. Live queries declare the tables they read and
// writes report the tables they touch, including cascaded ones.
type Table string

const (
	TableIngredients       Table = "ingredients"
	TableRecipes           Table = "recipes"
	TableRecipeIngredients Table = "recipe_ingredients"
)
