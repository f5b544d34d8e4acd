package ir

import "slices"

// Recipe is a named top-level composition: particle instances and storage
// writes represented as a list of operations.
type Recipe struct {
	owner      *Context
	name       string
	operations []OperationID
}

// NewRecipe creates an empty recipe owned by the context.
func (c *Context) NewRecipe(name string) *Recipe {
	r := &Recipe{owner: c, name: name}
	c.recipes = append(c.recipes, r)
	return r
}

// Recipes returns recipes in creation order.
func (c *Context) Recipes() []*Recipe { return slices.Clone(c.recipes) }

// Name returns the recipe name.
func (r *Recipe) Name() string { return r.name }

// AddOperation instantiates op with the given inputs as part of the recipe.
func (r *Recipe) AddOperation(op OperatorID, inputs map[string]Value) OperationID {
	id := r.owner.NewOperation(op, inputs)
	r.operations = append(r.operations, id)
	return id
}

// Operations returns the recipe's operations in insertion order.
func (r *Recipe) Operations() []OperationID { return slices.Clone(r.operations) }
