package command

import (
	"encoding/json"
	"time"
)

// Action is the label of an interpreted command.
type Action string

const (
	ActionFindRecipesByIngredients Action = "findRecipesByIngredients"
	ActionClearCategory            Action = "clearCategory"
	ActionSearch                   Action = "search"
	ActionCheckInventory           Action = "checkInventory"
	ActionCheckItem                Action = "checkItem"
	ActionAddToInventory           Action = "addToInventory"
	ActionRemoveFromInventory      Action = "removeFromInventory"
	ActionCreateRecipe             Action = "create"
	ActionDeleteRecipe             Action = "delete"
	ActionBulkAddToInventory       Action = "bulkAddToInventory"
	ActionCheckRecipeAvailability  Action = "checkRecipeAvailability"
	ActionPlanRecipe               Action = "planRecipe"
	ActionFindSubstitutes          Action = "findSubstitutes"
)

// Actions lists every action in rule priority order.
var Actions = []Action{
	ActionFindRecipesByIngredients,
	ActionClearCategory,
	ActionSearch,
	ActionCheckInventory,
	ActionCheckItem,
	ActionAddToInventory,
	ActionRemoveFromInventory,
	ActionCreateRecipe,
	ActionDeleteRecipe,
	ActionBulkAddToInventory,
	ActionCheckRecipeAvailability,
	ActionPlanRecipe,
	ActionFindSubstitutes,
}

// Intent is the structured result of interpreting a command. The set of
// implementations is closed; callers switch on the concrete type.
type Intent interface {
	Action() Action
	intent()
}

// ParsedIngredient is an ingredient extracted from free text.
type ParsedIngredient struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
}

// InventoryEntry is an item/quantity pair destined for the inventory.
type InventoryEntry struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
}

// FindRecipesByIngredients asks which recipes the listed ingredients make.
type FindRecipesByIngredients struct {
	Ingredients []ParsedIngredient `json:"ingredients"`
}

// ClearCategory empties one inventory category.
type ClearCategory struct {
	Category string `json:"category"`
}

// Search looks recipes up by free text.
type Search struct {
	Search string `json:"search"`
}

// CheckInventory lists everything in stock.
type CheckInventory struct{}

// CheckItem asks how much of one item is in stock.
type CheckItem struct {
	Item string `json:"item"`
}

// AddToInventory stocks a quantity of one item.
type AddToInventory struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
}

// RemoveFromInventory takes a quantity of one item out of stock.
type RemoveFromInventory struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// CreateRecipe saves a new recipe.
type CreateRecipe struct {
	Name         string             `json:"name"`
	Ingredients  []ParsedIngredient `json:"ingredients"`
	Instructions []string           `json:"instructions"`
}

// DeleteRecipe deletes the recipe with the given name.
type DeleteRecipe struct {
	Name string `json:"name"`
}

// BulkAddToInventory stocks several items at once.
type BulkAddToInventory struct {
	Items []InventoryEntry `json:"items"`
}

// CheckRecipeAvailability asks whether stock covers a recipe.
type CheckRecipeAvailability struct {
	Name string `json:"name"`
}

// PlanRecipe schedules a recipe on a calendar day. Date is midnight in the
// interpreter clock's location.
type PlanRecipe struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// FindSubstitutes asks what can replace an ingredient.
type FindSubstitutes struct {
	Ingredient string `json:"ingredient"`
}

func (FindRecipesByIngredients) Action() Action { return ActionFindRecipesByIngredients }
func (ClearCategory) Action() Action            { return ActionClearCategory }
func (Search) Action() Action                   { return ActionSearch }
func (CheckInventory) Action() Action           { return ActionCheckInventory }
func (CheckItem) Action() Action                { return ActionCheckItem }
func (AddToInventory) Action() Action           { return ActionAddToInventory }
func (RemoveFromInventory) Action() Action      { return ActionRemoveFromInventory }
func (CreateRecipe) Action() Action             { return ActionCreateRecipe }
func (DeleteRecipe) Action() Action             { return ActionDeleteRecipe }
func (BulkAddToInventory) Action() Action       { return ActionBulkAddToInventory }
func (CheckRecipeAvailability) Action() Action  { return ActionCheckRecipeAvailability }
func (PlanRecipe) Action() Action               { return ActionPlanRecipe }
func (FindSubstitutes) Action() Action          { return ActionFindSubstitutes }

func (FindRecipesByIngredients) intent() {}
func (ClearCategory) intent()            {}
func (Search) intent()                   {}
func (CheckInventory) intent()           {}
func (CheckItem) intent()                {}
func (AddToInventory) intent()           {}
func (RemoveFromInventory) intent()      {}
func (CreateRecipe) intent()             {}
func (DeleteRecipe) intent()             {}
func (BulkAddToInventory) intent()       {}
func (CheckRecipeAvailability) intent()  {}
func (PlanRecipe) intent()               {}
func (FindSubstitutes) intent()          {}

// MarshalJSON for PlanRecipe renders the date as YYYY-MM-DD.
func (p PlanRecipe) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name string `json:"name"`
		Date string `json:"date"`
	}{Name: p.Name, Date: p.Date.Format(DateLayout)})
}

// DateLayout is the wire format of planned dates.
const DateLayout = "2006-01-02"

// Envelope is the wire form of an Intent.
type Envelope struct {
	Action Action `json:"action"`
	Params Intent `json:"params"`
}

// Wrap returns the {action, params} envelope for an intent.
func Wrap(in Intent) Envelope {
	return Envelope{Action: in.Action(), Params: in}
}
