// Package command turns free-text kitchen instructions into structured intents.
//
// Interpretation evaluates an ordered rule table and returns the intent of the
// first rule that matches. Rule patterns overlap, so the order is part of the
// behaviour: "find" wins over recipe creation, inventory adds are tried before
// recipe creation, and so on.
package command

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrCommandNotRecognized is returned when no rule matches a command.
var ErrCommandNotRecognized = errors.New("command not recognized")

var (
	reMakeWith       = regexp.MustCompile(`what can i (?:make|cook) with\s*`)
	reClearCategory  = regexp.MustCompile(`^clear\s+all\s+(.+?)\s+(?:from|in)\s+(?:the\s+)?inventory`)
	reSearchVerb     = regexp.MustCompile(`(?:find|search)(?:\s+for\b)?`)
	reCheckInventory = regexp.MustCompile(`^(?:check|show|get|view|how much)\s+(?:inventory|stock)`)
	reCheckItem      = regexp.MustCompile(`^(?:check|show|get|view|how much)\s+(.+?)\s+(?:stock|inventory|quantity|left)`)
	reAddVerb        = regexp.MustCompile(`^(?:add|put|place|stock)\s+`)
	reAdd            = regexp.MustCompile(`^(?:add|put|place|stock)\s+(?:up\s+)?(?:with\s+)?(\d+)\s+(.+?)(?:\s+(?:to|in|into)\s+(?:the\s+)?(?:inventory|stock))?$`)
	reRemoveVerb     = regexp.MustCompile(`^(?:remove|take|use|subtract)\s+`)
	reRemove         = regexp.MustCompile(`^(?:remove|take|use|subtract)\s+(\d+)\s+(.+?)(?:\s+(?:from|out of)\s+(?:the\s+)?(?:inventory|stock))?$`)
	reCreate         = regexp.MustCompile(`(?:create|add|make)\s+(?:a\s+)?recipe\s+for\s+(.+?)\s+with\s+(.+?)(?:\s+instructions?:?\s+(.+))?$`)
	reDeleteVerb     = regexp.MustCompile(`\b(?:delete|remove)\b(?:\s+the\b)?(?:\s+recipes?\b)?(?:\s+for\b)?\s*`)
	reBulkPrefix     = regexp.MustCompile(`^(?:add|put|place|stock)\s+multiple(?:\s+items?)?\s*:?\s*`)
	reCanI           = regexp.MustCompile(`^can i (?:make|cook|prepare)\b\s*`)
	rePlanTrigger    = regexp.MustCompile(`^(?:plan|schedule|make)\s+(.+?)\s+for\s+(?:today|tomorrow|next|this)`)
	rePlan           = regexp.MustCompile(`^(?:plan|schedule|make)\s+(.+?)\s+for\s+(.+)$`)
	reSubstitute     = regexp.MustCompile(`^what can i (?:use|substitute)\s+for\b\s*`)

	reListSplit        = regexp.MustCompile(`\s+and\s+|\s*,\s*`)
	reInstructionSplit = regexp.MustCompile(`\.\s*|\s*,\s*|\s+then\s+`)
	reWhitespace       = regexp.MustCompile(`\s+`)
)

// rule is one row of the dispatch table.
type rule struct {
	action Action
	match  func(in *Interpreter, cmd string) (Intent, bool)
}

// Interpreter maps commands to intents. It is immutable after New and safe for
// concurrent use.
type Interpreter struct {
	vocab        Vocabulary
	now          func() time.Time
	ingredientRe *regexp.Regexp
	rules        []rule
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithVocabulary replaces the built-in unit and category tables.
func WithVocabulary(v Vocabulary) Option {
	return func(in *Interpreter) { in.vocab = v }
}

// WithClock sets the clock used to resolve relative dates.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) { in.now = now }
}

// New creates an Interpreter.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		vocab: DefaultVocabulary(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(in)
	}
	in.ingredientRe = compileIngredientPattern(in.vocab.IngredientUnits)
	in.rules = []rule{
		{ActionFindRecipesByIngredients, (*Interpreter).matchFindByIngredients},
		{ActionClearCategory, (*Interpreter).matchClearCategory},
		{ActionSearch, (*Interpreter).matchSearch},
		{ActionCheckInventory, (*Interpreter).matchCheckInventory},
		{ActionCheckItem, (*Interpreter).matchCheckItem},
		{ActionAddToInventory, (*Interpreter).matchAdd},
		{ActionRemoveFromInventory, (*Interpreter).matchRemove},
		{ActionCreateRecipe, (*Interpreter).matchCreate},
		{ActionDeleteRecipe, (*Interpreter).matchDelete},
		{ActionBulkAddToInventory, (*Interpreter).matchBulkAdd},
		{ActionCheckRecipeAvailability, (*Interpreter).matchAvailability},
		{ActionPlanRecipe, (*Interpreter).matchPlan},
		{ActionFindSubstitutes, (*Interpreter).matchSubstitutes},
	}
	return in
}

// Vocabulary returns the tables the interpreter was built with.
func (in *Interpreter) Vocabulary() Vocabulary {
	return in.vocab
}

// Rules returns the rule actions in evaluation order.
func (in *Interpreter) Rules() []Action {
	actions := make([]Action, len(in.rules))
	for i, r := range in.rules {
		actions[i] = r.action
	}
	return actions
}

// Interpret returns the intent of the first rule matching command, or an error
// wrapping ErrCommandNotRecognized.
func (in *Interpreter) Interpret(command string) (Intent, error) {
	cmd := Normalize(command)
	if cmd != "" {
		for _, r := range in.rules {
			if intent, ok := r.match(in, cmd); ok {
				return intent, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrCommandNotRecognized, command)
}

// Normalize lower-cases and trims a command.
func Normalize(command string) string {
	return strings.ToLower(strings.TrimSpace(command))
}

var defaultInterpreter = New()

// Interpret interprets command with the default vocabulary and wall clock.
func Interpret(command string) (Intent, error) {
	return defaultInterpreter.Interpret(command)
}

func (in *Interpreter) matchFindByIngredients(cmd string) (Intent, bool) {
	loc := reMakeWith.FindStringIndex(cmd)
	if loc == nil {
		return nil, false
	}
	rest := strings.TrimSpace(cmd[:loc[0]] + cmd[loc[1]:])
	return FindRecipesByIngredients{Ingredients: in.extractIngredients(rest)}, true
}

func (in *Interpreter) matchClearCategory(cmd string) (Intent, bool) {
	m := reClearCategory.FindStringSubmatch(cmd)
	if m == nil {
		return nil, false
	}
	return ClearCategory{Category: strings.TrimSpace(m[1])}, true
}

func (in *Interpreter) matchSearch(cmd string) (Intent, bool) {
	if !strings.Contains(cmd, "find") && !strings.Contains(cmd, "search") {
		return nil, false
	}
	return Search{Search: strings.TrimSpace(replaceFirst(reSearchVerb, cmd))}, true
}

func (in *Interpreter) matchCheckInventory(cmd string) (Intent, bool) {
	if !reCheckInventory.MatchString(cmd) {
		return nil, false
	}
	return CheckInventory{}, true
}

func (in *Interpreter) matchCheckItem(cmd string) (Intent, bool) {
	m := reCheckItem.FindStringSubmatch(cmd)
	if m == nil {
		return nil, false
	}
	return CheckItem{Item: strings.TrimSpace(m[1])}, true
}

func (in *Interpreter) matchAdd(cmd string) (Intent, bool) {
	if !reAddVerb.MatchString(cmd) {
		return nil, false
	}
	m := reAdd.FindStringSubmatch(cmd)
	if m == nil {
		return nil, false
	}
	quantity, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	item, unit := in.splitUnit(m[2])
	if item == "" {
		return nil, false
	}
	return AddToInventory{Item: item, Quantity: quantity, Unit: unit}, true
}

func (in *Interpreter) matchRemove(cmd string) (Intent, bool) {
	if !reRemoveVerb.MatchString(cmd) {
		return nil, false
	}
	m := reRemove.FindStringSubmatch(cmd)
	if m == nil {
		return nil, false
	}
	quantity, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	return RemoveFromInventory{Item: strings.TrimSpace(m[2]), Quantity: quantity}, true
}

func (in *Interpreter) matchCreate(cmd string) (Intent, bool) {
	if !strings.Contains(cmd, "create") && !strings.Contains(cmd, "add") && !strings.Contains(cmd, "make") {
		return nil, false
	}
	m := reCreate.FindStringSubmatch(cmd)
	if m == nil {
		return nil, false
	}
	instructions := []string{}
	if m[3] != "" {
		for _, step := range reInstructionSplit.Split(m[3], -1) {
			if step = strings.TrimSpace(step); step != "" {
				instructions = append(instructions, step)
			}
		}
	}
	return CreateRecipe{
		Name:         strings.TrimSpace(m[1]),
		Ingredients:  in.extractIngredients(m[2]),
		Instructions: instructions,
	}, true
}

func (in *Interpreter) matchDelete(cmd string) (Intent, bool) {
	if !strings.Contains(cmd, "delete") && !strings.Contains(cmd, "remove recipe") {
		return nil, false
	}
	return DeleteRecipe{Name: strings.TrimSpace(replaceFirst(reDeleteVerb, cmd))}, true
}

func (in *Interpreter) matchBulkAdd(cmd string) (Intent, bool) {
	loc := reBulkPrefix.FindStringIndex(cmd)
	if loc == nil {
		return nil, false
	}
	items := []InventoryEntry{}
	for _, segment := range reListSplit.Split(cmd[loc[1]:], -1) {
		fields := strings.Fields(segment)
		if len(fields) == 0 {
			continue
		}
		quantity := 1
		n, err := strconv.Atoi(fields[0])
		switch {
		case err == nil:
			quantity = n
			fields = fields[1:]
		case errors.Is(err, strconv.ErrRange):
			return nil, false
		}
		item, unit := in.splitUnit(strings.Join(fields, " "))
		if item == "" {
			continue
		}
		items = append(items, InventoryEntry{Item: item, Quantity: quantity, Unit: unit})
	}
	return BulkAddToInventory{Items: items}, true
}

func (in *Interpreter) matchAvailability(cmd string) (Intent, bool) {
	loc := reCanI.FindStringIndex(cmd)
	if loc == nil {
		return nil, false
	}
	return CheckRecipeAvailability{Name: strings.TrimSpace(cmd[loc[1]:])}, true
}

func (in *Interpreter) matchPlan(cmd string) (Intent, bool) {
	if !rePlanTrigger.MatchString(cmd) {
		return nil, false
	}
	m := rePlan.FindStringSubmatch(cmd)
	if m == nil {
		return nil, false
	}
	date, ok := resolveDate(m[2], in.now())
	if !ok {
		return nil, false
	}
	return PlanRecipe{Name: strings.TrimSpace(m[1]), Date: date}, true
}

func (in *Interpreter) matchSubstitutes(cmd string) (Intent, bool) {
	loc := reSubstitute.FindStringIndex(cmd)
	if loc == nil {
		return nil, false
	}
	return FindSubstitutes{Ingredient: strings.TrimSpace(cmd[loc[1]:])}, true
}

// extractIngredients splits an ingredient clause on "and" or commas and parses
// each segment as [quantity] [unit] item.
func (in *Interpreter) extractIngredients(text string) []ParsedIngredient {
	ingredients := []ParsedIngredient{}
	for _, part := range reListSplit.Split(text, -1) {
		m := in.ingredientRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		item := strings.TrimSpace(m[3])
		if item == "" {
			continue
		}
		quantity := 1
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			quantity = n
		}
		ingredients = append(ingredients, ParsedIngredient{
			Item:     item,
			Quantity: quantity,
			Unit:     strings.TrimSuffix(m[2], "s"),
		})
	}
	return ingredients
}

// splitUnit separates a unit word from an item blob. A unit leading the blob
// ("cups flour") or trailing it ("flour cups") is recognised; the first
// vocabulary entry that fits wins.
func (in *Interpreter) splitUnit(blob string) (item, unit string) {
	blob = reWhitespace.ReplaceAllString(strings.TrimSpace(blob), " ")
	for _, u := range in.vocab.InventoryUnits {
		if rest, ok := strings.CutPrefix(blob, u+" "); ok {
			return strings.TrimSpace(rest), u
		}
	}
	for _, u := range in.vocab.InventoryUnits {
		if rest, ok := strings.CutSuffix(blob, " "+u); ok {
			return strings.TrimSpace(rest), u
		}
	}
	return blob, ""
}

func compileIngredientPattern(units []string) *regexp.Regexp {
	alts := make([]string, 0, len(units))
	for _, u := range units {
		alts = append(alts, regexp.QuoteMeta(strings.TrimSuffix(u, "s"))+"s?")
	}
	unitGroup := `(?:(` + strings.Join(alts, "|") + `)\s+)?`
	if len(alts) == 0 {
		unitGroup = `()`
	}
	return regexp.MustCompile(`^(\d+)?\s*` + unitGroup + `(.+)`)
}

func replaceFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}
