package block

import "strings"

// Habit is a reusable activity definition that blocks reference by id.
type Habit struct {
	ID    string
	Title string
	Icon  string
}

// Label returns the icon and title for display.
func (h Habit) Label() string {
	return strings.TrimSpace(h.Icon + " " + h.Title)
}

// Catalog looks up habits by id.
type Catalog interface {
	Habit(id string) (Habit, bool)
	All() []Habit
}

// StaticCatalog is an in-memory Catalog that keeps insertion order.
type StaticCatalog struct {
	habits []Habit
	byID   map[string]int
}

// NewStaticCatalog creates a catalog from the given habits.
// Later entries replace earlier ones with the same id.
func NewStaticCatalog(habits ...Habit) *StaticCatalog {
	c := &StaticCatalog{byID: make(map[string]int, len(habits))}
	for _, h := range habits {
		c.Put(h)
	}
	return c
}

// Put adds or replaces a habit.
func (c *StaticCatalog) Put(h Habit) {
	if i, ok := c.byID[h.ID]; ok {
		c.habits[i] = h
		return
	}
	c.byID[h.ID] = len(c.habits)
	c.habits = append(c.habits, h)
}

// Habit returns the habit with the given id.
func (c *StaticCatalog) Habit(id string) (Habit, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Habit{}, false
	}
	return c.habits[i], true
}

// All returns the habits in palette order.
func (c *StaticCatalog) All() []Habit {
	out := make([]Habit, len(c.habits))
	copy(out, c.habits)
	return out
}

// DefaultPalette returns the habits seeded into a fresh database.
func DefaultPalette() []Habit {
	return []Habit{
		{ID: "h1", Title: "Lectura", Icon: "📚"},
		{ID: "h2", Title: "Deep Work", Icon: "💻"},
		{ID: "h3", Title: "Workout", Icon: "💪"},
		{ID: "h4", Title: "Meditación", Icon: "🧘"},
		{ID: "h5", Title: "Creatividad", Icon: "🎨"},
	}
}
