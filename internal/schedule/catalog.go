package schedule

// Category groups medications by the condition they treat.
type Category string

const (
	CategoryLiver    Category = "Liver"
	CategoryEpilepsy Category = "Epilepsy"
)

// Item is one medication with its fixed daily dose times. Catalog items are
// reference data: created at build time, never mutated at runtime.
type Item struct {
	ID       string
	Name     string
	Category Category
	Times    []string // HH:mm, ascending
}

var catalog = []Item{
	{ID: "med-ursodiol", Name: "Ursodiol 300mg", Category: CategoryLiver, Times: []string{"08:00", "20:00"}},
	{ID: "med-sam-e", Name: "SAMe 200mg", Category: CategoryLiver, Times: []string{"12:00"}},
	{ID: "med-levetiracetam", Name: "Levetiracetam 500mg", Category: CategoryEpilepsy, Times: []string{"08:00", "20:00"}},
	{ID: "med-phenobarbital", Name: "Phenobarbital 100mg", Category: CategoryEpilepsy, Times: []string{"21:00"}},
}

// Catalog returns the static medication schedule.
func Catalog() []Item {
	return catalog
}

// ItemByID looks a medication up by its catalog identifier.
func ItemByID(id string) (Item, bool) {
	for _, item := range catalog {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// HasTime reports whether t (HH:mm) is one of the item's dose times.
func (i Item) HasTime(t string) bool {
	for _, dose := range i.Times {
		if dose == t {
			return true
		}
	}
	return false
}
