// Package loot resolves monster loot tables into drops.
package loot

// Source yields uniform floats in [0.0, 1.0). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Entry is one row of a monster's loot table.
type Entry struct {
	ItemID          int64
	ItemName        string
	Quantity        int
	DropProbability float64
}

// Drop is an item granted on a kill.
type Drop struct {
	ItemID   int64  `json:"item_id"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// Resolve scans table in order, drawing once per entry, and returns the first
// entry whose draw lands under its drop probability. At most one item drops
// per kill; table order decides ties.
func Resolve(src Source, table []Entry) (Drop, bool) {
	for _, entry := range table {
		if src.Float64() < entry.DropProbability {
			return Drop{ItemID: entry.ItemID, Item: entry.ItemName, Quantity: entry.Quantity}, true
		}
	}
	return Drop{}, false
}
