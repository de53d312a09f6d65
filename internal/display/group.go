package display

import "image/draw"

// Group is an ordered list of drawables, painted first to last.
type Group struct {
	items []Drawable
}

// Append adds d on top of the group.
func (g *Group) Append(d Drawable) {
	g.items = append(g.items, d)
}

// Pop removes and returns the most recently appended drawable.
func (g *Group) Pop() (Drawable, bool) {
	if len(g.items) == 0 {
		return nil, false
	}
	last := g.items[len(g.items)-1]
	g.items[len(g.items)-1] = nil
	g.items = g.items[:len(g.items)-1]
	return last, true
}

// Len returns the number of drawables in the group.
func (g *Group) Len() int {
	return len(g.items)
}

// Draw implements Drawable so groups can nest.
func (g *Group) Draw(dst draw.Image) {
	for _, d := range g.items {
		d.Draw(dst)
	}
}

// At returns the i-th drawable, bottom first.
func (g *Group) At(i int) Drawable {
	return g.items[i]
}
