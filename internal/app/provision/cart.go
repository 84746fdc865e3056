package provision

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/foodmarket/provision-backend/internal/app/model"
)

const (
	DefaultPointCap    = 30
	DefaultMaxQuantity = 30
	minQuantity        = 1
)

// Cart holds the lines selected for the active visitor. Every mutation records
// the pre-mutation state in the undo history first.
type Cart struct {
	lines       []model.CartLine
	history     *UndoRedoStack[model.CartLine]
	pointCap    int
	maxQuantity int
}

func NewCart(pointCap, maxQuantity int) *Cart {
	if pointCap <= 0 {
		pointCap = DefaultPointCap
	}
	if maxQuantity <= 0 {
		maxQuantity = DefaultMaxQuantity
	}
	return &Cart{
		history:     NewUndoRedoStack[model.CartLine](),
		pointCap:    pointCap,
		maxQuantity: maxQuantity,
	}
}

// ParseQuantity reads a quantity from loosely typed input (JSON number, string).
// Anything unparsable yields 1.
func ParseQuantity(v interface{}) int {
	switch q := v.(type) {
	case int:
		return q
	case float64:
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return 1
		}
		return int(q)
	case json.Number:
		if n, err := strconv.Atoi(q.String()); err == nil {
			return n
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(q)); err == nil {
			return n
		}
	}
	return 1
}

func (c *Cart) Lines() []model.CartLine {
	return slices.Clone(c.lines)
}

func (c *Cart) Len() int      { return len(c.lines) }
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }
func (c *Cart) PointCap() int { return c.pointCap }
func (c *Cart) MaxQuantity() int {
	return c.maxQuantity
}

// Total is the sum of quantity * price over all lines.
func (c *Cart) Total() int {
	return model.CartTotal(c.lines)
}

// OverCap reports whether the total exceeds the point cap. It blocks
// submission only; editing stays possible.
func (c *Cart) OverCap() bool {
	return c.Total() > c.pointCap
}

func (c *Cart) clamp(q int) (int, bool) {
	switch {
	case q < minQuantity:
		return minQuantity, true
	case q > c.maxQuantity:
		return c.maxQuantity, true
	}
	return q, false
}

// AddOrIncrement adds quantity of product, merging into an existing line for
// the same product. The input quantity is held to [1, max]; the merged total
// is not re-clamped.
func (c *Cart) AddOrIncrement(product model.Product, quantity int) *Notice {
	quantity, corrected := c.clamp(quantity)

	c.history.Push(c.lines)
	if i := c.indexOf(product.ID); i >= 0 {
		c.lines[i].Quantity += quantity
	} else {
		c.lines = append(c.lines, model.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
		})
	}

	if corrected {
		return newNotice(NoticeQuantityCorrected)
	}
	return nil
}

// SetQuantity sets line index to value, correcting out-of-range input.
func (c *Cart) SetQuantity(index, value int) (*Notice, error) {
	if err := c.checkIndex(index); err != nil {
		return nil, err
	}
	value, corrected := c.clamp(value)
	if c.lines[index].Quantity != value {
		c.history.Push(c.lines)
		c.lines[index].Quantity = value
	}
	if corrected {
		return newNotice(NoticeQuantityCorrected), nil
	}
	return nil, nil
}

func (c *Cart) Increment(index int) (*Notice, error) {
	return c.step(index, 1)
}

func (c *Cart) Decrement(index int) (*Notice, error) {
	return c.step(index, -1)
}

func (c *Cart) step(index, delta int) (*Notice, error) {
	if err := c.checkIndex(index); err != nil {
		return nil, err
	}
	value, corrected := c.clamp(c.lines[index].Quantity + delta)
	if value != c.lines[index].Quantity {
		c.history.Push(c.lines)
		c.lines[index].Quantity = value
	}
	if corrected {
		return newNotice(NoticeQuantityCorrected), nil
	}
	return nil, nil
}

func (c *Cart) RemoveLine(index int) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}
	c.history.Push(c.lines)
	c.lines = slices.Delete(slices.Clone(c.lines), index, index+1)
	return nil
}

// Undo restores the previous cart state. A nil notice means it succeeded.
func (c *Cart) Undo() *Notice {
	prev, ok := c.history.Undo(c.lines)
	if !ok {
		return newNotice(NoticeNothingToUndo)
	}
	c.lines = prev
	return nil
}

func (c *Cart) Redo() *Notice {
	next, ok := c.history.Redo(c.lines)
	if !ok {
		return newNotice(NoticeNothingToRedo)
	}
	c.lines = next
	return nil
}

func (c *Cart) CanUndo() bool { return c.history.CanUndo() }
func (c *Cart) CanRedo() bool { return c.history.CanRedo() }

// Clear empties the cart and its history.
func (c *Cart) Clear() {
	c.lines = nil
	c.history.Reset()
}

// Restore replaces the cart with lines, e.g. from a held snapshot. History is
// reset; the restored state is the new baseline.
func (c *Cart) Restore(lines []model.CartLine) {
	c.lines = slices.Clone(lines)
	c.history.Reset()
}

func (c *Cart) indexOf(productID string) int {
	return slices.IndexFunc(c.lines, func(l model.CartLine) bool {
		return l.ProductID == productID
	})
}

func (c *Cart) checkIndex(index int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrLineNotFound
	}
	return nil
}
