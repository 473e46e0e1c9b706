package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/modcar/ingreso/internal/taller"
)

// PartItem is one element of the repuestos_json array.
type PartItem struct {
	ID        taller.ID     `json:"id"`
	StockID   taller.ID     `json:"repuesto_stock_id"`
	Quantity  int           `json:"cantidad"`
	UnitPrice taller.Amount `json:"precio_unitario"`
	Name      string        `json:"nombre"`
	OEM       string        `json:"oem"`
}

// Subtotal is UnitPrice * Quantity.
func (p PartItem) Subtotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// FromRepuesto converts a suggested part into a list item of quantity qty.
func FromRepuesto(r taller.Repuesto, qty int) PartItem {
	return PartItem{
		ID:        r.ID,
		StockID:   r.RepuestoStockID,
		Quantity:  qty,
		UnitPrice: r.PrecioVenta,
		Name:      strings.TrimSpace(r.Nombre),
		OEM:       strings.TrimSpace(r.OEM),
	}
}

// FromInsumo converts a supply search hit into a list item of quantity qty.
func FromInsumo(i taller.Insumo, qty int) PartItem {
	return PartItem{
		ID:        i.ID,
		Quantity:  qty,
		UnitPrice: i.Precio,
		Name:      strings.TrimSpace(i.Nombre),
		OEM:       strings.TrimSpace(i.OEM),
	}
}

// PartList is the ordered parts section of the form. Items are unique by id.
type PartList struct {
	items []PartItem
}

// ParsePartList reads a repuestos_json value. Blank input is an empty list.
// On malformed input the list is empty and the error says why.
func ParsePartList(raw string) (PartList, error) {
	if strings.TrimSpace(raw) == "" {
		return PartList{}, nil
	}
	var wire []wirePart
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return PartList{}, fmt.Errorf("decode repuestos: %w", err)
	}
	var list PartList
	for _, w := range wire {
		list.Add(PartItem{
			ID:        w.ID,
			StockID:   w.StockID,
			Quantity:  int(w.Quantity),
			UnitPrice: w.UnitPrice,
			Name:      w.Name,
			OEM:       w.OEM,
		})
	}
	return list, nil
}

// Add appends new parts and merges the ones already present by summing
// quantities. Items without an id are ignored. Quantities below one count as
// one.
func (l *PartList) Add(items ...PartItem) (added, merged int) {
	for _, it := range items {
		if strings.TrimSpace(it.ID.String()) == "" {
			continue
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		idx := l.index(it.ID)
		if idx < 0 {
			l.items = append(l.items, it)
			added++
			continue
		}
		cur := &l.items[idx]
		cur.Quantity += it.Quantity
		if cur.StockID == "" {
			cur.StockID = it.StockID
		}
		if cur.Name == "" {
			cur.Name = it.Name
		}
		if cur.OEM == "" {
			cur.OEM = it.OEM
		}
		merged++
	}
	return added, merged
}

// Remove drops the part with the given id.
func (l *PartList) Remove(id taller.ID) bool {
	idx := l.index(id)
	if idx < 0 {
		return false
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	return true
}

// SetQuantity overwrites a part's quantity. Values below one are rejected.
func (l *PartList) SetQuantity(id taller.ID, qty int) bool {
	idx := l.index(id)
	if idx < 0 || qty < 1 {
		return false
	}
	l.items[idx].Quantity = qty
	return true
}

// Items returns a copy of the list in insertion order.
func (l PartList) Items() []PartItem {
	return append([]PartItem(nil), l.items...)
}

// Len returns the number of distinct parts.
func (l PartList) Len() int { return len(l.items) }

// Total sums the subtotals of every part.
func (l PartList) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range l.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// JSON serializes the list. An empty list yields "[]".
func (l PartList) JSON() string {
	if len(l.items) == 0 {
		return "[]"
	}
	return encodeList(l.items)
}

func (l PartList) index(id taller.ID) int {
	key := strings.TrimSpace(id.String())
	for i, it := range l.items {
		if strings.TrimSpace(it.ID.String()) == key {
			return i
		}
	}
	return -1
}

type wirePart struct {
	ID        taller.ID     `json:"id"`
	StockID   taller.ID     `json:"repuesto_stock_id"`
	Quantity  flexInt       `json:"cantidad"`
	UnitPrice taller.Amount `json:"precio_unitario"`
	Name      string        `json:"nombre"`
	OEM       string        `json:"oem"`
}

// flexInt decodes quantities written either as numbers or numeric strings.
// Anything unreadable becomes zero, which Add raises to one.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.Trim(bytes.TrimSpace(data), `"`)
	v, err := strconv.Atoi(string(trimmed))
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexInt(v)
	return nil
}
