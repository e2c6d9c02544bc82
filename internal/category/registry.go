// Package category holds the fixed category taxonomy. The registry's
// Resolve is a total function: unknown ids map to the "other" sentinel so
// aggregation never has to handle a missing category.
package category

import "tally/internal/core"

// OtherID is the sentinel category every unresolvable id falls back to.
const OtherID = "other"

var defaults = []core.Category{
	{ID: "food", Name: "餐饮", Color: "#FF6B6B", Icon: "🍜"},
	{ID: "transport", Name: "交通", Color: "#4ECDC4", Icon: "🚇"},
	{ID: "shopping", Name: "购物", Color: "#FFD93D", Icon: "🛍️"},
	{ID: "entertainment", Name: "娱乐", Color: "#95E1D3", Icon: "🎮"},
	{ID: "medical", Name: "医疗", Color: "#F38181", Icon: "💊"},
	{ID: "education", Name: "教育", Color: "#6C5CE7", Icon: "📚"},
	{ID: "housing", Name: "住房", Color: "#A8E6CF", Icon: "🏠"},
	{ID: "communication", Name: "通讯", Color: "#74B9FF", Icon: "📱"},
	{ID: "salary", Name: "工资", Color: "#55EFC4", Icon: "💰"},
	{ID: "parttime", Name: "兼职", Color: "#81ECEC", Icon: "💼"},
	{ID: "investment", Name: "理财", Color: "#FAB1A0", Icon: "📈"},
	{ID: OtherID, Name: "其他", Color: "#B2BEC3", Icon: "📦"},
}

type Registry struct {
	byID  map[string]core.Category
	order []core.Category
}

// NewRegistry seeds the registry with the default category list. User-defined
// categories are not supported.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]core.Category, len(defaults))}
	for _, c := range defaults {
		r.byID[c.ID] = c
		r.order = append(r.order, c)
	}
	return r
}

// Resolve returns the category for id, or the "other" sentinel when the id
// is unknown or empty. It never returns a zero value.
func (r *Registry) Resolve(id string) core.Category {
	if c, ok := r.byID[id]; ok {
		return c
	}
	return r.byID[OtherID]
}

// Known reports whether id resolves without falling back.
func (r *Registry) Known(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// All returns the seeded categories in declaration order.
func (r *Registry) All() []core.Category {
	out := make([]core.Category, len(r.order))
	copy(out, r.order)
	return out
}
