package order

import (
	"sort"
	"strconv"
	"strings"
)

type Tab string

const (
	// TabCurrent holds orders still moving through fulfillment.
	TabCurrent Tab = "current"
	// TabPast holds resolved orders.
	TabPast Tab = "past"
)

var currentStatuses = map[OrderStatus]bool{
	StatusPendingConfirmation: true,
	StatusPending:             true,
	StatusInProgress:          true,
}

type SortKey string

const (
	SortDeliveryAsc  SortKey = "delivery_asc"
	SortDeliveryDesc SortKey = "delivery_desc"
	SortCreatedAsc   SortKey = "created_asc"
	SortCreatedDesc  SortKey = "created_desc"
	SortQuantityAsc  SortKey = "quantity_asc"
	SortQuantityDesc SortKey = "quantity_desc"
	SortStatus       SortKey = "status"
)

// ListQuery is the operator-facing list transformation: tab partition,
// exact-match filters, free-text search and ordering.
type ListQuery struct {
	Tab     Tab
	Status  *OrderStatus
	Product *string
	Sort    SortKey
	Search  string
}

// ApplyListQuery filters, searches and sorts aggregated views in memory.
// The input slice is never mutated.
func ApplyListQuery(views []View, q ListQuery) []View {
	out := make([]View, 0, len(views))

	search := strings.ToLower(strings.TrimSpace(q.Search))

	for _, v := range views {
		if q.Tab == TabCurrent && !currentStatuses[v.Status] {
			continue
		}
		if q.Tab == TabPast && currentStatuses[v.Status] {
			continue
		}
		if q.Status != nil && v.Status != *q.Status {
			continue
		}
		if q.Product != nil && !hasProduct(v, *q.Product) {
			continue
		}
		if search != "" && !matchesSearch(v, search) {
			continue
		}
		out = append(out, v)
	}

	sortViews(out, q.Sort)
	return out
}

func hasProduct(v View, product string) bool {
	for _, sub := range v.SubOrders {
		if sub.ProductType == product {
			return true
		}
	}
	return false
}

// matchesSearch does case-insensitive substring matching across the order's
// own fields and every sub-order's fields; any single hit includes the order.
func matchesSearch(v View, search string) bool {
	fields := []string{
		v.ID,
		v.Client.Name,
		v.Client.Email,
		v.Client.Phone,
		v.Client.Company,
		v.CreatedByName,
		v.CreatedByEmail,
		string(v.Status),
	}
	if v.DisplayName != nil {
		fields = append(fields, *v.DisplayName)
	}

	for _, sub := range v.SubOrders {
		fields = append(fields,
			sub.ProductType,
			sub.ProductLabel,
			strconv.Itoa(sub.Quantity),
			sub.Description,
			sub.Notes,
			string(sub.Status),
		)
		if sub.Dimensions != nil {
			fields = append(fields, *sub.Dimensions)
		}
		if sub.DesignFileURL != nil {
			fields = append(fields, *sub.DesignFileURL)
		}
	}

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func sortViews(views []View, key SortKey) {
	switch key {
	case SortDeliveryAsc:
		sort.SliceStable(views, func(i, j int) bool {
			return lessByDelivery(views[i], views[j], true)
		})
	case SortDeliveryDesc:
		sort.SliceStable(views, func(i, j int) bool {
			return lessByDelivery(views[i], views[j], false)
		})
	case SortCreatedAsc:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].CreatedAt.Before(views[j].CreatedAt)
		})
	case SortCreatedDesc:
		sort.SliceStable(views, func(i, j int) bool {
			return views[j].CreatedAt.Before(views[i].CreatedAt)
		})
	case SortQuantityAsc:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].TotalQuantity < views[j].TotalQuantity
		})
	case SortQuantityDesc:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].TotalQuantity > views[j].TotalQuantity
		})
	case SortStatus:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Status < views[j].Status
		})
	}
}

// lessByDelivery orders by earliest delivery; orders without any delivery
// time sort last regardless of direction.
func lessByDelivery(a, b View, asc bool) bool {
	switch {
	case a.EarliestDelivery == nil && b.EarliestDelivery == nil:
		return false
	case a.EarliestDelivery == nil:
		return false
	case b.EarliestDelivery == nil:
		return true
	}
	if asc {
		return a.EarliestDelivery.Before(*b.EarliestDelivery)
	}
	return b.EarliestDelivery.Before(*a.EarliestDelivery)
}
