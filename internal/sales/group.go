package sales

import (
	"sort"

	"github.com/shopspring/decimal"

	"backoffice-service/internal/lifecycle"
	"backoffice-service/internal/models"
)

// Group folds line items into sales keyed by transaction id, newest
// transaction first. Header fields come from the first item; the status is
// the least advanced one among the items.
func Group(items []models.SaleLineItem) []models.Sale {
	byTx := make(map[int]*models.Sale)
	totals := make(map[int]decimal.Decimal)
	statuses := make(map[int][]models.SaleStatus)
	var order []int

	for _, item := range items {
		sale, ok := byTx[item.TransactionID]
		if !ok {
			sale = &models.Sale{
				TransactionID:   item.TransactionID,
				CustomerID:      item.CustomerID,
				CustomerName:    item.CustomerName,
				SellerID:        item.SellerID,
				SellerName:      item.SellerName,
				Date:            item.Date,
				CustomerAddress: item.CustomerAddress,
				DeliveryDate:    item.DeliveryDate,
				DeliveryWindow:  item.DeliveryWindow,
				CourierID:       item.CourierID,
				CourierName:     item.CourierName,
			}
			byTx[item.TransactionID] = sale
			order = append(order, item.TransactionID)
		}
		sale.Items = append(sale.Items, item)
		totals[item.TransactionID] = totals[item.TransactionID].Add(decimal.NewFromFloat(item.LineTotal))
		statuses[item.TransactionID] = append(statuses[item.TransactionID], item.Status)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(order)))

	out := make([]models.Sale, 0, len(order))
	for _, tid := range order {
		sale := byTx[tid]
		sale.Total = totals[tid].Round(2).InexactFloat64()
		sale.Status = lifecycle.Aggregate(statuses[tid])
		out = append(out, *sale)
	}
	return out
}
