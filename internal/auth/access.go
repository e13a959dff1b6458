package auth

import "backoffice-service/internal/models"

type Page string

const (
	PageDashboard Page = "dashboard"
	PagePedidos   Page = "pedidos"
	PageClientes  Page = "clientes"
	PageRepartos  Page = "repartos"
	PageProductos Page = "productos"
	PageVentas    Page = "ventas"
	PageInventory Page = "inventario"
	PageAdmin     Page = "admin"
)

type NavEntry struct {
	Page  Page   `json:"page"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

func entry(p Page, label string) NavEntry {
	return NavEntry{Page: p, Label: label, Href: "/" + string(p)}
}

// navigation is ordered as the side menu shows it.
var navigation = map[models.Role][]NavEntry{
	models.RoleAdmin: {
		entry(PageDashboard, "Dashboard"),
		entry(PagePedidos, "Pedidos"),
		entry(PageClientes, "Clientes"),
		entry(PageRepartos, "Repartos"),
		entry(PageProductos, "Productos"),
		entry(PageVentas, "Ventas"),
		entry(PageInventory, "Inventario"),
		entry(PageAdmin, "Admin"),
	},
	models.RoleCustomerManager: {
		entry(PageClientes, "Clientes"),
		entry(PageProductos, "Productos"),
		entry(PageVentas, "Ventas"),
		entry(PageInventory, "Inventario"),
	},
	models.RoleLogistics: {
		entry(PageClientes, "Clientes"),
		entry(PageRepartos, "Repartos"),
		entry(PagePedidos, "Pedidos"),
	},
}

// Navigation returns the pages a role may open. Unknown roles get none.
func Navigation(role models.Role) []NavEntry {
	entries := navigation[role]
	out := make([]NavEntry, len(entries))
	copy(out, entries)
	return out
}

func CanAccess(role models.Role, page Page) bool {
	for _, e := range navigation[role] {
		if e.Page == page {
			return true
		}
	}
	return false
}
