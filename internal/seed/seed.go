// Package seed holds demo data for local runs of the fake branch API.
package seed

// Product is a sellable catalog entry. UnitPrice is a decimal string with VAT
// included.
type Product struct {
	ID        string
	Code      string
	Name      string
	UnitPrice string
}

// Catalog returns the demo catalog. The slice is fresh on every call.
func Catalog() []Product {
	return []Product{
		{ID: "demo-mate", Code: "SKU-DEMO-MATE", Name: "Yerba mate 1kg", UnitPrice: "4250.00"},
		{ID: "demo-mug", Code: "SKU-DEMO-MUG", Name: "Ceramic mug", UnitPrice: "1299.50"},
		{ID: "demo-shirt", Code: "SKU-DEMO-TSHIRT", Name: "Cotton T-shirt", UnitPrice: "8999.99"},
		{ID: "demo-sticker", Code: "SKU-DEMO-STICKER", Name: "Sticker pack", UnitPrice: "10.00"},
	}
}
