package domain

// EntityType identifies one kind of ERP export.
type EntityType string

// Supported entity types. The string value doubles as the storage table name.
const (
	// EntityCustomers is the customer master data export.
	EntityCustomers EntityType = "customers"

	// EntityProducts is the article catalogue export.
	EntityProducts EntityType = "products"

	// EntityPrices is the price list export.
	EntityPrices EntityType = "prices"

	// EntityOrders is the sales order export.
	EntityOrders EntityType = "orders"

	// EntityDeliveryNotes is the DDT (delivery note) export.
	EntityDeliveryNotes EntityType = "delivery_notes"

	// EntityInvoices is the invoice export.
	EntityInvoices EntityType = "invoices"
)

// AllEntityTypes returns every supported entity type in sync order.
// Master data comes first so relational types can be matched against it.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityCustomers,
		EntityProducts,
		EntityPrices,
		EntityOrders,
		EntityDeliveryNotes,
		EntityInvoices,
	}
}

// IsValid returns true if the entity type is recognised.
func (t EntityType) IsValid() bool {
	switch t {
	case EntityCustomers, EntityProducts, EntityPrices,
		EntityOrders, EntityDeliveryNotes, EntityInvoices:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t EntityType) String() string {
	return string(t)
}

// Description returns a human-readable name.
func (t EntityType) Description() string {
	switch t {
	case EntityCustomers:
		return "Customers"
	case EntityProducts:
		return "Products"
	case EntityPrices:
		return "Prices"
	case EntityOrders:
		return "Orders"
	case EntityDeliveryNotes:
		return "Delivery notes (DDT)"
	case EntityInvoices:
		return "Invoices"
	default:
		return "Unknown"
	}
}

// ParseEntityType converts a user-supplied name to an EntityType.
// Accepts the canonical name plus the "ddt" alias.
func ParseEntityType(s string) (EntityType, error) {
	if s == "ddt" {
		return EntityDeliveryNotes, nil
	}
	t := EntityType(s)
	if !t.IsValid() {
		return "", ErrUnsupportedType
	}
	return t, nil
}

// EntityPolicy holds the per-type rules applied by the delta store.
type EntityPolicy struct {
	// KeyField is the field holding the natural key. Records whose key is
	// empty, whitespace or "0" are garbage.
	KeyField string

	// SignificantFields are hashed, in this order, to detect changes.
	SignificantFields []string

	// AlwaysOverwrite disables the hash-skip path.
	AlwaysOverwrite bool

	// DeleteStale removes records not seen by a completed full sync.
	DeleteStale bool

	// RequiredFields are expected on every record. A record missing one is
	// still stored but flagged partial.
	RequiredFields []string
}

// MissingRequired returns the required fields that are null in fields.
func (p EntityPolicy) MissingRequired(fields Fields) []string {
	var missing []string
	for _, name := range p.RequiredFields {
		if fields.IsNull(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
