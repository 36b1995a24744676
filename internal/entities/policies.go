package entities

import "github.com/archibald-labs/archisync/internal/core/domain"

// DefaultPolicies returns the built-in delta-store policy of every type.
//
// Delivery notes are always overwritten: the ERP back-fills tracking data
// on rows whose hashed fields do not change. Invoices and orders are
// historical and never deleted. An order without a creation date is
// kept but flagged partial.
func DefaultPolicies() map[domain.EntityType]domain.EntityPolicy {
	return map[domain.EntityType]domain.EntityPolicy{
		domain.EntityCustomers: {
			KeyField: domain.FieldCustomerID,
			SignificantFields: []string{
				"name", "vat_number", "pec", "sdi", "fiscal_code", "delivery_terms",
				"street", "postal_code", "city", "phone", "mobile", "last_order_date",
			},
			DeleteStale: true,
		},
		domain.EntityProducts: {
			KeyField: domain.FieldProductID,
			SignificantFields: []string{
				domain.FieldProductName, "descrizione", "gruppo_articolo",
				domain.FieldProductPackage, "unita_prezzo", "qta_minima", "qta_multipli",
				"qta_massima", domain.FieldProductVariantCode, "articolo_ordinabile",
				"fermato", "purch_price",
			},
			DeleteStale: true,
		},
		domain.EntityPrices: {
			KeyField: domain.FieldPriceID,
			SignificantFields: []string{
				domain.FieldPriceProductID, domain.FieldPriceItemSelection,
				domain.FieldPriceProductName, "valid_from", "valid_to",
				"quantity_from", "quantity_to", "unit_price", "currency", "net_price",
			},
			DeleteStale: true,
		},
		domain.EntityOrders: {
			KeyField: domain.FieldOrderID,
			SignificantFields: []string{
				domain.FieldOrderNumber, domain.FieldOrderCustomer, domain.FieldOrderDeliveryDate,
				"sales_status", "document_status", "transfer_status",
				"discount_percent", "gross_amount", "total_amount",
			},
			RequiredFields: []string{domain.FieldOrderCreationDate},
		},
		domain.EntityDeliveryNotes: {
			KeyField: domain.FieldDeliveryNoteID,
			SignificantFields: []string{
				domain.FieldDeliveryNoteNumber, domain.FieldDeliveryNoteDate,
				domain.FieldDeliveryNoteOrder, domain.FieldDeliveryNoteCustomer,
				"tracking_number", "delivery_method",
			},
			AlwaysOverwrite: true,
		},
		domain.EntityInvoices: {
			KeyField: domain.FieldInvoiceID,
			SignificantFields: []string{
				domain.FieldInvoiceDate, domain.FieldInvoiceCustomer, domain.FieldInvoiceOrder,
				"invoice_amount", "remaining_amount", "closed", "due_date", "last_settlement_date",
			},
		},
	}
}
