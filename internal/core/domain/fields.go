package domain

// Field names referenced outside the entity catalogue: natural keys and
// the fields the matcher reads.
const (
	FieldCustomerID = "id_profilo_cliente"

	FieldProductID          = "id_articolo"
	FieldProductName        = "nome_articolo"
	FieldProductPackage     = "contenuto_imballaggio"
	FieldProductVariantCode = "id_configurazione"

	FieldPriceID            = "id"
	FieldPriceProductID     = "product_id"
	FieldPriceItemSelection = "item_selection"
	FieldPriceProductName   = "product_name"

	FieldOrderID           = "id"
	FieldOrderNumber       = "order_number"
	FieldOrderCustomer     = "customer_profile_id"
	FieldOrderCreationDate = "creation_date"
	FieldOrderDeliveryDate = "delivery_date"

	FieldDeliveryNoteID       = "id"
	FieldDeliveryNoteNumber   = "ddt_number"
	FieldDeliveryNoteOrder    = "order_number"
	FieldDeliveryNoteCustomer = "customer_account"
	FieldDeliveryNoteDate     = "delivery_date"

	FieldInvoiceID       = "invoice_id"
	FieldInvoiceDate     = "invoice_date"
	FieldInvoiceCustomer = "customer_account"
	FieldInvoiceOrder    = "order_number"
)
