package entities

import "github.com/archibald-labs/archisync/internal/core/domain"

// none disables the index fallback of a field.
const none = -1

func text(name string, page, index int, headers ...string) domain.FieldSpec {
	return domain.FieldSpec{Name: name, Page: page, Index: index, Headers: headers, Kind: domain.KindText}
}

func typed(kind domain.FieldKind, name string, page, index int, headers ...string) domain.FieldSpec {
	return domain.FieldSpec{Name: name, Page: page, Index: index, Headers: headers, Kind: kind}
}

// customersLayout spreads 26 fields over an 8-page cycle.
func customersLayout() domain.Layout {
	return domain.Layout{
		EntityType:    domain.EntityCustomers,
		PagesPerCycle: 8,
		CycleHeader:   "ID PROFILO CLIENTE",
		Fields: []domain.FieldSpec{
			text(domain.FieldCustomerID, 0, 0, "ID PROFILO CLIENTE", "PROFILO CLIENTE"),
			text("name", 0, 1, "NOME"),
			text("vat_number", 0, 2, "PARTITA IVA"),

			text("pec", 1, 0, "PEC"),
			text("sdi", 1, 1, "SDI"),
			text("fiscal_code", 1, 2, "CODICE FISCALE"),
			text("delivery_terms", 1, 3, "TERMINI DI CONSEGNA"),

			typed(domain.KindMultiline, "street", 2, 0, "VIA"),
			typed(domain.KindMultiline, "logistics_address", 2, 1, "INDIRIZZO LOGISTICO"),
			text("postal_code", 2, 2, "CAP"),
			text("city", 2, 3, "CITTÀ"),

			text("phone", 3, 0, "TELEFONO"),
			text("mobile", 3, 1, "CELLULARE"),
			text("url", 3, 2, "URL"),
			text("attention_to", 3, 3, "ALL'ATTENZIONE DI"),
			typed(domain.KindDate, "last_order_date", 3, 4, "DATA DELL'ULTIMO ORDINE"),

			text("customer_type", 4, 0, "TIPO DI CLIENTE"),
			text("type", 4, 1, "TIPO"),
			typed(domain.KindMultiline, "description", 4, 2, "DESCRIZIONE"),

			text("actual_order_count", 5, 0, "CONTEGGIO ORDINI EFFETTIVI"),
			text("previous_order_count_1", 5, 1, "CONTEGGIO ORDINI PRECEDENTI 1"),
			typed(domain.KindDisplayPrice, "previous_sales_1", 5, 2, "VENDITE PRECEDENTI 1"),

			text("previous_order_count_2", 6, 0, "CONTEGGIO ORDINI PRECEDENTI 2"),
			typed(domain.KindDisplayPrice, "previous_sales_2", 6, 1, "VENDITE PRECEDENTI 2"),

			text("external_account_number", 7, 0, "NUMERO DI CONTO ESTERNO"),
			text("our_account_number", 7, 1, "IL NOSTRO NUMERO DI CONTO"),
		},
	}
}

// productsLayout spreads the article catalogue over an 8-page cycle.
// The IMMAGINE column on page 1 is never read.
func productsLayout() domain.Layout {
	pacco := text("pacco_gamba", 3, 4, "PACCO")
	pacco.JoinWith = "gamba"

	return domain.Layout{
		EntityType:    domain.EntityProducts,
		PagesPerCycle: 8,
		CycleHeader:   "ID ARTICOLO",
		Fields: []domain.FieldSpec{
			text(domain.FieldProductID, 0, 0, "ID ARTICOLO"),
			text(domain.FieldProductName, 0, 1, "NOME ARTICOLO"),
			typed(domain.KindMultiline, "descrizione", 0, 2, "DESCRIZIONE"),

			text("gruppo_articolo", 1, 0, "GRUPPO ARTICOLO"),
			text(domain.FieldProductPackage, 1, 2, "CONTENUTO DELL'IMBALLAGGIO", "CONTENUTO IMBALLAGGIO"),
			text("nome_ricerca", 1, 3, "NOME DELLA RICERCA", "NOME RICERCA"),

			text("unita_prezzo", 2, 0, "UNITÀ DI PREZZO"),
			text("id_gruppo_prodotti", 2, 1, "ID GRUPPO DI PRODOTTI"),
			text("descrizione_gruppo_articolo", 2, 2, "DESCRIZIONE GRUPPO ARTICOLO"),
			text("qta_minima", 2, 3, "QTÀ MINIMA"),

			text("qta_multipli", 3, 0, "QTÀ MULTIPLI"),
			text("qta_massima", 3, 1, "QTÀ MASSIMA"),
			text("figura", 3, 2, "FIGURA"),
			text("id_blocco_articolo", 3, 3, "ID BLOCCO ARTICOLO"),
			pacco,
			text("gamba", 3, 5, "GAMBA"),

			text("grandezza", 4, 0, "GRANDEZZA"),
			text(domain.FieldProductVariantCode, 4, 1, "ID CONFIGURAZIONE"),
			text("creato_da", 4, 2, "CREATO DA"),
			typed(domain.KindDateTime, "data_creata", 4, 3, "DATA CREATA"),
			text("dataareaid", 4, 4, "DATAAREAID"),

			text("qta_predefinita", 5, 0, "QTÀ PREDEFINITA"),
			text("visualizza_numero_prodotto", 5, 1, "VISUALIZZA NUMERO PRODOTTO"),
			typed(domain.KindDisplayPrice, "sconto_assoluto_totale", 5, 2, "SCONTO ASSOLUTO TOTALE"),
			text("id_prodotto", 5, 3, "ID PRODOTTO"),

			typed(domain.KindDisplayPrice, "sconto_linea", 6, 0, "SCONTO LINEA"),
			text("modificato_da", 6, 1, "MODIFICATO DA"),
			typed(domain.KindDateTime, "datetime_modificato", 6, 2, "DATA E ORA MODIFICATE", "DATETIME MODIFICATO"),
			text("articolo_ordinabile", 6, 3, "ARTICOLO ORDINABILE"),

			typed(domain.KindDisplayPrice, "purch_price", 7, 0, "PURCHPRICE"),
			text("pcs_id_configurazione_standard", 7, 1, "PCS ID CONFIGURAZIONE STANDARD"),
			text("qta_standard", 7, 2, "QTÀ STANDARD"),
			text("fermato", 7, 3, "FERMATO"),
			text("id_unita", 7, 4, "ID UNITÀ"),
		},
	}
}

// pricesLayout reads the price list, 3 pages per cycle.
// The unit price keeps its "1.234,56 €" rendering.
func pricesLayout() domain.Layout {
	return domain.Layout{
		EntityType:    domain.EntityPrices,
		PagesPerCycle: 3,
		CycleHeader:   "ID",
		Fields: []domain.FieldSpec{
			text(domain.FieldPriceID, 0, 0, "ID"),
			text(domain.FieldPriceProductID, 0, 1, "ID ARTICOLO", "CODICE ARTICOLO"),
			text(domain.FieldPriceItemSelection, 0, 2, "ITEM SELECTION"),
			text("account_code", 0, 3, "CODICE CONTO"),
			text("account_description", 0, 4, "ACCOUNT: DESCRIZIONE"),

			text(domain.FieldPriceProductName, 1, 0, "ITEM DESCRIPTION"),
			typed(domain.KindDate, "valid_from", 1, 1, "DA DATA"),
			typed(domain.KindDate, "valid_to", 1, 2, "DATA"),
			text("quantity_from", 1, 3, "QUANTITÀ"),
			text("quantity_to", 1, 4, "QUANTITÀ A"),

			typed(domain.KindDisplayPrice, "unit_price", 2, 0, "IMPORTO UNITARIO"),
			text("currency", 2, 1, "VALUTA"),
			text("price_unit", 2, 2, "UNITÀ DI PREZZO"),
			typed(domain.KindDisplayPrice, "net_price", 2, 3, "PREZZO NETTO BRASSELER", "PREZZO NETTO"),
		},
	}
}

// ordersLayout reads sales orders, 7 pages per cycle.
// Pending orders have no order number yet, so the internal ID is the key.
func ordersLayout() domain.Layout {
	return domain.Layout{
		EntityType:    domain.EntityOrders,
		PagesPerCycle: 7,
		CycleHeader:   "ID",
		Fields: []domain.FieldSpec{
			text(domain.FieldOrderID, 0, 0, "ID"),
			text(domain.FieldOrderNumber, 0, 1, "ID DI VENDITA"),
			text(domain.FieldOrderCustomer, 0, 2, "PROFILO CLIENTE"),
			text("customer_name", 0, 3, "NOME VENDITE"),

			text("delivery_name", 1, 0, "NOME DI CONSEGNA"),
			typed(domain.KindMultiline, "delivery_address", 1, 1, "INDIRIZZO DI CONSEGNA"),

			typed(domain.KindDateTime, domain.FieldOrderCreationDate, 2, 0, "DATA DI CREAZIONE"),
			typed(domain.KindDate, domain.FieldOrderDeliveryDate, 2, 1, "DATA DI CONSEGNA"),
			text("remaining_sales_value", 2, 2, "RIMANI VENDITE FINANZIARIE"),

			text("customer_reference", 3, 0, "RIFERIMENTO CLIENTE"),
			text("sales_status", 3, 1, "STATO DELLE VENDITE"),
			text("order_type", 3, 2, "TIPO DI ORDINE"),
			text("document_status", 3, 3, "STATO DEL DOCUMENTO"),

			text("sales_origin", 4, 0, "ORIGINE VENDITE"),
			text("transfer_status", 4, 1, "STATO DEL TRASFERIMENTO"),
			typed(domain.KindDate, "transfer_date", 4, 2, "DATA DI TRASFERIMENTO"),

			typed(domain.KindDate, "completion_date", 5, 0, "DATA DI COMPLETAMENTO"),
			typed(domain.KindPercent, "discount_percent", 5, 2, "APPLICA SCONTO %", "APPLICA SCONTO"),
			typed(domain.KindDisplayPrice, "gross_amount", 5, 3, "IMPORTO LORDO"),

			typed(domain.KindDisplayPrice, "total_amount", 6, 0, "IMPORTO TOTALE"),
		},
	}
}

// deliveryNotesLayout reads DDT exports, 6 pages per cycle. The header row
// of these exports is unreliable, so every field carries an index fallback.
// Column 0 of page 0 is the PDF link icon.
func deliveryNotesLayout() domain.Layout {
	return domain.Layout{
		EntityType:    domain.EntityDeliveryNotes,
		PagesPerCycle: 6,
		Fields: []domain.FieldSpec{
			text(domain.FieldDeliveryNoteID, 0, 1, "ID"),
			text(domain.FieldDeliveryNoteNumber, 0, 2, "DOCUMENTO DI TRASPORTO"),
			typed(domain.KindDate, domain.FieldDeliveryNoteDate, 0, 3, "DATA DI CONSEGNA"),
			text(domain.FieldDeliveryNoteOrder, 0, 4, "ID DI VENDITA"),

			text(domain.FieldDeliveryNoteCustomer, 1, 0, "CONTO CLIENTE"),
			text("sales_name", 1, 1, "NOME VENDITE"),

			text("delivery_name", 2, 0, "NOME DI CONSEGNA"),

			text("tracking_number", 3, 0, "NUMERO DI TRACCIABILITÀ"),
			text("delivery_terms", 3, 1, "TERMINI DI CONSEGNA"),
			text("delivery_method", 3, 2, "MODALITÀ DI CONSEGNA"),

			text("delivery_city", 4, 0, "CITTÀ DI CONSEGNA"),
		},
	}
}

// invoicesLayout reads invoices, 7 pages per cycle. The order number used
// for matching sits on the last page.
func invoicesLayout() domain.Layout {
	return domain.Layout{
		EntityType:    domain.EntityInvoices,
		PagesPerCycle: 7,
		CycleHeader:   "ID FATTURA",
		Fields: []domain.FieldSpec{
			text(domain.FieldInvoiceID, 0, 0, "ID FATTURA"),
			typed(domain.KindDate, domain.FieldInvoiceDate, 0, 1, "DATA FATTURA"),
			text(domain.FieldInvoiceCustomer, 0, 2, "CONTO FATTURE"),

			text("billing_name", 1, 0, "NOME DI FATTURAZIONE"),
			text("quantity", 1, 1, "QUANTITÀ"),
			typed(domain.KindDisplayPrice, "sales_balance", 1, 2, "SALDO VENDITE MST"),

			typed(domain.KindDisplayPrice, "line_sum", 2, 0, "SOMMA LINEA"),
			typed(domain.KindDisplayPrice, "discount_amount", 2, 1, "SCONTO MST"),
			typed(domain.KindDisplayPrice, "tax_sum", 2, 2, "SOMMA FISCALE MST"),
			typed(domain.KindDisplayPrice, "invoice_amount", 2, 3, "IMPORTO FATTURA MST"),

			text("purchase_order", 3, 0, "ORDINE DI ACQUISTO"),
			text("customer_reference", 3, 1, "RIFERIMENTO CLIENTE"),
			typed(domain.KindDate, "due_date", 3, 2, "SCADENZA"),

			text("payment_terms_id", 4, 0, "ID TERMINE DI PAGAMENTO"),
			text("days_past_due", 4, 1, "OLTRE I GIORNI DI SCADENZA"),

			typed(domain.KindDisplayPrice, "settled_amount", 5, 0, "LIQUIDA"),
			typed(domain.KindDisplayPrice, "amount", 5, 1, "IMPORTO MST"),
			text("last_payment_id", 5, 2, "IDENTIFICATIVO ULTIMO PAGAMENTO"),
			typed(domain.KindDate, "last_settlement_date", 5, 3, "DATA DI ULTIMA LIQUIDAZIONE"),

			text("closed", 6, 0, "CHIUSO"),
			typed(domain.KindDisplayPrice, "remaining_amount", 6, 1, "IMPORTO RIMANENTE MST"),
			text(domain.FieldInvoiceOrder, 6, 2, "ID VENDITE"),
		},
	}
}
