package entity

import "time"

// Shipment embarque de proveedor registrado por una importación. BatchCode es único:
// un lote se importa una sola vez.
type Shipment struct {
	BatchCode       string
	SupplierInvoice string
	ImportedBy      string
	ImportedAt      time.Time
}

// Sale registro de venta de una unidad. Una venta por unidad; Receipt, si se informa,
// no se repite entre ventas.
type Sale struct {
	ID           string
	UnitID       string
	Receipt      *string
	CustomerName string
	Branch       string
	SoldBy       string
	SoldAt       time.Time
}
