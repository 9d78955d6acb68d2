// Package record defines the canonical output row for extracted credit
// documents and the reference tables used to correct known documents.
package record

// Field names, in the exact column order of the output files.
const (
	FieldOperacion        = "OPERACION"
	FieldRUT              = "RUT"
	FieldDV               = "DV"
	FieldNombre           = "NOMBRE"
	FieldDireccion        = "DIRECCION"
	FieldComuna           = "COMUNA"
	FieldCiudad           = "CIUDAD"
	FieldFechaSuscripcion = "FECHA_SUSCRIPCION"
	FieldMontoCredito     = "MONTO_CREDITO"
	FieldCuotas           = "CUOTAS"
	FieldTasaInteres      = "TASA_INTERES"
	FieldProducto         = "PRODUCTO"
	FieldMontoCuota       = "MONTO_CUOTA"
	FieldMontoUltimaCuota = "MONTO_ULTIMA_CUOTA"
	FieldFechaVencPrimera = "FECHA_VENCIMIENTO_PRIMERA_CUOTA"
	FieldFechaVencUltima  = "FECHA_VENCIMIENTO_ULTIMA_CUOTA"
	FieldCuotaMorosa      = "CUOTA_MOROSA"
	FieldFechaCuotaMorosa = "FECHA_CUOTA_MOROSA"
	FieldCapital          = "CAPITAL"
	FieldApoderado1       = "APODERADO_1"
	FieldApoderado2       = "APODERADO_2"
	FieldExhorto          = "EXHORTO"
	FieldSucursal         = "SUCURSAL"
)

// Headers is the canonical column order.
var Headers = []string{
	FieldOperacion, FieldRUT, FieldDV, FieldNombre, FieldDireccion,
	FieldComuna, FieldCiudad, FieldFechaSuscripcion, FieldMontoCredito,
	FieldCuotas, FieldTasaInteres, FieldProducto, FieldMontoCuota,
	FieldMontoUltimaCuota, FieldFechaVencPrimera, FieldFechaVencUltima,
	FieldCuotaMorosa, FieldFechaCuotaMorosa, FieldCapital,
	FieldApoderado1, FieldApoderado2, FieldExhorto, FieldSucursal,
}

// Default bank attorneys-in-fact stamped on rows when the document does
// not name its own representatives.
const (
	DefaultApoderado1 = "YASNA DEL CARMEN OLAVE MARTINEZ"
	DefaultApoderado2 = "ERWIN ORLANDO ALIAGA MARILLAN"
)

// Known attorney RUT bodies mapped to canonical names, used to repair
// OCR-mangled apoderado fields.
var (
	Apoderado1ByRUT = map[string]string{
		"12904108": DefaultApoderado1,
	}
	Apoderado2ByRUT = map[string]string{
		"13549112": DefaultApoderado2,
	}
)

// Record is one canonical output row. All values are strings in their
// display form; blank means the field could not be extracted.
type Record map[string]string

// New returns a record with every canonical field present and blank.
func New() Record {
	r := make(Record, len(Headers))
	for _, h := range Headers {
		r[h] = ""
	}
	return r
}

// Empty returns the row emitted for a document that failed entirely.
// The operation number from the filename is preserved so the row can
// still be reconciled downstream.
func Empty(operation string) Record {
	r := New()
	r[FieldOperacion] = operation
	r[FieldApoderado1] = DefaultApoderado1
	r[FieldApoderado2] = DefaultApoderado2
	return r
}

// Values returns the row's values in canonical column order.
func (r Record) Values() []string {
	out := make([]string, len(Headers))
	for i, h := range Headers {
		out[i] = r[h]
	}
	return out
}

// SetDefault assigns value only when the field is currently blank.
func (r Record) SetDefault(field, value string) {
	if r[field] == "" && value != "" {
		r[field] = value
	}
}

// Clone returns a copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Blank reports whether no data field beyond the defaults is set.
func (r Record) Blank() bool {
	for _, h := range Headers {
		switch h {
		case FieldOperacion, FieldApoderado1, FieldApoderado2, FieldExhorto, FieldSucursal:
			continue
		}
		if r[h] != "" {
			return false
		}
	}
	return true
}
