package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario (multi-bodega).
// Code es el código corto que aparece en los números de transacción.
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
