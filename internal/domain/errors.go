package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound                   = errors.New("recurso no encontrado")
	ErrInvalidInput               = errors.New("entrada inválida")
	ErrUnauthorized               = errors.New("no autorizado")
	ErrForbidden                  = errors.New("acceso denegado")
	ErrConflict                   = errors.New("conflicto con el estado actual")
	ErrInsufficientStock          = errors.New("stock insuficiente")
	ErrLotNotFound                = errors.New("lote no encontrado")
	ErrWarehouseNotFound          = errors.New("bodega no encontrada")
	ErrTransactionNotFound        = errors.New("transacción no encontrada")
	ErrTransferNotFound           = errors.New("traslado no encontrado")
	ErrDuplicateTransactionNumber = errors.New("número de transacción duplicado")
	ErrInvalidTransferState       = errors.New("el traslado no está pendiente")
	ErrAlreadyCancelled           = errors.New("la transacción ya fue anulada")
)

// StockError acompaña un error de dominio con el contexto necesario para armar
// un mensaje de usuario (lote, cantidad pedida y disponible).
// errors.Is(err, ErrInsufficientStock) funciona a través de Unwrap.
type StockError struct {
	Kind      error
	LotID     string
	LotCode   string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *StockError) Error() string {
	switch {
	case e.LotID != "" || e.LotCode != "":
		ref := e.LotCode
		if ref == "" {
			ref = e.LotID
		}
		return fmt.Sprintf("%s: lote %s, solicitado %s, disponible %s", e.Kind, ref, e.Requested, e.Available)
	default:
		return fmt.Sprintf("%s: solicitado %s, disponible %s", e.Kind, e.Requested, e.Available)
	}
}

func (e *StockError) Unwrap() error { return e.Kind }

// InsufficientStock construye un StockError de stock insuficiente.
func InsufficientStock(lotID, lotCode string, requested, available decimal.Decimal) *StockError {
	return &StockError{
		Kind:      ErrInsufficientStock,
		LotID:     lotID,
		LotCode:   lotCode,
		Requested: requested,
		Available: available,
	}
}

// AvailableOf devuelve la cantidad disponible informada por un StockError, si lo hay.
func AvailableOf(err error) (decimal.Decimal, bool) {
	var se *StockError
	if errors.As(err, &se) {
		return se.Available, true
	}
	return decimal.Zero, false
}
