package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Prefijos de los números de transacción.
const (
	PrefixReceive  = "RCV"
	PrefixIssue    = "ISS"
	PrefixWaste    = "WST"
	PrefixTransfer = "TRF"
	PrefixDamage   = "DMG"
)

// SequencePadWidth dígitos del consecutivo.
const SequencePadWidth = 6

// ScopeKey clave del contador: prefijo, código de bodega y calificadores opcionales.
func ScopeKey(prefix, warehouseCode string, qualifiers ...string) string {
	parts := append([]string{prefix, warehouseCode}, qualifiers...)
	return strings.Join(parts, ":")
}

// FormatNumber <PREFIX>-<bodega>-<consecutivo> (salidas y traslados).
func FormatNumber(prefix, warehouseCode string, seq int64) string {
	return fmt.Sprintf("%s-%s-%0*d", prefix, warehouseCode, SequencePadWidth, seq)
}

// FormatReceiveNumber RCV-<bodega>-<yyyyMMdd>-<consecutivo>.
func FormatReceiveNumber(warehouseCode string, at time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%s-%0*d", PrefixReceive, warehouseCode, at.Format("20060102"), SequencePadWidth, seq)
}

// FormatDamageNumber DMG-<ROL>-<bodega>-<consecutivo>.
func FormatDamageNumber(role, warehouseCode string, seq int64) string {
	return fmt.Sprintf("%s-%s-%s-%0*d", PrefixDamage, strings.ToUpper(role), warehouseCode, SequencePadWidth, seq)
}

// IssuePrefix prefijo según el tipo de salida.
func IssuePrefix(issueType string) string {
	switch issueType {
	case entity.IssueTypeWaste, entity.IssueTypeExpired:
		return PrefixWaste
	default:
		return PrefixIssue
	}
}
