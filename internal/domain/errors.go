package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrValidation        = errors.New("entrada inválida")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrConflict          = errors.New("conflicto con el estado actual")
)

// ValidationError entrada mal formada o incompleta. Row es el número de fila de importación (0 si no aplica).
type ValidationError struct {
	Field    string
	Row      int
	Problems []string
}

// NewValidationError atajo para un único problema sobre un campo.
func NewValidationError(field, problem string) *ValidationError {
	return &ValidationError{Field: field, Problems: []string{problem}}
}

func (e *ValidationError) Error() string {
	msg := strings.Join(e.Problems, "; ")
	switch {
	case e.Row > 0 && e.Field != "":
		return fmt.Sprintf("fila %d, %s: %s", e.Row, e.Field, msg)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, msg)
	case msg == "":
		return ErrValidation.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InvalidTransitionError la operación no es legal desde el estado actual.
type InvalidTransitionError struct {
	UnitID     string
	TransferID string
	From       string
	Op         string
}

func (e *InvalidTransitionError) Error() string {
	if e.TransferID != "" {
		return fmt.Sprintf("traslado %s en estado %s no admite %s", e.TransferID, e.From, e.Op)
	}
	return fmt.Sprintf("unidad %s en estado %s no admite %s", e.UnitID, e.From, e.Op)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// ConflictError violación de unicidad o mutación concurrente.
type ConflictError struct {
	Field         string
	Value         string
	ConflictingID string
	Row           int
	Msg           string
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	if e.Row > 0 {
		fmt.Fprintf(&b, "fila %d: ", e.Row)
	}
	switch {
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Field != "" && e.ConflictingID != "":
		fmt.Fprintf(&b, "%s %q ya pertenece a la unidad %s", e.Field, e.Value, e.ConflictingID)
	case e.Field != "":
		fmt.Fprintf(&b, "%s %q ya existe", e.Field, e.Value)
	default:
		b.WriteString(ErrConflict.Error())
	}
	return b.String()
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError id desconocido.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
