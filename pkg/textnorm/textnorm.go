// Package textnorm normaliza texto libre capturado por operadores o proveniente de hojas de proveedores.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold quita tildes, pasa a minúsculas (case folding Unicode) y colapsa espacios.
// "  Número de MOTOR " -> "numero de motor".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(out)), " ")
}

// Clean normaliza a NFC y colapsa espacios sin alterar mayúsculas ni tildes.
func Clean(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Identifier limpia un número de motor o chasis: sin espacios y en mayúsculas.
func Identifier(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, norm.NFKC.String(s))
	return strings.ToUpper(s)
}
