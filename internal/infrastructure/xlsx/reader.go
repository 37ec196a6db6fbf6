// Package xlsx lee hojas de embarque de proveedores (.xlsx) y las convierte en filas de importación.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Custodia-api/internal/application/importer"
	"github.com/jhoicas/Custodia-api/pkg/textnorm"
)

const (
	colBrand   = "brand"
	colModel   = "model"
	colColor   = "color"
	colEngine  = "engine_number"
	colChassis = "chassis_number"
	colNotes   = "notes"
)

// headerAliases encabezados aceptados (ya normalizados con headerKey).
var headerAliases = map[string]string{
	"marca":             colBrand,
	"brand":             colBrand,
	"modelo":            colModel,
	"model":             colModel,
	"color":             colColor,
	"colour":            colColor,
	"motor":             colEngine,
	"numero de motor":   colEngine,
	"no motor":          colEngine,
	"motor number":      colEngine,
	"engine number":     colEngine,
	"chasis":            colChassis,
	"numero de chasis":  colChassis,
	"no chasis":         colChassis,
	"frame number":      colChassis,
	"chassis number":    colChassis,
	"vin":               colChassis,
	"notas":             colNotes,
	"notes":             colNotes,
	"observaciones":     colNotes,
}

var requiredColumns = []string{colChassis, colEngine, colColor}

// headerKey "No. Chasis" -> "no chasis", "engine_number" -> "engine number".
func headerKey(h string) string {
	h = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-':
			return ' '
		case '#', '.', ':':
			return -1
		}
		return r
	}, h)
	return textnorm.Fold(h)
}

// Read recorre la hoja en streaming. sheet vacío usa la primera hoja.
// La primera fila no vacía es el encabezado; RowNumber es el número de fila en la hoja.
func Read(r io.Reader, sheet string) ([]importer.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("abrir archivo excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("el archivo no tiene hojas")
		}
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("la hoja %q no existe", sheet)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("leer hoja %s: %w", sheet, err)
	}
	defer func() { _ = rows.Close() }()

	var (
		out     []importer.Row
		columns map[string]int
		line    int
	)
	for rows.Next() {
		line++
		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("leer fila %d: %w", line, err)
		}
		if blank(cells) {
			continue
		}
		if columns == nil {
			if columns, err = mapHeader(cells); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, importer.Row{
			RowNumber:     line,
			Brand:         cell(cells, columns, colBrand),
			Model:         cell(cells, columns, colModel),
			Color:         cell(cells, columns, colColor),
			EngineNumber:  numeric(cell(cells, columns, colEngine)),
			ChassisNumber: cell(cells, columns, colChassis),
			Notes:         cell(cells, columns, colNotes),
		})
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("leer hoja %s: %w", sheet, err)
	}
	if columns == nil {
		return nil, fmt.Errorf("la hoja %s está vacía", sheet)
	}
	return out, nil
}

func mapHeader(cells []string) (map[string]int, error) {
	columns := map[string]int{}
	for i, h := range cells {
		if name, ok := headerAliases[headerKey(h)]; ok {
			if _, dup := columns[name]; !dup {
				columns[name] = i
			}
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("faltan columnas requeridas: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func cell(cells []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

// numeric quita el ".0" que dejan las celdas numéricas guardadas como decimal.
func numeric(v string) string {
	return strings.TrimSuffix(v, ".0")
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
