package entity

import "reflect"

// Snapshot fotografía parcial de campos de una unidad (antes/después de un evento).
type Snapshot map[string]any

// Diff devuelve solo las llaves cuyo valor cambió entre before y after.
// Las llaves listadas en always se incluyen aunque no hayan cambiado.
func Diff(before, after Snapshot, always ...string) (Snapshot, Snapshot) {
	b, a := Snapshot{}, Snapshot{}
	for k, av := range after {
		bv := before[k]
		if !reflect.DeepEqual(av, bv) {
			b[k], a[k] = bv, av
		}
	}
	for _, k := range always {
		b[k], a[k] = before[k], after[k]
	}
	return b, a
}
