package location_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/internal/domain/location"
)

func TestDefault_CatalogoBase(t *testing.T) {
	r := location.Default()

	assert.Equal(t, "BODEGA", r.Warehouse().Code)
	assert.Equal(t, "TALLER", r.Workshop().Code)
	require.Len(t, r.Branches(), 3)
	assert.Len(t, r.List(), 5)

	l, ok := r.Lookup("SUCURSAL:Centro")
	require.True(t, ok, "SUCURSAL:Centro debe existir")
	assert.Equal(t, entity.LocationBranch, l.Kind)
	assert.Equal(t, "Centro", l.Name)

	_, ok = r.Lookup("SUCURSAL:Oeste")
	assert.False(t, ok)
	assert.Equal(t, "", r.KindOf("nada"))
}

func TestNew_SucursalesConfiguradas(t *testing.T) {
	r, err := location.New(location.Config{Branches: []string{" Medellín ", "", "Cali"}})
	require.NoError(t, err)

	codes := []string{}
	for _, b := range r.Branches() {
		codes = append(codes, b.Code)
	}
	assert.Equal(t, []string{"SUCURSAL:Medellín", "SUCURSAL:Cali"}, codes)
}

func TestNew_CodigoRepetido(t *testing.T) {
	_, err := location.New(location.Config{Warehouse: "X", Workshop: "X"})
	assert.Error(t, err)
}

func TestArrivalStatus_TablaPorTipo(t *testing.T) {
	cases := map[string]string{
		entity.LocationWarehouse: entity.UnitStatusEnBodega,
		entity.LocationWorkshop:  entity.UnitStatusEnTaller,
		entity.LocationBranch:    entity.UnitStatusDisponible,
	}
	for kind, want := range cases {
		got, ok := location.ArrivalStatus(kind)
		require.True(t, ok, kind)
		assert.Equal(t, want, got, kind)
	}
	_, ok := location.ArrivalStatus("OTRO")
	assert.False(t, ok)
}
