package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Custodia-api/pkg/textnorm"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "numero de motor", textnorm.Fold("  Número de   MOTOR "))
	assert.Equal(t, "red", textnorm.Fold("RED"))
	assert.Equal(t, "cano", textnorm.Fold("Caño"))
	assert.Equal(t, "", textnorm.Fold("   "))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Honda CB 190R", textnorm.Clean(" Honda  CB 190R\t"))
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "HXY202507501", textnorm.Identifier(" hxy 2025 07501 "))
	assert.Equal(t, "20250823035825", textnorm.Identifier("20250823035825\n"))
}
