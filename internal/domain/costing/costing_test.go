package costing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/inventory-ledger/internal/domain"
	"github.com/invorya/inventory-ledger/internal/domain/costing"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// Promedio ponderado básico: 10 @ 5.0000 + 10 @ 7.0000 → 6.0000.
func TestMovingAverage_PromedioPonderado(t *testing.T) {
	avg, err := costing.MovingAverage(dec("10"), dec("5.0000"), dec("10"), dec("7.0000"))
	require.NoError(t, err)
	assert.True(t, dec("6.0000").Equal(avg), "promedio esperado 6.0000, obtenido %s", avg)
}

// Primer ingreso sobre stock en cero adopta el costo de entrada.
func TestMovingAverage_StockInicialCero(t *testing.T) {
	avg, err := costing.MovingAverage(decimal.Zero, decimal.Zero, dec("5"), dec("2.5000"))
	require.NoError(t, err)
	assert.True(t, dec("2.5000").Equal(avg))
}

// El resultado se cuantiza a 4 decimales con half-up.
func TestMovingAverage_RedondeoCuatroDecimales(t *testing.T) {
	// (6*2 + 5*5) / 11 = 37/11 = 3.363636... → 3.3636
	avg, err := costing.MovingAverage(dec("6"), dec("2.0000"), dec("5"), dec("5.0000"))
	require.NoError(t, err)
	assert.True(t, dec("3.3636").Equal(avg), "obtenido %s", avg)
}

// Cantidad resultante ≤ 0 es inválida para una pata de ingreso.
func TestMovingAverage_CantidadResultanteInvalida(t *testing.T) {
	_, err := costing.MovingAverage(dec("-5"), dec("1.0000"), dec("5"), dec("1.0000"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// El costo de egreso se congela al promedio vigente, cuantizado.
func TestFreezeIssueCost_CongelaPromedioVigente(t *testing.T) {
	frozen := costing.FreezeIssueCost(dec("6.00001"))
	assert.True(t, dec("6.0000").Equal(frozen))

	frozen = costing.FreezeIssueCost(dec("3.18185"))
	assert.True(t, dec("3.1819").Equal(frozen), "half-up en el quinto decimal, obtenido %s", frozen)
}

func TestQuantize_HalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.00005", "1.0001"},
		{"1.00004", "1.0000"},
		{"0.12345", "0.1235"},
		{"2", "2"},
	}
	for _, c := range cases {
		got := costing.Quantize(dec(c.in))
		assert.True(t, dec(c.want).Equal(got), "Quantize(%s) = %s, esperado %s", c.in, got, c.want)
	}
}
