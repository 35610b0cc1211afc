package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Equal(t, 4, c.Len())

	ids := []string{}
	for _, p := range c.All() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"mes", "quincena", "semana", "clase"}, ids)

	featured := c.Featured()
	assert.Equal(t, "mes", featured.ID)
	assert.Equal(t, "Plan Mensual", featured.Name)
	assert.Equal(t, "El más popular", featured.Badge)

	semana, err := c.Find("semana")
	require.NoError(t, err)
	assert.Equal(t, 25000, semana.Price)
	assert.Equal(t, "/semana", semana.Period)
	assert.Len(t, semana.Features, 3)
}

func TestFindUnknownPlan(t *testing.T) {
	_, err := Default().Find("anual")
	assert.True(t, errors.Is(err, ErrPlanNotFound))
}

func TestCatalogIsReadOnly(t *testing.T) {
	c := Default()

	plans := c.All()
	plans[0].Name = "Hacked"
	plans[0].Features[0] = "nothing"

	p, err := c.Find("mes")
	require.NoError(t, err)
	p.Features[1] = "also nothing"

	again, err := c.Find("mes")
	require.NoError(t, err)
	assert.Equal(t, "Plan Mensual", again.Name)
	assert.Equal(t, "Acceso ilimitado al gimnasio", again.Features[0])
	assert.Equal(t, "Todas las clases grupales", again.Features[1])
}

func TestFeaturedFallsBackToFirst(t *testing.T) {
	c, err := New([]Plan{
		{ID: "a", Name: "A", Price: 1},
		{ID: "b", Name: "B", Price: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "a", c.Featured().ID)
}

func TestNewRejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name  string
		plans []Plan
	}{
		{"empty", nil},
		{"missing id", []Plan{{Name: "A", Price: 1}}},
		{"duplicate id", []Plan{{ID: "a", Name: "A", Price: 1}, {ID: "a", Name: "B", Price: 2}}},
		{"missing name", []Plan{{ID: "a", Price: 1}}},
		{"zero price", []Plan{{ID: "a", Name: "A"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.plans)
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	doc := []byte("plans:\n  - id: dia\n    name: Pase Diario\n    price: 8000\n    period: /día\n")
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "$\u00a08.000/día", c.Featured().PriceLabel())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	embedded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, embedded.Len())
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		amount int
		want   string
	}{
		{0, "$\u00a00"},
		{999, "$\u00a0999"},
		{10000, "$\u00a010.000"},
		{25000, "$\u00a025.000"},
		{82000, "$\u00a082.000"},
		{1250000, "$\u00a01.250.000"},
		{-48000, "-$\u00a048.000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.amount))
	}
}
