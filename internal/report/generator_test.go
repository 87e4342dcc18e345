package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/models"
)

func transactions() []*models.Transaction {
	mk := func(date, desc, product, amount string) *models.Transaction {
		return &models.Transaction{
			StartedDate: date,
			Description: desc,
			Product:     product,
			Currency:    "EUR",
			Amount:      decimal.RequireFromString(amount),
		}
	}
	return []*models.Transaction{
		mk("2024-02-03 10:00:00", "A", "Current", "-10"),
		mk("2024-01-05 10:00:00", "B", "Current", "5"),
		mk("2024-01-09 10:00:00", "A", "Savings", "-20"),
		mk("2024-02-11 10:00:00", "B", "Savings", "15"),
	}
}

func TestParseDimension(t *testing.T) {
	tests := map[string]Dimension{
		"merchant":   ByMerchant,
		"merchants":  ByMerchant,
		"Categories": ByCategory,
		" month ":    ByMonth,
		"currency":   ByCurrency,
	}
	for in, want := range tests {
		got, err := ParseDimension(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDimension("weekday")
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	t.Run("merchants by signed total", func(t *testing.T) {
		s := Build(transactions(), ByMerchant, false, false)
		require.Len(t, s.Buckets, 2)
		assert.Equal(t, "B", s.Buckets[0].Name)
		assert.Equal(t, "A", s.Buckets[1].Name)
		assert.Nil(t, s.Buckets[0].Members)
		assert.Equal(t, 4, s.Stats.Count)
		assert.Equal(t, "-10", s.Stats.TotalAmount.String())
	})

	t.Run("merchants by absolute total", func(t *testing.T) {
		s := Build(transactions(), ByMerchant, true, true)
		assert.Equal(t, "A", s.Buckets[0].Name)
		assert.Equal(t, "30", s.Buckets[0].TotalAbsoluteAmount.String())
		assert.Len(t, s.Buckets[0].Members, 2)
	})

	t.Run("months are chronological", func(t *testing.T) {
		s := Build(transactions(), ByMonth, false, false)
		require.Len(t, s.Buckets, 2)
		assert.Equal(t, "2024-01", s.Buckets[0].Name)
		assert.Equal(t, "2024-02", s.Buckets[1].Name)
	})

	t.Run("categories use the product column", func(t *testing.T) {
		s := Build(transactions(), ByCategory, false, false)
		names := []string{s.Buckets[0].Name, s.Buckets[1].Name}
		assert.ElementsMatch(t, []string{"Current", "Savings"}, names)
	})

	t.Run("empty input", func(t *testing.T) {
		s := Build(nil, ByMerchant, false, false)
		assert.Empty(t, s.Buckets)
		assert.True(t, s.Stats.AverageAmount.IsZero())
	})
}

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator(logging.NewMockLogger())
	s := Build(transactions(), ByMerchant, false, false)

	t.Run("json", func(t *testing.T) {
		out, err := g.Generate(s, "json")
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(out, &decoded))
		assert.Equal(t, "merchant", decoded["by"])
		buckets := decoded["buckets"].([]any)
		assert.Equal(t, "B", buckets[0].(map[string]any)["name"])
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := g.Generate(s, "yaml")
		require.NoError(t, err)
		var decoded struct {
			By      string `yaml:"by"`
			Buckets []struct {
				Name        string `yaml:"name"`
				TotalAmount string `yaml:"total_amount"`
			} `yaml:"buckets"`
		}
		require.NoError(t, yaml.Unmarshal(out, &decoded))
		assert.Equal(t, "merchant", decoded.By)
		require.Len(t, decoded.Buckets, 2)
		assert.Equal(t, "-30", decoded.Buckets[1].TotalAmount)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := g.Generate(s, "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported report format")
	})
}

func TestGenerator_WriteTable(t *testing.T) {
	g := NewGenerator(nil)
	s := Build(transactions(), ByMerchant, false, false)

	var plain bytes.Buffer
	require.NoError(t, g.WriteTable(&plain, s, false))
	lines := strings.Split(strings.TrimRight(plain.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "MERCHANT"))
	assert.True(t, strings.HasPrefix(lines[1], "B "))
	assert.Contains(t, lines[2], "-30")
	assert.True(t, strings.HasPrefix(lines[3], "TOTAL"))
	assert.NotContains(t, plain.String(), "\x1b[")

	var colored bytes.Buffer
	require.NoError(t, g.WriteTable(&colored, s, true))
	assert.Contains(t, colored.String(), "\x1b[31m")
	assert.Contains(t, colored.String(), "\x1b[32m")
}

func TestGenerator_WriteTableByCurrency(t *testing.T) {
	g := NewGenerator(nil)
	s := Build(transactions(), ByCurrency, false, false)

	var out bytes.Buffer
	require.NoError(t, g.WriteTable(&out, s, false))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "EUR "))
	assert.Contains(t, lines[1], "€-10.00")
	assert.Contains(t, lines[1], "€-2.50")
	assert.NotContains(t, lines[2], "€")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
