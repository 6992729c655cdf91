package clean

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sheetsync/internal/model"
)

func TestMapColumns_Aliases(t *testing.T) {
	cases := []struct {
		name    string
		columns []string
		date    string
		phone   string
		product string
	}{
		{
			name:    "exact headers",
			columns: []string{"Date", "Phone Number", "Product Name"},
			date:    "Date", phone: "Phone Number", product: "Product Name",
		},
		{
			name:    "loose export headers",
			columns: []string{"Order Date", "Customer Mobile", "Item Description"},
			date:    "Order Date", phone: "Customer Mobile", product: "Item Description",
		},
		{
			name:    "snake case",
			columns: []string{"created_at", "whatsapp_number", "sku"},
			date:    "created_at", phone: "whatsapp_number", product: "sku",
		},
		{
			name:    "spacing and case noise",
			columns: []string{"MESSAGE DATE", "Contact  No", "PRODUCT"},
			date:    "MESSAGE DATE", phone: "Contact  No", product: "PRODUCT",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := MapColumns(model.FileRows{Name: "f.csv", Columns: tc.columns})
			require.NoError(t, err)
			assert.Equal(t, tc.date, m.Date)
			assert.Equal(t, tc.phone, m.Phone)
			assert.Equal(t, tc.product, m.Product)
		})
	}
}

func TestMapColumns_FirstMatchWins(t *testing.T) {
	m, err := MapColumns(model.FileRows{Name: "f.csv", Columns: []string{"Timestamp", "Order Date", "Phone", "Product"}})
	require.NoError(t, err)
	assert.Equal(t, "Timestamp", m.Date)
}

func TestMapColumns_MissingNamed(t *testing.T) {
	_, err := MapColumns(model.FileRows{Name: "bare.csv", Columns: []string{"Status", "Notes"}})

	var missing *model.MissingRequiredColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{model.ColumnDate, model.ColumnPhone, model.ColumnProduct}, missing.Missing)
	assert.Contains(t, missing.Error(), "bare.csv")
}

func TestFindStatusColumn(t *testing.T) {
	col, ok := FindStatusColumn([]string{"Date", "Phone", "Template Name", "Item"})
	require.True(t, ok)
	assert.Equal(t, "Template Name", col)

	col, ok = FindStatusColumn([]string{"Date", "Phone", "Item", "campaign_name", "Extra"})
	require.True(t, ok)
	assert.Equal(t, "campaign_name", col)

	// Fallback to the 4th column when nothing matches by name.
	col, ok = FindStatusColumn([]string{"a", "b", "c", "d"})
	require.True(t, ok)
	assert.Equal(t, "d", col)

	_, ok = FindStatusColumn([]string{"a", "b", "c"})
	assert.False(t, ok)
}
