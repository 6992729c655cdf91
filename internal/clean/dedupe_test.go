package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sheetsync/internal/model"
)

func TestNormalizeContactKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"9876543210", "9876543210"},
		{"+91 98765 43210", "919876543210"},
		{"(987) 654-3210", "9876543210"},
		{"phone: 123", "123"},
		{"no digits here", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeContactKey(tc.in), "input %q", tc.in)
	}
}

func TestDedupeByContact_FirstSurvives(t *testing.T) {
	rows := []model.RowRecord{
		{"Phone": "98765 43210", "n": "1"},
		{"Phone": "9876543210", "n": "2"},
		{"Phone": "+91-98765-43210", "n": "3"}, // different digits, kept
	}

	kept, removed := DedupeByContact(rows, "Phone")
	assert.Equal(t, 1, removed)
	require.Len(t, kept, 2)
	assert.Equal(t, "1", kept[0]["n"])
	assert.Equal(t, "3", kept[1]["n"])
}

func TestDedupeByContact_EmptyKeysAllSurvive(t *testing.T) {
	rows := []model.RowRecord{
		{"Phone": "", "n": "1"},
		{"Phone": "n/a", "n": "2"},
		{"n": "3"},
	}

	kept, removed := DedupeByContact(rows, "Phone")
	assert.Zero(t, removed)
	assert.Len(t, kept, 3)
}
