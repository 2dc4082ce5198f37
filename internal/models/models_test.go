package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in       string
		expected CatalogKind
		wantErr  bool
	}{
		{"task", KindTask, false},
		{"Tasks", KindTask, false},
		{"bounty", KindBounty, false},
		{"bounties", KindBounty, false},
		{" users ", KindUser, false},
		{"chores", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			kind, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestTransactionRecord_Row(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 18, 4, 9, 0, time.UTC)
	rec := NewTransactionRecord(ts, "Nathan", "Snacks", decimal.NewFromInt(-10), "movie night"+NotesSuffix)

	assert.Equal(t, []string{"05/03/2024 18:04:09", "Nathan", "Snacks", "-10", "movie night - Added by Bot"}, rec.Row())

	back, err := rec.Time(time.UTC)
	require.NoError(t, err)
	assert.True(t, ts.Equal(back))
}

func TestParseTransactionRow(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		rec, err := ParseTransactionRow([]string{"05/03/2024 18:04:09", "Nathan", "Dishes", "$7.00", " - Added by Bot"})
		require.NoError(t, err)
		assert.Equal(t, "Nathan", rec.Actor)
		assert.Equal(t, "Dishes", rec.Label)
		assert.True(t, decimal.NewFromInt(7).Equal(rec.Amount))
		assert.Equal(t, " - Added by Bot", rec.Notes)
	})

	t.Run("notes column missing", func(t *testing.T) {
		rec, err := ParseTransactionRow([]string{"05/03/2024 18:04:09", "Nathan", "Dishes", "3"})
		require.NoError(t, err)
		assert.Empty(t, rec.Notes)
	})

	t.Run("header row", func(t *testing.T) {
		_, err := ParseTransactionRow([]string{"Date", "Name", "Reason", "Amount", "Notes"})
		assert.Error(t, err)
	})

	t.Run("short row", func(t *testing.T) {
		_, err := ParseTransactionRow([]string{"05/03/2024 18:04:09", "Nathan"})
		assert.Error(t, err)
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		wantErr  bool
	}{
		{"42", "42", false},
		{"-10", "-10", false},
		{"$4.20", "4.2", false},
		{"($3.00)", "-3", false},
		{"1,250.50", "1250.5", false},
		{"", "", true},
		{"Blank", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.String())
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "7", FormatAmount(decimal.NewFromInt(7)))
	assert.Equal(t, "-10", FormatAmount(decimal.NewFromInt(-10)))
	assert.Equal(t, "4.20", FormatAmount(decimal.RequireFromString("4.2")))
}

func TestDefaultTables(t *testing.T) {
	tables := DefaultTables()
	assert.Equal(t, "Transactions", tables.Transactions)
	assert.Equal(t, "Task List", tables.Tasks)
	assert.Equal(t, "Totals", tables.Totals)
	assert.Equal(t, "Bounty Board", tables.Bounties)
}
