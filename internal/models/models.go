// Package models provides the data structures shared by the catalog, the ledger
// recorder, the row-store backends and the chat bot.
package models

import (
	"fmt"
	"strings"
)

// CatalogKind names one of the cached tables.
type CatalogKind string

const (
	KindTask   CatalogKind = "task"
	KindBounty CatalogKind = "bounty"
	KindUser   CatalogKind = "user"
)

// Kinds lists every catalog kind in refresh order.
var Kinds = []CatalogKind{KindTask, KindUser, KindBounty}

// ParseKind accepts singular or plural kind names ("tasks", "Bounty", ...).
func ParseKind(s string) (CatalogKind, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "task":
		return KindTask, nil
	case "bounty", "bountie":
		return KindBounty, nil
	case "user":
		return KindUser, nil
	}
	return "", fmt.Errorf("unknown catalog kind: %s", s)
}

// CatalogEntry is one task or bounty row.
type CatalogEntry struct {
	Name             string `yaml:"name"`
	RewardExpression string `yaml:"reward"`
	AverageHint      string `yaml:"average,omitempty"`
	Notes            string `yaml:"notes,omitempty"`
	// Cell is the name as the sheet holds it, before trimming.
	Cell string `yaml:"-"`
}

// Tables holds the names of the four sheets the ledger works with.
type Tables struct {
	Transactions string `mapstructure:"transactions" yaml:"transactions"`
	Tasks        string `mapstructure:"tasks" yaml:"tasks"`
	Totals       string `mapstructure:"totals" yaml:"totals"`
	Bounties     string `mapstructure:"bounties" yaml:"bounties"`
}

// DefaultTables returns the sheet names used by the household spreadsheet.
func DefaultTables() Tables {
	return Tables{
		Transactions: DefaultTransactionsTable,
		Tasks:        DefaultTasksTable,
		Totals:       DefaultTotalsTable,
		Bounties:     DefaultBountiesTable,
	}
}

// Balance is a running total read from the totals sheet. Value is kept exactly as
// the sheet renders it ("42", "$42.00", ...).
type Balance struct {
	User  string
	Value string
}

func (b Balance) String() string {
	return b.Value
}
