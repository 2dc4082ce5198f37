package models

// Sheet names
const (
	DefaultTransactionsTable = "Transactions"
	DefaultTasksTable        = "Task List"
	DefaultTotalsTable       = "Totals"
	DefaultBountiesTable     = "Bounty Board"
)

// Header literals of the catalog sheets. The first row of each sheet carries these
// names in its first column and is dropped by key on refresh.
const (
	TaskHeader   = "Task"
	BountyHeader = "Bounty"
)

// Ledger conventions
const (
	BroadcastName       = "Everyone"
	NotesSuffix         = " - Added by Bot"
	TimestampLayout     = "02/01/2006 15:04:05"
	ErrorSentinel       = "ERROR"
	MissingReward       = "Blank"
	DefaultBountyReward = "2d8"
	BalanceUnavailable  = "N/A"
	TotalsColumn        = "Total"
)

// File permissions
const (
	PermissionFile      = 0600
	PermissionDirectory = 0750
)
