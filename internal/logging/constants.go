package logging

// Standardized field names for structured logging.
const (
	FieldActor      = "actor"
	FieldTask       = "task"
	FieldBounty     = "bounty"
	FieldReason     = "reason"
	FieldAmount     = "amount"
	FieldExpression = "expression"
	FieldKind       = "kind"
	FieldTable      = "table"
	FieldRow        = "row"
	FieldCount      = "count"
	FieldOperation  = "operation"
	FieldCommand    = "command"
	FieldRequestID  = "request_id"
	FieldBackend    = "backend"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldOutputFile = "output_file"
)
