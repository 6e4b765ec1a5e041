package logging

// Standardized field names for structured logging.
const (
	FieldFile       = "file_path"
	FieldParser     = "parser"
	FieldRow        = "row"
	FieldPage       = "page"
	FieldAccount    = "account"
	FieldPattern    = "pattern"
	FieldTool       = "tool"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldSkipped    = "skipped"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
)
