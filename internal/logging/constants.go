package logging

// Field names shared by the importer, the store and the HTTP layer.
const (
	FieldComponent   = "component"
	FieldFile        = "file_name"
	FieldLine        = "line"
	FieldOperation   = "operation"
	FieldState       = "state"
	FieldOutcome     = "outcome"
	FieldError       = "error"
	FieldCount       = "count"
	FieldNewCount    = "new_count"
	FieldDuplicates  = "duplicate_count"
	FieldSkipped     = "skipped_rows"
	FieldExpected    = "expected_fields"
	FieldActual      = "actual_fields"
	FieldCategoryID  = "category_id"
	FieldTransaction = "transaction_id"
	FieldDriver      = "driver"
	FieldPage        = "page"
	FieldDuration    = "duration_ms"
)
