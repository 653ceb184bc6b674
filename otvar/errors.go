package otvar

import "fmt"

// Error taxonomy for variation handling. Low-level decode problems inside the
// packed-delta parser never surface as errors (they degrade to zero deltas,
// see packed.go); the types below cover structural problems a caller can act
// upon.

// InvalidVariationDataError reports a structural mismatch in variation data,
// such as an operand/delta count mismatch or malformed control bytes.
type InvalidVariationDataError struct {
	Table   Tag    // the table where the mismatch was found
	Section string // specific structure within the table (e.g., "TupleVariationHeader")
	Issue   string // human-readable description
}

func (e InvalidVariationDataError) Error() string {
	return fmt.Sprintf("invalid variation data in %s/%s: %s", e.Table, e.Section, e.Issue)
}

// MissingVariationTableError reports the absence of a table which the
// requested operation needs.
type MissingVariationTableError struct {
	Table Tag
}

func (e MissingVariationTableError) Error() string {
	return fmt.Sprintf("variation table %s not present in font", e.Table)
}

// InvalidCoordinatesError reports a coordinate set that cannot be used for the
// requested operation, e.g. an unknown axis tag. Normalization itself never
// produces this error: out-of-range values clamp.
type InvalidCoordinatesError struct {
	Axis  Tag
	Issue string
}

func (e InvalidCoordinatesError) Error() string {
	return fmt.Sprintf("invalid coordinates for axis %s: %s", e.Axis, e.Issue)
}

// InvalidInstanceIndexError reports a named-instance index outside the range
// declared by fvar.
type InvalidInstanceIndexError struct {
	Index int
	Count int
}

func (e InvalidInstanceIndexError) Error() string {
	return fmt.Sprintf("named instance index %d out of range (font has %d instances)", e.Index, e.Count)
}

// --- Validation issue reporting --------------------------------------------

// IssueSeverity represents the severity level of a validation finding.
type IssueSeverity int

const (
	// SeverityError indicates structurally invalid variation data.
	SeverityError IssueSeverity = iota
	// SeverityWarning indicates suspicious but usable variation data.
	SeverityWarning
)

// String returns a human-readable representation of the severity.
func (s IssueSeverity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	default:
		return "UNKNOWN"
	}
}

// ValidationIssue is one finding of the Validator.
type ValidationIssue struct {
	Table    Tag           // the table where the issue was found
	Section  string        // specific structure within the table
	Issue    string        // human-readable description
	Severity IssueSeverity // error or warning
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("[%s] %s/%s: %s", i.Severity, i.Table, i.Section, i.Issue)
}

// issueCollector accumulates findings during validation.
type issueCollector struct {
	errors   []ValidationIssue
	warnings []ValidationIssue
}

func (ic *issueCollector) addError(table Tag, section string, issue string) {
	ic.errors = append(ic.errors, ValidationIssue{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: SeverityError,
	})
}

func (ic *issueCollector) addWarning(table Tag, section string, issue string) {
	ic.warnings = append(ic.warnings, ValidationIssue{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: SeverityWarning,
	})
}
