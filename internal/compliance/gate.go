package compliance

import "github.com/hpungsan/slate/internal/errors"

// GateExport returns an EXPORT_BLOCKED error listing one fix per blocking
// issue, or nil when the result is compliant.
func GateExport(res Result) error {
	if res.Compliant {
		return nil
	}
	var fixes []string
	for _, is := range res.Issues {
		if is.Type != SeverityError {
			continue
		}
		if is.Fix != "" {
			fixes = append(fixes, is.Fix)
		} else {
			fixes = append(fixes, is.Message)
		}
	}
	return errors.NewExportBlocked(res.Summary.Errors, fixes)
}
