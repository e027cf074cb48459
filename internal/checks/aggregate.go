package checks

import (
	"sort"

	"github.com/atelierhq/veneer/internal/registry"
	"github.com/atelierhq/veneer/pkg/models"
)

// Aggregate merges the per-file diagnostics of both check passes into one
// failure record per artifact. Diagnostics are attributed via the registry's
// path table; diagnostics for untracked files are dropped. Within a record,
// type issues precede lint issues (check-pass order, not severity order).
// Artifacts with no error-severity diagnostic are absent from the result:
// absence means "no known issues", not "unchecked".
func Aggregate(report *Report, reg *registry.Registry) map[string]*models.FailureRecord {
	records := make(map[string]*models.FailureRecord)

	appendPass := func(byFile map[string][]models.IssueRecord) {
		for _, file := range sortedKeys(byFile) {
			owner, ok := reg.ResolveOwner(file)
			if !ok {
				// Untracked file (scaffolding, configs): drop.
				continue
			}
			rec := records[owner.Name]
			if rec == nil {
				rec = &models.FailureRecord{
					ArtifactName: owner.Name,
					ArtifactPath: owner.StoragePath,
					ArtifactKind: owner.Kind,
				}
				records[owner.Name] = rec
			}
			rec.Issues = append(rec.Issues, byFile[file]...)
		}
	}

	appendPass(report.TypeIssues)
	appendPass(report.LintIssues)

	// Warnings alone do not constitute a failure.
	for name, rec := range records {
		if rec.ErrorCount() == 0 {
			delete(records, name)
		}
	}
	return records
}

// sortedKeys returns the map's keys in lexical order so aggregation is
// deterministic given fixed diagnostics.
func sortedKeys(m map[string][]models.IssueRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
