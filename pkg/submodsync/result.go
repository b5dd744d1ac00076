package submodsync

import (
	"github.com/warptools/fwsetup/fsapi"
)

// Outcome classifies how a run ended.
type Outcome int

const (
	// OutcomeOk means every stage and every submodule succeeded.
	OutcomeOk Outcome = iota
	// OutcomeFatal means a run-wide stage failed and the run stopped there.
	OutcomeFatal
	// OutcomePartial means the run completed but at least one submodule failed.
	OutcomePartial
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOk:
		return "ok"
	case OutcomeFatal:
		return "fatal"
	case OutcomePartial:
		return "partial"
	default:
		return "unknown"
	}
}

// Status is what happened to a single submodule.
type Status string

const (
	StatusFetched Status = "fetched"
	// StatusSkipped marks a submodule left alone because it has local changes.
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// SubmoduleResult records the handling of one submodule.
type SubmoduleResult struct {
	Path   string
	Status Status
	// Err is set when Status is StatusFailed.
	Err error
}

// Result is the outcome of Synchronize.
type Result struct {
	Outcome Outcome
	// Reason is the error that stopped a fatal run.
	Reason error
	// Submodules holds one entry per submodule processed, in processing order.
	// It is empty if the run stopped before the per-submodule stage.
	Submodules []SubmoduleResult
}

// Code returns the integer result code: 0 on success and -1 otherwise.
func (r Result) Code() int {
	if r.Outcome == OutcomeOk {
		return 0
	}
	return -1
}

// Failures returns the submodules that failed, in processing order.
func (r Result) Failures() []SubmoduleResult {
	var failed []SubmoduleResult
	for _, s := range r.Submodules {
		if s.Status == StatusFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// Err returns nil for a successful run and an error describing the failure otherwise.
//
// Errors:
//
//   - fwsetup-error-setup-failed -- when the outcome is fatal or partial
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomeOk:
		return nil
	case OutcomeFatal:
		return fsapi.ErrorSetupFailed(r.Outcome.String(), 0, r.Reason)
	default:
		return fsapi.ErrorSetupFailed(r.Outcome.String(), len(r.Failures()), nil)
	}
}

// SubmoduleRecords converts the per-submodule results to their API form.
func (r Result) SubmoduleRecords() []fsapi.SubmoduleRecord {
	records := make([]fsapi.SubmoduleRecord, 0, len(r.Submodules))
	for _, s := range r.Submodules {
		rec := fsapi.SubmoduleRecord{Path: s.Path, Status: string(s.Status)}
		if s.Err != nil {
			reason := s.Err.Error()
			rec.Reason = &reason
		}
		records = append(records, rec)
	}
	return records
}
