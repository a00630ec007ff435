package orders

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// ReportItem is one line-item on a report, decorated with its catalog
// name and the resolved reference range.
type ReportItem struct {
	*TestRequestItem
	TestName string    `json:"test_name"`
	Range    RangeInfo `json:"range"`
}

// Report is the read-only report view of a request.
type Report struct {
	Request *TestRequest  `json:"request"`
	Patient *Subject      `json:"patient"`
	Items   []*ReportItem `json:"items"`
}

// GetReport assembles the report for a request. Ranges are resolved per
// item at read time; item lookups carry no ordering requirement among
// themselves, so they run concurrently.
func (s *Service) GetReport(ctx context.Context, requestID uuid.UUID) (*Report, error) {
	tr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	subject, err := s.patients.Subject(ctx, tr.PatientID)
	if err != nil {
		return nil, &NotFoundError{Resource: "patient", ID: tr.PatientID.String()}
	}
	items, err := s.items.GetByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entriesForItems(ctx, items)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Request: tr,
		Patient: subject,
		Items:   make([]*ReportItem, len(items)),
	}
	var (
		wg   sync.WaitGroup
		errs = make([]error, len(items))
	)
	for i, it := range items {
		wg.Add(1)
		go func(i int, it *TestRequestItem) {
			defer wg.Done()
			value := ""
			if it.ResultValue != nil {
				value = *it.ResultValue
			}
			rng, err := s.resolver.ResolveFor(ctx, it.TestCatalogID, subject.Gender, subject.AgeYears, value)
			if err != nil {
				errs[i] = err
				return
			}
			ri := &ReportItem{TestRequestItem: it, Range: rng}
			if entry, ok := entries[it.TestCatalogID]; ok {
				ri.TestName = entry.Name
			}
			report.Items[i] = ri
		}(i, it)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return report, nil
}
