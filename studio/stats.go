package studio

import (
	"context"
	"sort"
)

// PopularClassLimit is how many classes Stats ranks.
const PopularClassLimit = 5

// StatsQuery bounds the report to an inclusive YYYY-MM-DD range. The range
// applies only when both bounds are set; otherwise every record counts.
type StatsQuery struct {
	StartDate string
	EndDate   string
}

// PopularClass is a class ranked by checked-in count.
type PopularClass struct {
	ClassID         string
	ClassName       string
	AttendanceCount int
}

// Stats summarises the ledger within a date range.
type Stats struct {
	TotalCheckins      int
	TotalCancellations int
	TotalNoShows       int
	PopularClasses     []PopularClass
}

// Stats counts records per status and ranks the top classes by checked-in
// records. Ties rank by ascending classId.
func (s *Service) Stats(ctx context.Context, q StatsQuery) (*Stats, error) {
	var f AttendanceFilter
	if q.StartDate != "" && q.EndDate != "" {
		f.From, f.To = q.StartDate, q.EndDate
	}

	records, err := s.Ledger().Find(ctx, f)
	if err != nil {
		return nil, err
	}

	stats := &Stats{PopularClasses: []PopularClass{}}
	perClass := make(map[string]int)
	for _, a := range records {
		switch a.Status {
		case StatusCheckedIn:
			stats.TotalCheckins++
			perClass[a.ClassID]++
		case StatusCancelled:
			stats.TotalCancellations++
		case StatusNoShow:
			stats.TotalNoShows++
		}
	}

	ranked := make([]PopularClass, 0, len(perClass))
	for classID, n := range perClass {
		ranked = append(ranked, PopularClass{ClassID: classID, AttendanceCount: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AttendanceCount != ranked[j].AttendanceCount {
			return ranked[i].AttendanceCount > ranked[j].AttendanceCount
		}
		return ranked[i].ClassID < ranked[j].ClassID
	})
	if len(ranked) > PopularClassLimit {
		ranked = ranked[:PopularClassLimit]
	}

	enricher := NewEnricher(s.store, s.enrichConcurrency)
	for i := range ranked {
		ranked[i].ClassName = enricher.ClassName(ctx, ranked[i].ClassID)
	}
	stats.PopularClasses = ranked

	return stats, nil
}
