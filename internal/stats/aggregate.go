// Package stats groups signed happy amounts into chart-ready buckets by
// day, month or year.
//
// The bucketing is deliberately asymmetric: day granularity emits a bucket
// for every calendar day of the referenced month (zero-filled), while month
// and year granularity only emit buckets for periods that have at least one
// record. This mirrors the shipped product behaviour and is locked in by
// tests; treat it as a product decision, not an implementation accident.
package stats

import (
	"sort"
	"strconv"
	"time"

	"happymoney/internal/core"
)

const (
	Day   Granularity = "day"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// AllTimeLabel is the result label for year granularity, which never filters.
const AllTimeLabel = "all time"

// ZeroToPositive controls which accumulator a zero amount joins. Zero is
// neither gain nor loss, so the choice is convention; the shipped behaviour
// counts it as positive. Flip only with stakeholder sign-off, since it
// changes which bar a zero-amount day renders under.
var ZeroToPositive = true

type (
	Granularity string

	// Record is one dated, signed happy amount.
	Record struct {
		Date   core.Date
		Amount int64
	}

	// Bucket accumulates the positive and negative sums for one period.
	// Every record lands in exactly one of the two accumulators.
	Bucket struct {
		Label    string
		Positive int64
		Negative int64
	}

	// Result is an ordered bucket sequence plus the net total over the
	// filtered records and a human label for the covered range.
	Result struct {
		Buckets []Bucket
		Total   int64
		Label   string
	}

	// Period anchors the day view (year+month) and the month view (year).
	// Year granularity ignores it.
	Period struct {
		Year  int
		Month time.Month
	}
)

// FromTransactions projects transactions onto aggregation records.
// Transactions with unparseable dates are skipped.
func FromTransactions(txs []core.Transaction) []Record {
	records := make([]Record, 0, len(txs))
	for _, tx := range txs {
		d, err := core.ParseDate(tx.Date)
		if err != nil {
			continue
		}
		records = append(records, Record{Date: d, Amount: tx.HappyAmount})
	}
	return records
}

// Aggregate buckets records at the given granularity. No records at all is
// a valid terminal state, not an error: empty buckets, zero total, empty
// label.
func Aggregate(records []Record, g Granularity, ref Period) Result {
	if len(records) == 0 {
		return Result{Buckets: []Bucket{}}
	}

	switch g {
	case Day:
		return aggregateByDay(records, ref)
	case Month:
		return aggregateByMonth(records, ref)
	default:
		return aggregateByYear(records)
	}
}

type sums struct {
	positive int64
	negative int64
}

func (s *sums) add(amount int64) {
	switch {
	case amount > 0:
		s.positive += amount
	case amount < 0:
		s.negative += amount
	case ZeroToPositive:
		s.positive += amount
	default:
		s.negative += amount
	}
}

func aggregateByDay(records []Record, ref Period) Result {
	grouped := make(map[string]*sums)
	for _, r := range records {
		if r.Date.Year() != ref.Year || r.Date.Month() != ref.Month {
			continue
		}
		key := r.Date.String()
		s, ok := grouped[key]
		if !ok {
			s = &sums{}
			grouped[key] = s
		}
		s.add(r.Amount)
	}

	// One bucket per calendar day of the month, active or not.
	lastDay := time.Date(ref.Year, ref.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	buckets := make([]Bucket, 0, lastDay)
	for day := 1; day <= lastDay; day++ {
		label := core.NewDate(ref.Year, ref.Month, day).String()
		b := Bucket{Label: label}
		if s, ok := grouped[label]; ok {
			b.Positive = s.positive
			b.Negative = s.negative
		}
		buckets = append(buckets, b)
	}

	return Result{
		Buckets: buckets,
		Total:   totalOf(buckets),
		Label:   ref.Month.String() + " " + strconv.Itoa(ref.Year),
	}
}

func aggregateByMonth(records []Record, ref Period) Result {
	grouped := make(map[string]*sums)
	for _, r := range records {
		if r.Date.Year() != ref.Year {
			continue
		}
		key := r.Date.Format("2006-01")
		s, ok := grouped[key]
		if !ok {
			s = &sums{}
			grouped[key] = s
		}
		s.add(r.Amount)
	}

	return Result{
		Buckets: sortedBuckets(grouped),
		Total:   totalOfMap(grouped),
		Label:   strconv.Itoa(ref.Year),
	}
}

func aggregateByYear(records []Record) Result {
	grouped := make(map[string]*sums)
	for _, r := range records {
		key := strconv.Itoa(r.Date.Year())
		s, ok := grouped[key]
		if !ok {
			s = &sums{}
			grouped[key] = s
		}
		s.add(r.Amount)
	}

	return Result{
		Buckets: sortedBuckets(grouped),
		Total:   totalOfMap(grouped),
		Label:   AllTimeLabel,
	}
}

// sortedBuckets emits only active periods, ascending by label. Labels are
// YYYY or YYYY-MM, so lexicographic order is chronological order.
func sortedBuckets(grouped map[string]*sums) []Bucket {
	buckets := make([]Bucket, 0, len(grouped))
	for label, s := range grouped {
		buckets = append(buckets, Bucket{Label: label, Positive: s.positive, Negative: s.negative})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Label < buckets[j].Label })
	return buckets
}

func totalOf(buckets []Bucket) int64 {
	var total int64
	for _, b := range buckets {
		total += b.Positive + b.Negative
	}
	return total
}

func totalOfMap(grouped map[string]*sums) int64 {
	var total int64
	for _, s := range grouped {
		total += s.positive + s.negative
	}
	return total
}
