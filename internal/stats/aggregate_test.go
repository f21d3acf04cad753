package stats

import (
	"testing"
	"time"

	"happymoney/internal/core"
)

func rec(date string, amount int64) Record {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return Record{Date: d, Amount: amount}
}

func findBucket(t *testing.T, buckets []Bucket, label string) Bucket {
	t.Helper()
	for _, b := range buckets {
		if b.Label == label {
			return b
		}
	}
	t.Fatalf("no bucket labelled %q", label)
	return Bucket{}
}

func TestAggregate_DayGranularityMarch(t *testing.T) {
	records := []Record{
		rec("2024-03-01", 500),
		rec("2024-03-01", -200),
		rec("2024-03-15", 100),
	}

	res := Aggregate(records, Day, Period{Year: 2024, Month: time.March})

	if len(res.Buckets) != 31 {
		t.Fatalf("expected 31 buckets for March, got %d", len(res.Buckets))
	}
	if res.Label != "March 2024" {
		t.Errorf("label = %q, want %q", res.Label, "March 2024")
	}
	if res.Total != 400 {
		t.Errorf("total = %d, want 400", res.Total)
	}

	first := findBucket(t, res.Buckets, "2024-03-01")
	if first.Positive != 500 || first.Negative != -200 {
		t.Errorf("2024-03-01 = +%d/%d, want +500/-200", first.Positive, first.Negative)
	}
	mid := findBucket(t, res.Buckets, "2024-03-15")
	if mid.Positive != 100 || mid.Negative != 0 {
		t.Errorf("2024-03-15 = +%d/%d, want +100/0", mid.Positive, mid.Negative)
	}

	zeroDays := 0
	for _, b := range res.Buckets {
		if b.Positive == 0 && b.Negative == 0 {
			zeroDays++
		}
	}
	if zeroDays != 29 {
		t.Errorf("expected 29 zero-activity days, got %d", zeroDays)
	}
}

func TestAggregate_DayGranularityLeapFebruary(t *testing.T) {
	records := []Record{rec("2024-02-10", 100)}

	res := Aggregate(records, Day, Period{Year: 2024, Month: time.February})

	if len(res.Buckets) != 29 {
		t.Fatalf("expected 29 buckets for February 2024, got %d", len(res.Buckets))
	}
	for i, b := range res.Buckets[1:] {
		if b.Label <= res.Buckets[i].Label {
			t.Fatalf("buckets not ascending at %d: %q then %q", i, res.Buckets[i].Label, b.Label)
		}
	}
}

func TestAggregate_MonthGranularityOmitsEmptyMonths(t *testing.T) {
	records := []Record{
		rec("2024-01-05", 100),
		rec("2024-03-10", -50),
		rec("2024-03-20", 30),
		rec("2023-12-31", 999), // different year, filtered out
	}

	res := Aggregate(records, Month, Period{Year: 2024})

	if len(res.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %v", len(res.Buckets), res.Buckets)
	}
	if res.Buckets[0].Label != "2024-01" || res.Buckets[1].Label != "2024-03" {
		t.Errorf("unexpected labels: %q, %q", res.Buckets[0].Label, res.Buckets[1].Label)
	}
	if res.Label != "2024" {
		t.Errorf("label = %q, want 2024", res.Label)
	}
	if res.Total != 80 {
		t.Errorf("total = %d, want 80", res.Total)
	}

	march := res.Buckets[1]
	if march.Positive != 30 || march.Negative != -50 {
		t.Errorf("2024-03 = +%d/%d, want +30/-50", march.Positive, march.Negative)
	}
}

func TestAggregate_YearGranularity(t *testing.T) {
	records := []Record{
		rec("2022-06-01", 100),
		rec("2024-01-01", -40),
		rec("2022-07-01", 50),
	}

	res := Aggregate(records, Year, Period{})

	if len(res.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(res.Buckets))
	}
	if res.Buckets[0].Label != "2022" || res.Buckets[1].Label != "2024" {
		t.Errorf("unexpected labels: %v", res.Buckets)
	}
	if res.Label != AllTimeLabel {
		t.Errorf("label = %q, want %q", res.Label, AllTimeLabel)
	}
	if res.Total != 110 {
		t.Errorf("total = %d, want 110", res.Total)
	}
}

func TestAggregate_NoRecords(t *testing.T) {
	res := Aggregate(nil, Day, Period{Year: 2024, Month: time.March})

	if len(res.Buckets) != 0 {
		t.Errorf("expected no buckets, got %d", len(res.Buckets))
	}
	if res.Total != 0 || res.Label != "" {
		t.Errorf("expected zero total and empty label, got %d %q", res.Total, res.Label)
	}
}

func TestAggregate_TotalMatchesBucketSums(t *testing.T) {
	records := []Record{
		rec("2024-03-01", 500),
		rec("2024-03-02", -700),
		rec("2024-03-02", 0),
		rec("2024-03-28", 1),
	}

	for _, g := range []Granularity{Day, Month, Year} {
		res := Aggregate(records, g, Period{Year: 2024, Month: time.March})
		var sum int64
		for _, b := range res.Buckets {
			sum += b.Positive + b.Negative
		}
		if sum != res.Total {
			t.Errorf("%s: total %d != bucket sum %d", g, res.Total, sum)
		}
	}
}

func TestAggregate_ZeroAmountPolicy(t *testing.T) {
	records := []Record{rec("2024-03-02", 0)}

	res := Aggregate(records, Month, Period{Year: 2024})
	if len(res.Buckets) != 1 {
		t.Fatalf("zero-amount record should still produce a bucket, got %d", len(res.Buckets))
	}
	// Zero contributes to the positive accumulator by convention.
	b := res.Buckets[0]
	if b.Positive != 0 || b.Negative != 0 {
		t.Errorf("bucket = +%d/%d, want +0/0", b.Positive, b.Negative)
	}
}

func TestFromTransactions_SkipsBadDates(t *testing.T) {
	txs := []core.Transaction{
		{Date: "2024-03-01", HappyAmount: 10},
		{Date: "not-a-date", HappyAmount: 99},
	}

	records := FromTransactions(txs)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Amount != 10 {
		t.Errorf("amount = %d, want 10", records[0].Amount)
	}
}
