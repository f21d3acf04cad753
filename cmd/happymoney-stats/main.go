package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"happymoney/internal/api"
	"happymoney/internal/cli"
	"happymoney/internal/core"
	"happymoney/internal/stats"
)

func main() {
	userID := flag.String("user", "", "user id (overrides HAPPYMONEY_USER_ID)")
	granularity := flag.String("granularity", "month", "aggregation granularity: day, month or year")
	year := flag.Int("year", time.Now().Year(), "anchor year for day and month views")
	month := flag.Int("month", int(time.Now().Month()), "anchor month for the day view")
	retroMonths := flag.Int("retro", 0, "include the retrospective summary over N months (0 disables)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)
	if *userID != "" {
		cfg.UserID = *userID
	}

	var g stats.Granularity
	switch *granularity {
	case "day":
		g = stats.Day
	case "month":
		g = stats.Month
	case "year":
		g = stats.Year
	default:
		fmt.Fprintf(os.Stderr, "unknown granularity %q\n", *granularity)
		os.Exit(2)
	}

	client := cli.InitClient(logger, cfg)

	session := api.NewSession(client)
	ctx := context.Background()
	if _, err := session.Restore(ctx); err != nil {
		if cfg.UserID == "" {
			logger.Error("No session and no user id configured")
			os.Exit(1)
		}
		if _, err := session.Login(ctx, cfg.UserID); err != nil {
			logger.Error("Login failed", "error", err, "user_id", cfg.UserID)
			os.Exit(1)
		}
	}

	var (
		transactions []core.Transaction
		retro        api.RetrospectiveSummary
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		transactions, err = client.ListTransactions(groupCtx, cfg.UserID)
		return err
	})
	if *retroMonths > 0 {
		group.Go(func() error {
			var err error
			retro, err = client.RetrospectiveSummary(groupCtx, *retroMonths)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		logger.Error("Fetch failed", "error", err)
		os.Exit(1)
	}

	result := stats.Aggregate(stats.FromTransactions(transactions), g, stats.Period{
		Year:  *year,
		Month: time.Month(*month),
	})
	printResult(result)

	if *retroMonths > 0 {
		printRetrospective(retro)
	}
}

func printResult(result stats.Result) {
	if len(result.Buckets) == 0 {
		fmt.Println("No happy money recorded yet.")
		return
	}

	fmt.Printf("Happy money, %s\n", result.Label)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "period\tgained\tlost\tnet")
	for _, b := range result.Buckets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			b.Label,
			core.FormatSigned(b.Positive),
			core.FormatSigned(b.Negative),
			core.FormatSigned(b.Positive+b.Negative))
	}
	w.Flush()
	fmt.Printf("total\t%s\n", core.FormatSigned(result.Total))
}

func printRetrospective(retro api.RetrospectiveSummary) {
	fmt.Println("\nLooking back")

	if len(retro.HappyMoneyTop3Diaries) > 0 {
		fmt.Println("Money well spent:")
		for _, d := range retro.HappyMoneyTop3Diaries {
			fmt.Printf("  %s  %s (%s)\n", d.Date, d.Title, core.MoodShortLabel(d.Sentiment))
		}
	}
	if len(retro.HappyMoneyWorst3Diaries) > 0 {
		fmt.Println("Money regretted:")
		for _, d := range retro.HappyMoneyWorst3Diaries {
			fmt.Printf("  %s  %s (%s)\n", d.Date, d.Title, core.MoodShortLabel(d.Sentiment))
		}
	}
	if len(retro.EmotionBuckets) > 0 {
		fmt.Println("Moods:")
		for _, b := range retro.EmotionBuckets {
			fmt.Printf("  %-14s %d\n", b.Label, b.Count)
		}
	}
}
