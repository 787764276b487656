// cmd/seed — generates realistic mock data for development.
//
// It prints a JSON batch submission document (one "name": "fields" pair per
// account, in the semicolon format the scoring channel accepts) and, when
// DATABASE_URL is set, seeds a handful of flagged accounts so the social-graph
// signal has something to match against.
//
// Usage:
//
//	go run ./cmd/seed > batch.json
//	DATABASE_URL=postgres://... go run ./cmd/seed
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/modsentry/modsentry/internal/flagged"
)

const batchSize = 8

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	gofakeit.Seed(42)

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		if err := seedFlagged(dbURL); err != nil {
			return err
		}
	}

	return printBatch()
}

// seedFlagged inserts a fixed set of flagged account IDs.
func seedFlagged(dbURL string) error {
	ctx := context.Background()
	db, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	fmt.Fprintln(os.Stderr, "connected to database")

	logger, _ := zap.NewDevelopment()
	store := flagged.NewPostgresStore(db, logger)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	for i := 1; i <= 12; i++ {
		id := fmt.Sprintf("flagged_%03d", i)
		if err := store.SetFlagged(ctx, id, true); err != nil {
			return fmt.Errorf("flag %s: %w", id, err)
		}
		fmt.Fprintf(os.Stderr, "  flagged %s\n", id)
	}
	return nil
}

// printBatch writes a JSON batch submission to stdout. Roughly half the
// accounts are near-duplicates of a seed name with confusable character
// substitutions, reported for impersonation; the rest are benign filler.
func printBatch() error {
	rng := rand.New(rand.NewSource(42))
	seedName := strings.ToLower(gofakeit.Username())

	type entry struct {
		name   string
		fields string
	}
	var entries []entry

	// The original account the impersonators mimic.
	entries = append(entries, entry{
		name:   seedName,
		fields: submission(rng, seedName, "Impersonation", 0),
	})

	for i := 0; i < batchSize/2; i++ {
		name := substitute(rng, seedName)
		entries = append(entries, entry{
			name:   name,
			fields: submission(rng, name, "Impersonation", rng.Intn(4)),
		})
	}
	for i := 0; i < batchSize/2; i++ {
		name := strings.ToLower(gofakeit.Username())
		entries = append(entries, entry{
			name:   name,
			fields: submission(rng, name, "Spam or Fraud", 0),
		})
	}

	// Marshal by hand to keep document order stable.
	var b strings.Builder
	b.WriteString("{\n")
	for i, e := range entries {
		k, _ := json.Marshal(e.name)
		v, _ := json.Marshal(e.fields)
		fmt.Fprintf(&b, "  %s: %s", k, v)
		if i < len(entries)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")

	_, err := os.Stdout.WriteString(b.String())
	return err
}

// submission renders one account in the semicolon field format:
// name; intro; followers; following; ip; reportCount; reasons.
func submission(rng *rand.Rand, name, reason string, reportCount int) string {
	followers := make([]string, 2+rng.Intn(3))
	for i := range followers {
		followers[i] = fmt.Sprintf("%d", 1000+rng.Intn(9000))
	}
	following := make([]string, 2+rng.Intn(3))
	for i := range following {
		following[i] = fmt.Sprintf("%d", 1000+rng.Intn(9000))
	}

	return fmt.Sprintf("%s; %s; %s; %s; %s; %d; %s",
		name,
		gofakeit.Sentence(6),
		strings.Join(followers, ","),
		strings.Join(following, ","),
		gofakeit.IPv4Address(),
		reportCount,
		reason,
	)
}

// confusable substitution pairs used to fake lookalike names.
var substitutions = [][2]rune{
	{'l', '1'}, {'i', '!'}, {'o', '0'}, {'g', '9'},
	{'b', '6'}, {'z', '2'}, {'u', 'v'}, {'c', 'e'},
}

// substitute replaces one substitutable character in name, falling back to
// appending a digit when none applies.
func substitute(rng *rand.Rand, name string) string {
	runes := []rune(name)
	idxs := rng.Perm(len(runes))
	for _, i := range idxs {
		for _, pair := range substitutions {
			if runes[i] == pair[0] {
				runes[i] = pair[1]
				return string(runes)
			}
		}
	}
	return name + fmt.Sprintf("%d", rng.Intn(10))
}
