package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/robalobadob/flagquiz/internal/countries"
	"github.com/robalobadob/flagquiz/internal/game"
)

func seeded(t *testing.T, seed int64) (*countries.Pool, *game.SeededDealer) {
	t.Helper()
	pool, err := countries.Load("")
	if err != nil {
		t.Fatal(err)
	}
	d, err := game.NewSeededDealer(pool.IDs(), seed)
	if err != nil {
		t.Fatal(err)
	}
	return pool, d
}

// answers returns one input line per round, right for the first hits rounds.
func answers(d game.Drawer, hits int) []string {
	var lines []string
	for r := 1; r <= game.RoundsPerGame; r++ {
		choice := d.Deal(r).CorrectIndex
		if r > hits {
			choice = (choice + 1) % game.ChoicesPerRound
		}
		lines = append(lines, fmt.Sprint(choice+1))
	}
	return lines
}

func TestRunPlaysAGame(t *testing.T) {
	pool, d := seeded(t, 7)
	input := append([]string{"banana", "4"}, answers(d, game.RoundsPerGame)...)
	input = append(input, "n")

	var out bytes.Buffer
	if err := run(strings.NewReader(strings.Join(input, "\n")+"\n"), &out, pool, d, game.ModeClassic); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Round 1/8", "Pick 1 to 3", "Correct!", "Game Over", "Final Score: 8 out of 8.", "Play again?"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(got, "Doh!") {
		t.Error("no guess should have been wrong")
	}
}

func TestRunPlaysAgain(t *testing.T) {
	pool, d := seeded(t, 3)
	input := append(answers(d, 2), "y")
	input = append(input, answers(d, 0)...)
	input = append(input, "no")

	var out bytes.Buffer
	if err := run(strings.NewReader(strings.Join(input, "\n")+"\n"), &out, pool, d, game.ModeClassic); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Final Score: 2 out of 8.") || !strings.Contains(got, "Final Score: 0 out of 8.") {
		t.Errorf("expected two finished games, got:\n%s", got)
	}
}

func TestRunDailyStopsAfterOneGame(t *testing.T) {
	pool, d := seeded(t, 11)
	var out bytes.Buffer
	if err := run(strings.NewReader(strings.Join(answers(d, 4), "\n")+"\n"), &out, pool, d, game.ModeDaily); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if strings.Contains(out.String(), "Play again?") {
		t.Error("daily mode offers no replay")
	}
}

func TestRunQuitAndEOF(t *testing.T) {
	pool, d := seeded(t, 1)

	err := run(strings.NewReader("1\nq\n"), io.Discard, pool, d, game.ModeClassic)
	if !errors.Is(err, errQuit) {
		t.Errorf("expected errQuit, got %v", err)
	}

	err = run(strings.NewReader("2\n"), io.Discard, pool, d, game.ModeClassic)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestCountriesCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"countries"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 11 {
		t.Errorf("expected 11 countries, got %d", len(lines))
	}
}

func TestPlayCommandWithSeed(t *testing.T) {
	_, d := seeded(t, 99)
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(strings.Join(answers(d, game.RoundsPerGame), "\n") + "\nq\n"))
	cmd.SetArgs([]string{"play", "--seed", "99"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(out.String(), "Final Score: 8 out of 8.") {
		t.Errorf("seeded play did not match the expected rounds:\n%s", out.String())
	}
}
