// cmd/flagquiz
//
// Terminal client: plays the round engine in-process on stdin/stdout.
//
//	flagquiz play                 # random rounds from the embedded pool
//	flagquiz play --daily         # today's daily challenge
//	flagquiz play --seed 7        # reproducible rounds
//	flagquiz countries --file x.yaml

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/flagquiz/internal/countries"
	"github.com/robalobadob/flagquiz/internal/daily"
	"github.com/robalobadob/flagquiz/internal/game"
	"github.com/robalobadob/flagquiz/internal/present"
)

var errQuit = errors.New("quit")

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := rootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("flagquiz")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var file string
	root := &cobra.Command{
		Use:           "flagquiz",
		Short:         "Guess the flag, in your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&file, "file", "", "country pool YAML (default: embedded list)")
	root.AddCommand(playCmd(&file), countriesCmd(&file))
	return root
}

func playCmd(file *string) *cobra.Command {
	var (
		seed    int64
		isDaily bool
		salt    string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play rounds of eight until you quit",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := countries.Load(*file)
			if err != nil {
				return err
			}
			mode := game.ModeClassic
			var d game.Drawer
			switch {
			case isDaily:
				mode = game.ModeDaily
				d, err = game.NewSeededDealer(pool.IDs(), daily.Seed(time.Now(), salt))
			case cmd.Flags().Changed("seed"):
				d, err = game.NewSeededDealer(pool.IDs(), seed)
			default:
				d, err = game.NewDealer(pool.IDs(), nil)
			}
			if err != nil {
				return err
			}
			err = run(cmd.InOrStdin(), cmd.OutOrStdout(), pool, d, mode)
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "deal reproducible rounds from this seed")
	cmd.Flags().BoolVar(&isDaily, "daily", false, "play today's daily challenge")
	cmd.Flags().StringVar(&salt, "salt", "local_dev_salt", "daily challenge salt (must match the server's DAILY_SALT)")
	return cmd
}

func countriesCmd(file *string) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the country pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := countries.Load(*file)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range pool.Countries() {
				if c.Description == "" {
					fmt.Fprintln(out, c.ID)
					continue
				}
				fmt.Fprintf(out, "%-10s %s\n", c.ID, c.Description)
			}
			return nil
		},
	}
}

// run plays games until the player declines another one, quits, or input ends.
func run(in io.Reader, out io.Writer, pool *countries.Pool, d game.Drawer, mode game.Mode) error {
	sc := bufio.NewScanner(in)
	g := game.New(d, mode)
	for {
		if err := playGame(sc, out, pool, g, d); err != nil {
			return err
		}
		if mode == game.ModeDaily {
			return nil
		}
		fmt.Fprint(out, "Play again? [y/N] ")
		if !sc.Scan() || !strings.HasPrefix(strings.ToLower(strings.TrimSpace(sc.Text())), "y") {
			return nil
		}
	}
}

// playGame runs g until the advance that ends the current game.
func playGame(sc *bufio.Scanner, out io.Writer, pool *countries.Pool, g *game.Game, d game.Drawer) error {
	for {
		fmt.Fprintf(out, "\nRound %d/%d  Score %d\n%s\n", g.RoundNumber, game.RoundsPerGame, g.Score, present.Prompt(g.Round))
		for i, id := range g.Round.Countries {
			desc, _ := pool.Describe(id)
			if desc == "" {
				desc = id
			}
			fmt.Fprintf(out, "  %d) %s\n", i+1, desc)
		}

		choice, err := readChoice(sc, out)
		if err != nil {
			return err
		}
		o, err := g.SubmitGuess(choice)
		if err != nil {
			return err
		}
		fb := present.Outcome(o)
		fmt.Fprintf(out, "%s %s\n", fb.Title, fb.Message)

		if g.Advance(d).GameOver {
			sum := present.GameOver(g.FinalScore)
			fmt.Fprintf(out, "\n%s\n%s\n", sum.Title, sum.Message)
			return nil
		}
	}
}

// readChoice reads a 1-based choice; "q" quits.
func readChoice(sc *bufio.Scanner, out io.Writer) (int, error) {
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}
		text := strings.TrimSpace(sc.Text())
		if strings.EqualFold(text, "q") {
			return 0, errQuit
		}
		n, err := strconv.Atoi(text)
		if err == nil && n >= 1 && n <= game.ChoicesPerRound {
			return n - 1, nil
		}
		fmt.Fprintf(out, "Pick 1 to %d, or q to quit.\n", game.ChoicesPerRound)
	}
}
