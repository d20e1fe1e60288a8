package game

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

var ErrPoolTooSmall = errors.New("pool needs at least 3 distinct countries")

// Dealer draws rounds uniformly at random. Safe for concurrent use.
type Dealer struct {
	ids []string
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDealer builds a Dealer over ids. A nil src seeds from the clock.
func NewDealer(ids []string, src rand.Source) (*Dealer, error) {
	pool, err := distinct(ids)
	if err != nil {
		return nil, err
	}
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Dealer{ids: pool, rng: rand.New(src)}, nil
}

// Deal ignores the round number; every draw is independent.
func (d *Dealer) Deal(int) Round {
	d.mu.Lock()
	defer d.mu.Unlock()
	return deal(d.ids, d.rng)
}

// SeededDealer deals the same round for the same (seed, round number).
// It keeps no state, so any process holding the seed can continue a game.
type SeededDealer struct {
	ids  []string
	seed int64
}

// NewSeededDealer builds a deterministic dealer.
func NewSeededDealer(ids []string, seed int64) (*SeededDealer, error) {
	pool, err := distinct(ids)
	if err != nil {
		return nil, err
	}
	return &SeededDealer{ids: pool, seed: seed}, nil
}

func (d *SeededDealer) Deal(roundNumber int) Round {
	// 7919 spreads consecutive round numbers across the source's seed space.
	rng := rand.New(rand.NewSource(d.seed + int64(roundNumber)*7919))
	return deal(d.ids, rng)
}

// deal shuffles a copy of the pool, keeps a 3-prefix and picks the target.
func deal(ids []string, rng *rand.Rand) Round {
	pool := append([]string(nil), ids...)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	var r Round
	copy(r.Countries[:], pool[:ChoicesPerRound])
	r.CorrectIndex = rng.Intn(ChoicesPerRound)
	return r
}

func distinct(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) < ChoicesPerRound {
		return nil, ErrPoolTooSmall
	}
	return out, nil
}
