package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"serotonyl.ru/casino-feed/internal/features/catalog"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

// seqSource отдаёт заранее заданные значения по кругу.
type seqSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *seqSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

func (s *seqSource) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[s.ii%len(s.ints)] % n
	s.ii++
	return v
}

func constSource(f float64) *seqSource {
	return &seqSource{floats: []float64{f}}
}

type staticSnapshot struct {
	snap *catalog.Snapshot
	err  error
}

func (s staticSnapshot) Snapshot() (*catalog.Snapshot, error) {
	return s.snap, s.err
}

// defaultSnapshot — снимок из встроенного каталога (30 игр, 4 провайдера).
func defaultSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()
	c, err := catalog.DefaultCatalog()
	require.NoError(t, err)

	games := make([]catalog.GameConfig, 0, len(c.Games))
	for _, g := range c.Games {
		games = append(games, catalog.GameConfig{
			GameID:     g.ID,
			Name:       g.Name,
			Provider:   g.Provider,
			LadderType: g.Ladder,
			IsActive:   true,
		})
	}
	return catalog.BuildSnapshot(games, nil, fixedNow)
}

func newTestGenerator(snap *catalog.Snapshot, src Source) *Generator {
	return New(staticSnapshot{snap: snap},
		WithSource(src),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func gameByName(snap *catalog.Snapshot, name string) (catalog.GameDefinition, bool) {
	for _, g := range snap.Games {
		if g.Name == name {
			return g, true
		}
	}
	return catalog.GameDefinition{}, false
}
