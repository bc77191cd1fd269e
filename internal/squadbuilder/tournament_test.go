package squadbuilder

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

func TestTournamentVariance(t *testing.T) {
	p1 := newPlayer("1234", 1, 3, 5)
	p2 := newPlayer("2345", 3, 5, 7)
	p3 := newPlayer("3456", 2, 4, 6)
	p4 := newPlayer("4567", 4, 6, 8)
	players := []*domain.Player{p1, p2, p3, p4}

	tour := NewTournament(players, 2)
	tour.squads = []*Squad{NewSquad(p1, p2), NewSquad(p3, p4)}
	tour.waitList = nil

	assert.InDelta(t, 0.5, tour.SkatingVariance(), 1e-12)
	assert.InDelta(t, 0.5, tour.ShootingVariance(), 1e-12)
	assert.InDelta(t, 0.5, tour.CheckingVariance(), 1e-12)
	assert.InDelta(t, 1.5, tour.Fitness(), 1e-12)
}

func TestNewTournament(t *testing.T) {
	players := makeRoster(10)
	tour := NewTournament(players, 3)

	assert.Equal(t, 3, tour.Capacity())
	assert.Equal(t, 3, tour.NumSquads())
	require.Len(t, tour.squads, 3)
	for _, s := range tour.squads {
		assert.Zero(t, s.Size())
	}
	assert.Len(t, tour.waitList, 10)
	assert.Nil(t, tour.fitness)
	requireConserved(t, tour, players)
}

func TestFillSquadsRandom(t *testing.T) {
	tests := []struct {
		name      string
		players   int
		numSquads int
		capacity  int
		waitList  int
	}{
		{name: "4 名球员分 3 队", players: 4, numSquads: 3, capacity: 1, waitList: 1},
		{name: "整除", players: 12, numSquads: 4, capacity: 3, waitList: 0},
		{name: "余数较大", players: 17, numSquads: 5, capacity: 3, waitList: 2},
		{name: "每人一队", players: 5, numSquads: 5, capacity: 1, waitList: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := makeRoster(tt.players)
			tour := NewTournament(players, tt.numSquads)
			tour.FillSquadsRandom(rand.New(rand.NewSource(1)))

			assert.Equal(t, tt.capacity, tour.Capacity())
			require.Len(t, tour.squads, tt.numSquads)
			for _, s := range tour.squads {
				assert.Equal(t, tt.capacity, s.Size())
			}
			assert.Len(t, tour.waitList, tt.waitList)
			requireConserved(t, tour, players)
		})
	}
}

func TestFillSquadsRandomTwiceKeepsRoster(t *testing.T) {
	players := makeRoster(9)
	tour := NewTournament(players, 2)
	rng := rand.New(rand.NewSource(7))

	tour.FillSquadsRandom(rng)
	tour.FillSquadsRandom(rng)

	requireConserved(t, tour, players)
	assert.Len(t, tour.waitList, 1)
}

func TestTournamentCopyIsIndependent(t *testing.T) {
	players := makeRoster(10)
	rng := rand.New(rand.NewSource(3))
	tour := NewTournament(players, 3)
	tour.FillSquadsRandom(rng)
	before := tour.Fitness()

	c := tour.Copy()
	assert.Nil(t, c.fitness)
	assert.Equal(t, before, c.Fitness())

	for range 20 {
		c.MutateSquads(rng)
		c.MutateSquadWithWaitList(rng)
	}

	assert.Equal(t, before, tour.Fitness())
	requireConserved(t, tour, players)
	requireConserved(t, c, players)
	for i := range tour.squads {
		assert.NotSame(t, tour.squads[i], c.squads[i])
	}
}

func TestFitnessCacheInvalidatedByMutation(t *testing.T) {
	players := makeRoster(15)
	rng := rand.New(rand.NewSource(11))
	tour := NewTournament(players, 4)
	tour.FillSquadsRandom(rng)

	for range 50 {
		tour.Fitness()
		tour.MutateSquads(rng)
		require.Nil(t, tour.fitness)

		fresh := tour.Copy()
		assert.Equal(t, fresh.Fitness(), tour.Fitness())

		tour.MutateSquadWithWaitList(rng)
		fresh = tour.Copy()
		assert.Equal(t, fresh.Fitness(), tour.Fitness())
	}
}

func TestMutationConservesRoster(t *testing.T) {
	players := makeRoster(23)
	rng := rand.New(rand.NewSource(5))
	tour := NewTournament(players, 4)
	tour.FillSquadsRandom(rng)

	for range 200 {
		tour.MutateSquads(rng)
		tour.MutateSquadWithWaitList(rng)

		requireConserved(t, tour, players)
		assert.Len(t, tour.waitList, 3)
		for _, s := range tour.squads {
			assert.Equal(t, 5, s.Size())
		}
	}
}

func TestMutateSquadWithEmptyWaitListIsNoop(t *testing.T) {
	players := makeRoster(8)
	rng := rand.New(rand.NewSource(2))
	tour := NewTournament(players, 4)
	tour.FillSquadsRandom(rng)
	fitness := tour.Fitness()
	squads := tour.Squads()

	for range 10 {
		tour.MutateSquadWithWaitList(rng)
	}

	require.NotNil(t, tour.fitness)
	assert.Equal(t, fitness, tour.Fitness())
	for i, s := range tour.squads {
		assert.Equal(t, squads[i].Members(), s.Members())
	}
}

func TestMutateSquadWithWaitListReachesEverySquad(t *testing.T) {
	players := makeRoster(7)
	rng := rand.New(rand.NewSource(9))
	tour := NewTournament(players, 3)
	tour.FillSquadsRandom(rng)

	changed := make([]bool, 3)
	for range 300 {
		before := tour.Squads()
		tour.MutateSquadWithWaitList(rng)
		for i, s := range tour.squads {
			if s.members[len(s.members)-1] != before[i].members[len(before[i].members)-1] {
				changed[i] = true
			}
		}
	}

	assert.Equal(t, []bool{true, true, true}, changed)
}

func TestSingleSquadFitnessIsNaN(t *testing.T) {
	players := makeRoster(4)
	tour := NewTournament(players, 1)
	tour.FillSquadsRandom(rand.New(rand.NewSource(1)))

	assert.True(t, math.IsNaN(tour.Fitness()))
}

func TestTournamentAccessorsReturnCopies(t *testing.T) {
	players := makeRoster(7)
	tour := NewTournament(players, 2)
	tour.FillSquadsRandom(rand.New(rand.NewSource(4)))

	squads := tour.Squads()
	squads[0].AddMember(newPlayer("x", 1, 1, 1))
	waitList := tour.WaitList()
	require.Len(t, waitList, 1)
	waitList[0] = newPlayer("y", 1, 1, 1)

	requireConserved(t, tour, players)
}

func TestTournamentResult(t *testing.T) {
	players := makeRoster(7)
	tour := NewTournament(players, 2)
	tour.FillSquadsRandom(rand.New(rand.NewSource(8)))

	res := tour.Result()

	assert.Equal(t, 2, res.NumSquads)
	assert.Equal(t, 3, res.Capacity)
	assert.Len(t, res.WaitList, 1)
	assert.Equal(t, tour.Fitness(), res.Fitness)
	require.Len(t, res.Squads, 2)
	sum := 0.0
	for _, skill := range domain.Skills {
		sum += res.Variances[skill]
	}
	assert.InDelta(t, res.Fitness, sum, 1e-12)
	for i, s := range res.Squads {
		assert.Equal(t, i+1, s.Number)
		assert.Len(t, s.Members, 3)
		assert.Equal(t, tour.squads[i].SkatingAvg(), s.Averages[domain.SkillSkating])
	}
}
