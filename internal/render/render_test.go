package render

import (
	"bytes"
	"io/fs"
	"math"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

func player(first, last string, skating, shooting, checking int) *domain.Player {
	return &domain.Player{
		FirstName: first,
		LastName:  last,
		Ratings: map[domain.Skill]int{
			domain.SkillSkating:  skating,
			domain.SkillShooting: shooting,
			domain.SkillChecking: checking,
		},
	}
}

func renderDoc(t *testing.T, page *Page) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, page))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestRenderInitialPage(t *testing.T) {
	doc := renderDoc(t, &Page{WaitList: []*domain.Player{
		player("Geordie", "Tait", 1, 2, 3),
		player("Nikola", "Tesla", 4, 5, 6),
	}})

	assert.Equal(t, "SquadBuilder", doc.Find("#topbar h1").Text())
	assert.Equal(t, "/make", doc.Find("form[method=get]").AttrOr("action", ""))
	assert.Equal(t, "/", doc.Find("form[method=post]").AttrOr("action", ""))
	assert.Equal(t, 0, doc.Find(".squad").Length())
	assert.Equal(t, 0, doc.Find("#error").Length())

	rows := doc.Find("#waitlist tr.player")
	require.Equal(t, 2, rows.Length())
	cells := rows.First().Find("td")
	assert.Equal(t, "Geordie Tait", cells.Eq(0).Text())
	assert.Equal(t, "1", cells.Eq(1).Text())
	assert.Equal(t, "2", cells.Eq(2).Text())
	assert.Equal(t, "3", cells.Eq(3).Text())
}

func TestRenderResult(t *testing.T) {
	a := player("A", "A", 1, 2, 3)
	b := player("B", "B", 2, 4, 4)
	c := player("C", "C", 3, 6, 9)
	d := player("D", "D", 4, 8, 2)
	w := player("W", "W", 0, 0, 0)

	result := &domain.TournamentResult{
		NumSquads: 2,
		Capacity:  2,
		Squads: []domain.SquadResult{
			{Number: 1, Members: []*domain.Player{a, b}, Averages: map[domain.Skill]float64{
				domain.SkillSkating: 1.5, domain.SkillShooting: 3, domain.SkillChecking: 3.5,
			}},
			{Number: 2, Members: []*domain.Player{c, d}, Averages: map[domain.Skill]float64{
				domain.SkillSkating: 3.5, domain.SkillShooting: 7, domain.SkillChecking: 5.5,
			}},
		},
		WaitList: []*domain.Player{w},
	}

	doc := renderDoc(t, &Page{Squads: "2", Result: result})

	squads := doc.Find(".squad")
	require.Equal(t, 2, squads.Length())
	assert.Equal(t, "小队 1", squads.First().Find("h2").Text())
	assert.Equal(t, 2, squads.First().Find("tr.player").Length())

	// 平均值四舍五入
	averages := squads.First().Find("tr.average td")
	assert.Equal(t, "2", averages.Eq(1).Text())
	assert.Equal(t, "3", averages.Eq(2).Text())
	assert.Equal(t, "4", averages.Eq(3).Text())

	assert.Equal(t, 1, doc.Find("#waitlist tr.player").Length())
	assert.Equal(t, "2", doc.Find("input[name=squads]").AttrOr("value", ""))
}

func TestRenderErrorAndEmptyWaitList(t *testing.T) {
	doc := renderDoc(t, &Page{Squads: "abc", Error: "小队数量必须大于 1 且不超过球员人数 (4)"})

	assert.Contains(t, doc.Find("#error").Text(), "小队数量必须大于 1 且不超过球员人数 (4)")
	assert.Equal(t, "空", doc.Find("#waitlist i").Text())
}

func TestRenderEscapesNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &Page{WaitList: []*domain.Player{player("<script>", "x", 0, 0, 0)}}))

	assert.NotContains(t, buf.String(), "<script>")
}

func TestRoundNaN(t *testing.T) {
	round := funcs["round"].(func(float64) int64)
	assert.Equal(t, int64(0), round(math.NaN()))
	assert.Equal(t, int64(3), round(2.5))
}

func TestStatic(t *testing.T) {
	data, err := fs.ReadFile(Static(), "squads.css")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
