package render

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"math"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page 是分队页面需要的全部数据
type Page struct {
	Squads   string // 用户在表单中输入的小队数量，原样回填
	Error    string
	Result   *domain.TournamentResult
	WaitList []*domain.Player // Result 为 nil 时展示的候补名单，通常是全部球员
}

var funcs = template.FuncMap{
	"skills": func() []domain.Skill { return domain.Skills },
	"rating": func(p *domain.Player, skill domain.Skill) int { return p.Rating(skill) },
	"round": func(v float64) int64 {
		if math.IsNaN(v) {
			return 0
		}
		return int64(math.Round(v))
	},
}

var pageTemplate = template.Must(template.New("page.html").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

// Render 将页面写入 w
func Render(w io.Writer, page *Page) error {
	if page.Result != nil {
		page.WaitList = page.Result.WaitList
	}
	return pageTemplate.ExecuteTemplate(w, "page.html", page)
}

// Static 返回页面引用的静态资源
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
