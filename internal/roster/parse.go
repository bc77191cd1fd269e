package roster

import (
	"errors"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON  = errors.New("球员数据不是合法的 JSON")
	ErrNoPlayerList = errors.New("球员数据中没有找到球员列表")
)

// Parse 解析球员数据
//
// 支持 {"playerList": [...]}、{"players": [...]} 或者直接是数组三种格式，
// 每名球员的能力既可以是 skills 数组 [{type, rating}]，也可以是 ratings 对象
func Parse(data []byte) ([]*domain.Player, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	root := gjson.ParseBytes(data)
	list := root
	if !root.IsArray() {
		list = root.Get("playerList")
		if !list.Exists() {
			list = root.Get("players")
		}
	}
	if !list.IsArray() {
		return nil, ErrNoPlayerList
	}

	players := make([]*domain.Player, 0)
	list.ForEach(func(_, value gjson.Result) bool {
		players = append(players, parsePlayer(value))
		return true
	})

	return players, nil
}

func parsePlayer(value gjson.Result) *domain.Player {
	id := value.Get("_id")
	if !id.Exists() {
		id = value.Get("id")
	}

	p := &domain.Player{
		ID:        id.String(),
		FirstName: value.Get("firstName").String(),
		LastName:  value.Get("lastName").String(),
		Ratings:   make(map[domain.Skill]int, len(domain.Skills)),
	}

	// 同一项能力出现多次时以最后一次为准
	value.Get("skills").ForEach(func(_, skill gjson.Result) bool {
		p.Ratings[domain.Skill(skill.Get("type").String())] = int(skill.Get("rating").Int())
		return true
	})
	value.Get("ratings").ForEach(func(key, rating gjson.Result) bool {
		p.Ratings[domain.Skill(key.String())] = int(rating.Int())
		return true
	})

	return p
}
