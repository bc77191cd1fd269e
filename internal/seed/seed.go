package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/repository"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/roster"
)

// 表头可以使用中文或英文
var columnAliases = map[string]string{
	"id":        "id",
	"编号":        "id",
	"firstname": "firstName",
	"名":         "firstName",
	"lastname":  "lastName",
	"姓":         "lastName",
	"skating":   string(domain.SkillSkating),
	"滑行":        string(domain.SkillSkating),
	"shooting":  string(domain.SkillShooting),
	"射门":        string(domain.SkillShooting),
	"checking":  string(domain.SkillChecking),
	"身体对抗":      string(domain.SkillChecking),
}

var ErrMissingNameColumn = errors.New("没有找到姓名列")

// ReadPlayersCSV 读取球员表格，缺失的能力列按 0 分处理，没有 ID 的球员会生成一个随机 ID
func ReadPlayersCSV(r io.Reader) ([]*domain.Player, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	columns := make([]string, len(headers))
	hasName := false
	for i, header := range headers {
		columns[i] = columnAliases[strings.ToLower(strings.TrimSpace(header))]
		if columns[i] == "firstName" || columns[i] == "lastName" {
			hasName = true
		}
	}
	if !hasName {
		return nil, ErrMissingNameColumn
	}

	players := make([]*domain.Player, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("读取第 %d 行失败: %w", line, err)
		}

		player := &domain.Player{Ratings: make(map[domain.Skill]int, len(domain.Skills))}
		for i, value := range row {
			value = strings.TrimSpace(value)
			switch column := columns[i]; column {
			case "":
				// 未知列
			case "id":
				player.ID = value
			case "firstName":
				player.FirstName = value
			case "lastName":
				player.LastName = value
			default:
				if value == "" {
					continue
				}
				rating, err := strconv.Atoi(value)
				if err != nil {
					return nil, fmt.Errorf("第 %d 行的 %s 评分不是整数: %q", line, column, value)
				}
				player.Ratings[domain.Skill(column)] = rating
			}
		}

		if player.ID == "" {
			player.ID = uuid.NewString()
		}
		players = append(players, player)
	}

	if err := roster.Validate(players); err != nil {
		return nil, err
	}

	return players, nil
}

// SeedRealData 将 CSV 中的真实球员数据导入数据库
func SeedRealData(r *repository.Repository, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	players, err := ReadPlayersCSV(file)
	if err != nil {
		slog.Error("读取球员数据失败", "error", err)
		return
	}

	if err := r.UpsertPlayers(players, false); err != nil {
		slog.Error("插入球员失败", "error", err)
		return
	}

	slog.Info("插入数据完成", slog.Int("count", len(players)))
}
