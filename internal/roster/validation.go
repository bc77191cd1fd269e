package roster

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

var (
	ErrPlayerWithoutName = errors.New("检测到没有名字的球员")
	ErrInvalidRating     = errors.New("检测到无效的能力评分")
	ErrDuplicatePlayerID = errors.New("检测到重复的球员 ID")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type playerRecord struct {
	Name     string `validate:"required"`
	Skating  int    `validate:"min=0"`
	Shooting int    `validate:"min=0"`
	Checking int    `validate:"min=0"`
}

var skillFieldNames = map[string]string{
	"Skating":  "滑行",
	"Shooting": "射门",
	"Checking": "身体对抗",
}

// Validate 检查球员名单是否符合分队要求：每名球员至少有一个名字，三项能力评分都不为负
//
// 缺失的能力按 0 分处理，是合法的
func Validate(players []*domain.Player) error {
	seen := make(map[string]bool, len(players))

	for _, p := range players {
		record := playerRecord{
			Name:     p.FirstName + p.LastName,
			Skating:  p.SkatingRating(),
			Shooting: p.ShootingRating(),
			Checking: p.CheckingRating(),
		}

		if err := validate.Struct(record); err != nil {
			var validationErrors validator.ValidationErrors
			if !errors.As(err, &validationErrors) {
				return err
			}

			field := validationErrors[0].Field()
			if field == "Name" {
				return ErrPlayerWithoutName
			}
			return fmt.Errorf("%w: 球员 %s 的%s评分为 %v", ErrInvalidRating, p.Name(), skillFieldNames[field], validationErrors[0].Value())
		}

		if p.ID != "" {
			if seen[p.ID] {
				return fmt.Errorf("%w: %s", ErrDuplicatePlayerID, p.ID)
			}
			seen[p.ID] = true
		}
	}

	return nil
}
