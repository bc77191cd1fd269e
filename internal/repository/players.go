package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

const playerColumns = `id, first_name, last_name, skating, shooting, checking, created_at, version`

func scanPlayer(row rowScanner) (*domain.Player, error) {
	var skating, shooting, checking int
	player := &domain.Player{}

	dst := []any{&player.ID, &player.FirstName, &player.LastName, &skating, &shooting, &checking, &player.CreatedAt, &player.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	player.Ratings = map[domain.Skill]int{
		domain.SkillSkating:  skating,
		domain.SkillShooting: shooting,
		domain.SkillChecking: checking,
	}
	return player, nil
}

func (r *Repository) GetAllPlayers() ([]*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY last_name, first_name, id`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*domain.Player, 0)
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return players, nil
}

func (r *Repository) GetPlayerByID(id string) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	return scanPlayer(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) CreatePlayer(player *domain.Player) error {
	query := `
		INSERT INTO players (id, first_name, last_name, skating, shooting, checking)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{player.ID, player.FirstName, player.LastName, player.SkatingRating(), player.ShootingRating(), player.CheckingRating()}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&player.CreatedAt, &player.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdatePlayer(player *domain.Player) error {
	query := `
		UPDATE players
		SET
			first_name = $1,
			last_name = $2,
			skating = $3,
			shooting = $4,
			checking = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{player.FirstName, player.LastName, player.SkatingRating(), player.ShootingRating(), player.CheckingRating(), player.ID, player.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&player.CreatedAt, &player.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeletePlayer(id string) error {
	query := `
		DELETE FROM players WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

// UpsertPlayers 在一个事务中导入球员名单，已存在的球员会被覆盖
//
// replace 为 true 时会先清空球员表，使数据库中的名单和导入的名单完全一致
func (r *Repository) UpsertPlayers(players []*domain.Player, replace bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO players (id, first_name, last_name, skating, shooting, checking)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			skating = EXCLUDED.skating,
			shooting = EXCLUDED.shooting,
			checking = EXCLUDED.checking,
			version = players.version + 1
		RETURNING created_at, version
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, player := range players {
		args := []any{player.ID, player.FirstName, player.LastName, player.SkatingRating(), player.ShootingRating(), player.CheckingRating()}
		if err := stmt.QueryRowContext(ctx, args...).Scan(&player.CreatedAt, &player.Version); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
