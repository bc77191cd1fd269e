package repository

import (
	"time"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

const coachColumns = `id, username, password_hash, full_name, email, role, active, build_count, last_build_at, created_at, version`

func scanCoach(row rowScanner) (*domain.Coach, error) {
	coach := &domain.Coach{}

	dst := []any{
		&coach.ID, &coach.Username, &coach.PasswordHash, &coach.FullName, &coach.Email, &coach.Role,
		&coach.Active, &coach.BuildCount, &coach.LastBuildAt, &coach.CreatedAt, &coach.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	return coach, nil
}

func (r *Repository) GetCoachByID(id int64) (*domain.Coach, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	return scanCoach(r.dbpool.QueryRowContext(ctx, `SELECT `+coachColumns+` FROM coaches WHERE id = $1`, id))
}

func (r *Repository) GetCoachByUsername(username string) (*domain.Coach, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	return scanCoach(r.dbpool.QueryRowContext(ctx, `SELECT `+coachColumns+` FROM coaches WHERE username = $1`, username))
}

// EmailTaken 判断邮箱是否已被 exceptID 以外的教练使用，新建教练时 exceptID 传 0
func (r *Repository) EmailTaken(email string, exceptID int64) (bool, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	var taken bool
	query := `SELECT EXISTS (SELECT 1 FROM coaches WHERE email = $1 AND id <> $2)`
	if err := r.dbpool.QueryRowContext(ctx, query, email, exceptID).Scan(&taken); err != nil {
		return false, err
	}

	return taken, nil
}

func (r *Repository) CreateCoach(coach *domain.Coach) error {
	query := `
		INSERT INTO coaches (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, active, build_count, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{coach.Username, coach.PasswordHash, coach.FullName, coach.Email, coach.Role}
	dst := []any{&coach.ID, &coach.Active, &coach.BuildCount, &coach.CreatedAt, &coach.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...)
}

// UpdateCoach 使用 version 做乐观锁，版本不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateCoach(coach *domain.Coach) error {
	query := `
		UPDATE coaches
		SET password_hash = $1, full_name = $2, email = $3, role = $4, active = $5, version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{coach.PasswordHash, coach.FullName, coach.Email, coach.Role, coach.Active, coach.ID, coach.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&coach.Version)
}

func (r *Repository) DeleteCoach(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM coaches WHERE id = $1`, id)
	return err
}

// RecordBuild 记录一次分队，不修改 version，避免和资料修改互相冲突
func (r *Repository) RecordBuild(id int64, at time.Time) error {
	query := `UPDATE coaches SET build_count = build_count + 1, last_build_at = $2 WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id, at)
	return err
}
