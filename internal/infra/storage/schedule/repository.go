package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/KerelosNasser/driving-school-sub004/internal/domain"
	"github.com/KerelosNasser/driving-school-sub004/pkg/psqlbuilder"
	"github.com/KerelosNasser/driving-school-sub004/pkg/txmanager"
)

// DBExecutor интерфейс для работы с БД
type DBExecutor = txmanager.DBExecutor

// Repository репозиторий настроек расписания: ограничения, рабочие часы,
// дни отпуска
//
// Ограничения хранятся единственной строкой (школа работает с одним
// инструктором), рабочие часы - по строке на день недели
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetConstraints получает ограничения планирования
// Если строка отсутствует, возвращает ErrConstraintsNotFound -
// дефолты подставляет сервисный слой
func (r *Repository) GetConstraints(ctx context.Context) (*domain.SchedulingConstraints, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"max_hours_per_day",
		"max_lessons_per_day",
		"max_hours_per_week",
		"max_lessons_per_week",
		"earliest_start_time",
		"latest_end_time",
		"min_buffer_minutes",
		"updated_at",
	).
		From("scheduling_constraints").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetConstraints - build select query: %v", ErrBuildQuery, err)
	}

	var constraints domain.SchedulingConstraints
	var updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&constraints.MaxHoursPerDay,
		&constraints.MaxLessonsPerDay,
		&constraints.MaxHoursPerWeek,
		&constraints.MaxLessonsPerWeek,
		&constraints.EarliestStartTime,
		&constraints.LatestEndTime,
		&constraints.MinBufferBetweenLessons,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrConstraintsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetConstraints - scan row: %v", ErrScanRow, err)
	}

	constraints.UpdatedAt = updatedAt.Time

	return &constraints, nil
}

// UpdateConstraints частично обновляет ограничения планирования
// Меняются только переданные (не-nil) поля
func (r *Repository) UpdateConstraints(ctx context.Context, update domain.ConstraintsUpdate) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("scheduling_constraints").
		Set("updated_at", squirrel.Expr("NOW()"))

	if update.MaxHoursPerDay != nil {
		updateBuilder = updateBuilder.Set("max_hours_per_day", *update.MaxHoursPerDay)
	}
	if update.MaxLessonsPerDay != nil {
		updateBuilder = updateBuilder.Set("max_lessons_per_day", *update.MaxLessonsPerDay)
	}
	if update.MaxHoursPerWeek != nil {
		updateBuilder = updateBuilder.Set("max_hours_per_week", *update.MaxHoursPerWeek)
	}
	if update.MaxLessonsPerWeek != nil {
		updateBuilder = updateBuilder.Set("max_lessons_per_week", *update.MaxLessonsPerWeek)
	}
	if update.EarliestStartTime != nil {
		updateBuilder = updateBuilder.Set("earliest_start_time", *update.EarliestStartTime)
	}
	if update.LatestEndTime != nil {
		updateBuilder = updateBuilder.Set("latest_end_time", *update.LatestEndTime)
	}
	if update.MinBufferBetweenLessons != nil {
		updateBuilder = updateBuilder.Set("min_buffer_minutes", *update.MinBufferBetweenLessons)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateConstraints - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateConstraints - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateConstraints - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrConstraintsNotFound
	}

	return nil
}

// GetWorkingHours получает рабочие часы по всем дням недели
func (r *Repository) GetWorkingHours(ctx context.Context) (domain.WorkingHoursByDay, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"weekday",
		"start_time",
		"end_time",
		"enabled",
	).
		From("working_hours").
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetWorkingHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWorkingHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	hours := make(domain.WorkingHoursByDay)

	for rows.Next() {
		var wh domain.WorkingHours
		var weekday int

		if err := rows.Scan(&weekday, &wh.Start, &wh.End, &wh.Enabled); err != nil {
			return nil, fmt.Errorf("%w: GetWorkingHours - scan row: %v", ErrScanRow, err)
		}

		wh.Weekday = time.Weekday(weekday)
		hours[wh.Weekday] = wh
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWorkingHours - rows error: %v", ErrScanRow, err)
	}

	return hours, nil
}

// UpsertWorkingHours создает или обновляет рабочие часы на день недели
func (r *Repository) UpsertWorkingHours(ctx context.Context, wh domain.WorkingHours) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("working_hours").
		Columns("weekday", "start_time", "end_time", "enabled").
		Values(int(wh.Weekday), wh.Start, wh.End, wh.Enabled).
		Suffix(`ON CONFLICT (weekday) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			enabled = EXCLUDED.enabled`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpsertWorkingHours - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertWorkingHours - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetVacationDays получает дни отпуска в диапазоне [from, to]
func (r *Repository) GetVacationDays(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("vacation_date").
		From("vacation_days").
		Where(squirrel.GtOrEq{"vacation_date": from}).
		Where(squirrel.LtOrEq{"vacation_date": to}).
		OrderBy("vacation_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetVacationDays - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetVacationDays - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	days := make([]time.Time, 0)

	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("%w: GetVacationDays - scan row: %v", ErrScanRow, err)
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetVacationDays - rows error: %v", ErrScanRow, err)
	}

	return days, nil
}

// AddVacationDay добавляет день отпуска
// Повторное добавление той же даты не является ошибкой
func (r *Repository) AddVacationDay(ctx context.Context, day time.Time) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("vacation_days").
		Columns("vacation_date").
		Values(day).
		Suffix("ON CONFLICT (vacation_date) DO NOTHING").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AddVacationDay - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddVacationDay - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// RemoveVacationDay удаляет день отпуска
func (r *Repository) RemoveVacationDay(ctx context.Context, day time.Time) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("vacation_days").
		Where(squirrel.Eq{"vacation_date": day}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: RemoveVacationDay - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: RemoveVacationDay - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}
