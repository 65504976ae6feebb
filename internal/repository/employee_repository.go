package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fileflow/internal/domain"
)

// ErrEmployeeNotFound is returned when no employee matches an id.
var ErrEmployeeNotFound = errors.New("employee not found")

// employeeColumns maps validated field names onto table columns. Duplicate
// lookups build their WHERE clause from this map, so only mapped names can
// ever reach the SQL text.
var employeeColumns = map[string]string{
	"id":         "id",
	"firstName":  "first_name",
	"lastName":   "last_name",
	"position":   "position",
	"department": "department",
	"hireDate":   "hire_date",
	"salary":     "salary",
}

// employeeRepository implements EmployeeRepository on Postgres.
type employeeRepository struct {
	pool *pgxpool.Pool
}

func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

func (r *employeeRepository) Upsert(ctx context.Context, employee domain.Employee) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO employees (id, first_name, last_name, position, department, hire_date, salary)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			position   = EXCLUDED.position,
			department = EXCLUDED.department,
			hire_date  = EXCLUDED.hire_date,
			salary     = EXCLUDED.salary,
			updated_at = now()`,
		employee.ID, employee.FirstName, employee.LastName,
		employee.Position, employee.Department, employee.HireDate, employee.Salary)
	if err != nil {
		return fmt.Errorf("failed to upsert employee: %w", err)
	}
	return nil
}

// ExistsByFields reports whether a row matches every given field value.
// Field names follow the schema mapping (camelCase); unknown names are an
// error rather than a silent non-match.
func (r *employeeRepository) ExistsByFields(ctx context.Context, fields map[string]any) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}
	conds, args, err := employeeConditions(fields)
	if err != nil {
		return false, err
	}

	var exists bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM employees WHERE `+strings.Join(conds, " AND ")+`)`,
		args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check employee existence: %w", err)
	}
	return exists, nil
}

// employeeConditions builds the WHERE conjunction for a duplicate lookup.
// Nil values compare with IS NULL; salary binds through a numeric cast since
// its validated value travels as a string.
func employeeConditions(fields map[string]any) ([]string, []any, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var conds []string
	var args []any
	for _, name := range names {
		column, ok := employeeColumns[name]
		if !ok {
			return nil, nil, fmt.Errorf("unknown employee field: %s", name)
		}
		if fields[name] == nil {
			conds = append(conds, column+" IS NULL")
			continue
		}
		args = append(args, fields[name])
		if name == "salary" {
			conds = append(conds, fmt.Sprintf("%s = $%d::numeric", column, len(args)))
			continue
		}
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	return conds, args, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (domain.Employee, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, position, department, hire_date, salary::text
		FROM employees WHERE id = $1`, id)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Employee{}, fmt.Errorf("%w: %d", ErrEmployeeNotFound, id)
	}
	if err != nil {
		return domain.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func (r *employeeRepository) List(ctx context.Context, limit, offset int) ([]domain.Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, first_name, last_name, position, department, hire_date, salary::text
		FROM employees ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (r *employeeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrEmployeeNotFound, id)
	}
	return nil
}

func (r *employeeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}

func scanEmployee(row pgx.Row) (domain.Employee, error) {
	var emp domain.Employee
	err := row.Scan(&emp.ID, &emp.FirstName, &emp.LastName,
		&emp.Position, &emp.Department, &emp.HireDate, &emp.Salary)
	if err != nil {
		return domain.Employee{}, err
	}
	return emp, nil
}
