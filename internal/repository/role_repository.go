package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"blogsite/internal/models"
)

type roleRepository struct {
	db *sqlx.DB
}

func NewRoleRepository(db *sqlx.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) GetByID(ctx context.Context, roleID int) (*models.Role, error) {
	var role models.Role

	query := `SELECT * FROM roles WHERE role_id = $1`

	err := r.db.GetContext(ctx, &role, query, roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("роль с ID %d не найдена", roleID)
		}
		return nil, fmt.Errorf("ошибка при получении роли: %w", err)
	}

	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role

	query := `SELECT * FROM roles ORDER BY role_id`

	err := r.db.SelectContext(ctx, &roles, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении ролей: %w", err)
	}

	return roles, nil
}

// UpdatePermissions сохраняет изменённую битовую маску роли.
// Сами изменения маски делаются через internal/permission.
func (r *roleRepository) UpdatePermissions(ctx context.Context, role *models.Role) error {
	query := `UPDATE roles SET permissions = $1 WHERE role_id = $2`

	result, err := r.db.ExecContext(ctx, query, role.Permissions, role.RoleID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении роли: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("роль с ID %d не найдена", role.RoleID)
	}

	return nil
}
