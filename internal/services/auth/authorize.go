package auth

import (
	"slices"

	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// Authorize — единственная проверка прав. Вызывается в начале каждой защищённой операции.
// Без ролей достаточно любой аутентификации, иначе роль субъекта должна входить в набор.
func Authorize(p models.Principal, roles ...models.Role) error {
	if p.UserID == "" {
		return models.ErrInvalidToken
	}
	if len(roles) == 0 || slices.Contains(roles, p.Role) {
		return nil
	}
	return models.ErrForbidden
}
