package utils

// HasRole сообщает, есть ли роль в списке ролей вызывающего
func HasRole(roleIDs []int64, roleID int64) bool {
	for _, id := range roleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// IsModOrAdmin сообщает, обладает ли вызывающий правами модератора
// или администратора гильдии
func IsModOrAdmin(claims *Claims) bool {
	return claims.Moderator || claims.Admin
}

// CanAccessStorage решает, допущен ли вызывающий к складу: подходит
// роль-владелец склада, роль модератора или администратора либо право
// управления гильдией. Само решение принимается на уровне контроллеров,
// сервисы получают уже авторизованные вызовы.
func CanAccessStorage(claims *Claims, ownerRoleID int64) bool {
	if IsModOrAdmin(claims) || claims.ManageGuild {
		return true
	}
	return HasRole(claims.RoleIDs, ownerRoleID)
}
