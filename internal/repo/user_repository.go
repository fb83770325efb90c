package repo

import "github.com/rogerio-castellano/inventory-dashboard/internal/models"

type UserRepository interface {
	GetByUsername(username string) (models.User, error)
	CreateUser(username, passwordHash, role string) (models.User, error)
}
