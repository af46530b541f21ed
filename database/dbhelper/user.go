package dbhelper

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ray-remotestate/pizzeria/database"
	"github.com/ray-remotestate/pizzeria/models"
)

// CreateUser stores a new account. createdBy is uuid.Nil for the seeded admin.
func CreateUser(tx *sql.Tx, name, email, hashedPassword string, createdBy uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(`INSERT INTO users (name, email, password, created_by) VALUES ($1, $2, $3, $4) RETURNING id`,
		name, email, hashedPassword, uuid.NullUUID{UUID: createdBy, Valid: createdBy != uuid.Nil}).Scan(&id)
	return id, err
}

// EnsureAdmin creates the first admin account unless a user with that email
// already exists. It reports whether an account was created.
func EnsureAdmin(name, email, password string) (bool, error) {
	exists, err := IsUserExists(email)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return false, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	err = database.Tx(database.Pizzeria, func(tx *sql.Tx) error {
		id, err := CreateUser(tx, name, email, string(hashed), uuid.Nil)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		return AssignRole(tx, id, models.RoleAdmin)
	})
	return err == nil, err
}

func IsUserExists(email string) (bool, error) {
	var count int
	err := database.Pizzeria.QueryRow(`
		SELECT COUNT(*) FROM users
		WHERE LOWER(email) = LOWER($1) AND archived_at IS NULL`, email).Scan(&count)
	return count > 0, err
}

func AssignRole(tx *sql.Tx, userID uuid.UUID, role models.Role) error {
	_, err := tx.Exec(`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, role)
	return err
}

// GetUserByPassword checks the credentials and returns the user's id and
// name. A wrong password is reported the same way as an unknown email.
func GetUserByPassword(email, password string) (uuid.UUID, string, error) {
	var id uuid.UUID
	var hashedPassword string
	var name string

	err := database.Pizzeria.QueryRow(`
		SELECT id, name, password FROM users
		WHERE LOWER(email) = LOWER($1) AND archived_at IS NULL`, email).
		Scan(&id, &name, &hashedPassword)
	if err != nil {
		return uuid.Nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) != nil {
		return uuid.Nil, "", sql.ErrNoRows
	}

	return id, name, nil
}

func GetUserRoles(userID uuid.UUID) ([]string, error) {
	rows, err := database.Pizzeria.Query(`
		SELECT role FROM user_roles
		WHERE user_id = $1 AND archived_at IS NULL`, userID)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func ListStaff() ([]models.User, error) {
	rows, err := database.Pizzeria.Query(`
		SELECT u.id, u.name, u.email, u.created_at
		FROM users u
		JOIN user_roles ur ON u.id = ur.user_id
		WHERE ur.role = 'staff' AND u.archived_at IS NULL AND ur.archived_at IS NULL
		ORDER BY u.created_at`)
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}
	defer rows.Close()

	var staff []models.User
	for rows.Next() {
		u := models.User{Roles: []models.Role{models.RoleStaff}}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		staff = append(staff, u)
	}
	return staff, rows.Err()
}
