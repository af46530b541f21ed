package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/pizzeria/database"
	"github.com/ray-remotestate/pizzeria/database/dbhelper"
	"github.com/ray-remotestate/pizzeria/middlewares"
	"github.com/ray-remotestate/pizzeria/models"
	"github.com/ray-remotestate/pizzeria/utils"
)

const refreshCookie = "refresh_token"

func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Now().Add(utils.RefreshTokenTTL),
	})
}

func Login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}

	userID, name, err := dbhelper.GetUserByPassword(req.Email, req.Password)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	} else if err != nil {
		logrus.WithError(err).Error("failed to look up user")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	roles, err := dbhelper.GetUserRoles(userID)
	if err != nil {
		logrus.WithError(err).Error("failed to fetch roles")
		http.Error(w, "could not fetch roles", http.StatusInternalServerError)
		return
	}
	if len(roles) == 0 {
		http.Error(w, "no roles assigned", http.StatusForbidden)
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(userID, roles)
	if err != nil {
		http.Error(w, "failed to generate tokens", http.StatusInternalServerError)
		return
	}
	setRefreshCookie(w, refreshToken)

	logrus.WithField("user_id", userID).Info("staff logged in")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":      userID,
		"name":         name,
		"email":        req.Email,
		"access_token": accessToken,
		"roles":        roles,
		"message":      "Successfully logged in",
	})
}

// RefreshToken rotates the refresh cookie. Roles are read again so a role
// change takes effect at the next refresh.
func RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil {
		http.Error(w, "Refresh token missing", http.StatusUnauthorized)
		return
	}

	userID, err := utils.ParseRefreshToken(cookie.Value)
	if err != nil {
		http.Error(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		return
	}

	roles, err := dbhelper.GetUserRoles(userID)
	if err != nil {
		http.Error(w, "could not fetch roles", http.StatusInternalServerError)
		return
	}
	if len(roles) == 0 {
		http.Error(w, "no roles assigned", http.StatusForbidden)
		return
	}

	newAccessToken, newRefreshToken, err := utils.GenerateTokens(userID, roles)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	setRefreshCookie(w, newRefreshToken)

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": newAccessToken,
	})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully logged out",
	})
}

func CreateStaff(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}

	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Role == "" {
		req.Role = models.RoleStaff
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "name, email and password are required", http.StatusBadRequest)
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		http.Error(w, "invalid email", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}
	if !req.Role.IsValid() {
		http.Error(w, "role must be admin or staff", http.StatusBadRequest)
		return
	}

	exists, err := dbhelper.IsUserExists(req.Email)
	if err != nil {
		http.Error(w, "failed to check user existence", http.StatusInternalServerError)
		return
	}
	if exists {
		http.Error(w, "user already exists", http.StatusConflict)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	var userID uuid.UUID
	txErr := database.Tx(database.Pizzeria, func(tx *sql.Tx) error {
		userID, err = dbhelper.CreateUser(tx, req.Name, req.Email, hashedPassword, claims.UserID)
		if err != nil {
			return err
		}
		return dbhelper.AssignRole(tx, userID, req.Role)
	})
	if txErr != nil {
		logrus.WithError(txErr).Error("failed to create staff account")
		http.Error(w, "failed to create staff account", http.StatusInternalServerError)
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "role": req.Role, "created_by": claims.UserID}).Info("staff account created")
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Staff account created",
		"user_id": userID.String(),
	})
}

func ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := dbhelper.ListStaff()
	if err != nil {
		logrus.WithError(err).Error("failed to list staff")
		http.Error(w, "Failed to query staff", http.StatusInternalServerError)
		return
	}
	if staff == nil {
		staff = []models.User{}
	}
	writeJSON(w, http.StatusOK, staff)
}
