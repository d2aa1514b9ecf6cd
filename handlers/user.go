package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/homeplate/config"
	"github.com/ray-remotestate/homeplate/database"
	"github.com/ray-remotestate/homeplate/database/dbhelper"
	"github.com/ray-remotestate/homeplate/models"
	"github.com/ray-remotestate/homeplate/utils"
)

func Register(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "all fields are required")
		return
	}
	if len(req.Password) < 6 {
		respondError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	// Self-registration covers customers and chefs; admins are provisioned
	// out of band.
	role := models.RoleUser
	if req.Role != "" {
		role = models.Role(req.Role)
		if role != models.RoleUser && role != models.RoleChef {
			respondError(w, http.StatusBadRequest, "role must be user or chef")
			return
		}
	}

	exists, err := dbhelper.IsUserExists(req.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check user existence")
		return
	}
	if exists {
		respondError(w, http.StatusBadRequest, "user already exists")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	var userID uuid.UUID
	var accToken, refToken string
	txErr := database.Tx(func(tx *sql.Tx) error {
		userID, err = dbhelper.CreateUser(tx, req.Name, req.Email, hashedPassword)
		if err != nil {
			logrus.Printf("failed to create user, error: %v", err)
			return err
		}

		if err := dbhelper.AssignRole(tx, userID, role); err != nil {
			logrus.Printf("failed to assign role to the user, error: %v", err)
			return err
		}

		accToken, refToken, err = utils.GenerateTokens(userID, req.Email, []string{string(role)})
		if err != nil {
			logrus.Printf("failed to generate token, error: %v", err)
			return err
		}
		return nil
	})
	if txErr != nil {
		respondError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	setRefreshCookie(w, refToken)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"user_id":       userID,
		"email":         req.Email,
		"name":          req.Name,
		"role":          role,
		"access_token":  accToken,
		"refresh_token": refToken,
	})
}

func Login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	userID, name, err := dbhelper.GetUserByPassword(req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	roles, err := dbhelper.GetRolesByUserID(userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load roles")
		return
	}

	accToken, refToken, err := utils.GenerateTokens(userID, req.Email, roles)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	setRefreshCookie(w, refToken)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":       userID,
		"name":          name,
		"roles":         roles,
		"access_token":  accToken,
		"refresh_token": refToken,
	})
}

func RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		respondError(w, http.StatusUnauthorized, "refresh token missing")
		return
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return config.SecretKey, nil
	})
	if err != nil || !token.Valid {
		respondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid refresh token subject")
		return
	}

	email, _, err := dbhelper.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	roles, err := dbhelper.GetRolesByUserID(userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load roles")
		return
	}

	accToken, refToken, err := utils.GenerateTokens(userID, email, roles)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	setRefreshCookie(w, refToken)
	respondJSON(w, http.StatusOK, map[string]string{
		"access_token":  accToken,
		"refresh_token": refToken,
	})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HttpOnly: true,
	})
}
