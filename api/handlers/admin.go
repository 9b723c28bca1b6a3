package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/api"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/config"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/databases"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

// Admin handles dashboard administrator accounts
type Admin struct {
	DB databases.AdminDatabase
}

type createAdminRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// AdminsHandler lists admins ordered by email, one page at a time (?limit=&page=, 1-based)
func (h Admin) AdminsHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	page := queryInt(r, "page", 1)
	opts := databases.PageOptions(limit, page).SetSort(bson.D{{Key: "email", Value: 1}})
	admins, err := h.DB.Find(r.Context(), bson.M{}, opts)
	if err != nil {
		config.ErrorStatus("failed to fetch admin users", http.StatusInternalServerError, w, err)
		return
	}
	if admins == nil {
		admins = []models.AdminUser{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"admins": admins,
		"total":  len(admins),
		"page":   page,
	})
}

// CreateAdminHandler registers a new admin. Only owners may create admins.
func (h Admin) CreateAdminHandler(w http.ResponseWriter, r *http.Request) {
	current, err := h.DB.FindOne(r.Context(), bson.M{"email": api.AdminEmail(r)})
	if err != nil || !canCreateAdmins(current) {
		config.ErrorStatus("insufficient permissions to create admin users", http.StatusForbidden, w, err)
		return
	}

	var req createAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !isValidEmail(req.Email) || len(req.Password) < 8 {
		config.ErrorStatus("a valid email and a password of at least 8 characters are required", http.StatusBadRequest, w, nil)
		return
	}

	admin, err := databases.CreateAdmin(r.Context(), h.DB, req.Email, req.Name, req.Password, req.Roles)
	if errors.Is(err, databases.ErrAdminExists) {
		config.ErrorStatus("user with this email already exists", http.StatusConflict, w, err)
		return
	}
	if err != nil {
		config.ErrorStatus("failed to create admin user", http.StatusInternalServerError, w, err)
		return
	}
	zap.S().Infow("admin created", "email", admin.Email, "by", current.Email)
	writeJSON(w, http.StatusCreated, admin)
}

// canCreateAdmins checks if the current admin has the owner role
func canCreateAdmins(currentUser *models.AdminUser) bool {
	if currentUser == nil || !currentUser.Active {
		return false
	}
	for _, role := range currentUser.Roles {
		if role == "owner" {
			return true
		}
	}
	return false
}

func isValidEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at:], ".")
}

// queryInt reads an integer query parameter, falling back to def when it is absent or invalid
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		zap.S().Warnw("ignoring invalid query parameter", "name", name, "value", v)
		return def
	}
	return n
}
