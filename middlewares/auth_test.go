package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/ray-remotestate/pizzeria/config"
	"github.com/ray-remotestate/pizzeria/middlewares"
	"github.com/ray-remotestate/pizzeria/models"
	"github.com/ray-remotestate/pizzeria/utils"
)

func protected(roles ...models.Role) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := middlewares.GetAuthenticatedUser(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write([]byte(claims.UserID.String()))
	})
	return middlewares.AuthMiddleware(middlewares.RoleBasedMiddleware(roles...)(ok))
}

func serve(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	config.SecretKey = []byte("test-secret")
	userID := uuid.New()

	staffToken, err := utils.GenerateAccessToken(userID, []string{"staff"})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	_, refreshToken, err := utils.GenerateTokens(userID, []string{"staff"})
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	tests := []struct {
		name   string
		header string
		roles  []models.Role
		want   int
	}{
		{"missing header", "", []models.Role{models.RoleStaff}, http.StatusUnauthorized},
		{"wrong scheme", "Basic " + staffToken, []models.Role{models.RoleStaff}, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", []models.Role{models.RoleStaff}, http.StatusUnauthorized},
		{"refresh token as access token", "Bearer " + refreshToken, []models.Role{models.RoleStaff}, http.StatusUnauthorized},
		{"staff on staff route", "Bearer " + staffToken, []models.Role{models.RoleAdmin, models.RoleStaff}, http.StatusOK},
		{"staff on admin route", "Bearer " + staffToken, []models.Role{models.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(protected(tt.roles...), tt.header)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d (%s)", tt.want, rec.Code, rec.Body.String())
			}
			if tt.want == http.StatusOK && rec.Body.String() != userID.String() {
				t.Errorf("claims not propagated, got %q", rec.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	config.SecretKey = []byte("one-secret")
	token, err := utils.GenerateAccessToken(uuid.New(), []string{"admin"})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	config.SecretKey = []byte("another-secret")
	if rec := serve(protected(models.RoleAdmin), "Bearer "+token); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a token signed with another key, got %d", rec.Code)
	}
}

func TestClaims_HasRole(t *testing.T) {
	c := &middlewares.Claims{Roles: []string{"Admin"}}
	if !c.HasRole(models.RoleAdmin) {
		t.Error("role match should ignore case")
	}
	if c.HasRole(models.RoleStaff) {
		t.Error("unexpected staff role")
	}
}
