package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// MockUserLoader is a mock implementation of UserLoader
type MockUserLoader struct {
	mock.Mock
}

func (m *MockUserLoader) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestAuthMiddleware_LoadUser(t *testing.T) {
	tests := []struct {
		name          string
		sessionValues map[interface{}]interface{}
		mockSetup     func(*MockUserLoader)
		expectedUser  *models.User
	}{
		{
			name:          "no session",
			sessionValues: map[interface{}]interface{}{},
			mockSetup:     func(m *MockUserLoader) {},
			expectedUser:  nil,
		},
		{
			name:          "valid session",
			sessionValues: map[interface{}]interface{}{"user_id": 1},
			mockSetup: func(m *MockUserLoader) {
				user := &models.User{
					ID:        1,
					Email:     "test@example.com",
					FirstName: "Test",
					LastName:  "User",
					Role:      models.RoleUser,
					IsActive:  true,
				}
				m.On("GetUserByID", mock.Anything, 1).Return(user, nil)
			},
			expectedUser: &models.User{
				ID:    1,
				Email: "test@example.com",
			},
		},
		{
			name:          "deactivated user",
			sessionValues: map[interface{}]interface{}{"user_id": 2},
			mockSetup: func(m *MockUserLoader) {
				user := &models.User{ID: 2, Email: "gone@example.com", IsActive: false}
				m.On("GetUserByID", mock.Anything, 2).Return(user, nil)
			},
			expectedUser: nil,
		},
		{
			name:          "stale user id",
			sessionValues: map[interface{}]interface{}{"user_id": 99},
			mockSetup: func(m *MockUserLoader) {
				m.On("GetUserByID", mock.Anything, 99).Return(nil, models.ErrUserNotFound)
			},
			expectedUser: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserLoader)
			tt.mockSetup(mockUsers)

			store := sessions.NewCookieStore([]byte("test-key"))
			authMiddleware := NewAuthMiddleware(mockUsers, store)

			var capturedUser *models.User
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedUser = GetUserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/test", nil)
			rr := httptest.NewRecorder()

			session, _ := store.Get(req, SessionName)
			for key, value := range tt.sessionValues {
				session.Values[key] = value
			}
			session.Save(req, rr)

			authMiddleware.LoadUser(handler).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			if tt.expectedUser != nil {
				assert.NotNil(t, capturedUser)
				assert.Equal(t, tt.expectedUser.ID, capturedUser.ID)
				assert.Equal(t, tt.expectedUser.Email, capturedUser.Email)
			} else {
				assert.Nil(t, capturedUser)
			}

			mockUsers.AssertExpectations(t)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name           string
		user           *models.User
		expectedStatus int
	}{
		{
			name:           "authenticated user",
			user:           &models.User{ID: 1, Email: "test@example.com"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unauthenticated user",
			user:           nil,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.user != nil {
				req = req.WithContext(SetUserContext(req.Context(), tt.user))
			}

			rr := httptest.NewRecorder()
			RequireAuth(handler).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus != http.StatusOK {
				assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name           string
		user           *models.User
		requiredRole   models.UserRole
		expectedStatus int
	}{
		{
			name:           "user has required role",
			user:           &models.User{ID: 1, Role: models.RoleOrganizer},
			requiredRole:   models.RoleOrganizer,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "admin can access any role",
			user:           &models.User{ID: 1, Role: models.RoleAdmin},
			requiredRole:   models.RoleOrganizer,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "user lacks required role",
			user:           &models.User{ID: 1, Role: models.RoleUser},
			requiredRole:   models.RoleOrganizer,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "no user",
			user:           nil,
			requiredRole:   models.RoleOrganizer,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.user != nil {
				req = req.WithContext(SetUserContext(req.Context(), tt.user))
			}

			rr := httptest.NewRecorder()
			RequireRole(tt.requiredRole)(handler).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestGetUserFromContext(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected *models.User
	}{
		{
			name:     "no user in context",
			ctx:      context.Background(),
			expected: nil,
		},
		{
			name: "user in context",
			ctx: context.WithValue(context.Background(), UserContextKey, &models.User{
				ID:    1,
				Email: "test@example.com",
			}),
			expected: &models.User{
				ID:    1,
				Email: "test@example.com",
			},
		},
		{
			name:     "wrong type in context",
			ctx:      context.WithValue(context.Background(), UserContextKey, "not-a-user"),
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetUserFromContext(tt.ctx)
			if tt.expected == nil {
				assert.Nil(t, result)
			} else {
				assert.NotNil(t, result)
				assert.Equal(t, tt.expected.ID, result.ID)
				assert.Equal(t, tt.expected.Email, result.Email)
			}
		})
	}
}
