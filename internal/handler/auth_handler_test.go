package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiosk-service/internal/model"
)

func TestRegisterIssuesStableStoreID(t *testing.T) {
	e, db := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     "owner@cafe.kr",
		"password":  "secret-pw",
		"storeName": "Morning Cafe",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var user model.User
	decodeJSON(t, rec, &user)
	assert.Equal(t, "owner@cafe.kr", user.Email)
	assert.Equal(t, "Morning Cafe", user.StoreName)
	assert.NotEmpty(t, user.StoreID)

	// Password hash never leaves the server
	assert.NotContains(t, rec.Body.String(), "secret-pw")
	assert.NotContains(t, rec.Body.String(), "password")

	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, user.StoreID, stored.StoreID)
	assert.NotEqual(t, "secret-pw", stored.Password)
}

func TestRegisterRejectsIncompleteAndDuplicate(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "owner@cafe.kr",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	rec = doJSON(e, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     "owner@cafe.kr",
		"password":  "other-pw",
		"storeName": "Copycat Cafe",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e, _ := newTestServer(t)
	registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	rec := doJSON(e, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "owner@cafe.kr",
		"password": "wrong-pw",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@cafe.kr",
		"password": "secret-pw",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeReturnsStoreInfo(t *testing.T) {
	e, _ := newTestServer(t)
	token, storeID := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	rec := doJSON(e, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var me struct {
		Email     string `json:"email"`
		StoreName string `json:"storeName"`
		StoreID   string `json:"storeId"`
	}
	decodeJSON(t, rec, &me)
	assert.Equal(t, "owner@cafe.kr", me.Email)
	assert.Equal(t, "Morning Cafe", me.StoreName)
	assert.Equal(t, storeID, me.StoreID)
}

func TestMeRequiresToken(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetStoreIsPublic(t *testing.T) {
	e, _ := newTestServer(t)
	_, storeID := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	rec := doJSON(e, http.MethodGet, "/api/store/"+storeID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		StoreName string `json:"storeName"`
	}
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Morning Cafe", resp.StoreName)

	rec = doJSON(e, http.MethodGet, "/api/store/unknown-store", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
