package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiosk-service/internal/model"
)

func TestOptionGroupCreateWithOptions(t *testing.T) {
	e, _ := newTestServer(t)
	token, _ := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	group := createOptionGroup(t, e, token, "Size",
		map[string]interface{}{"name": "Small", "price": 0},
		map[string]interface{}{"name": "Large", "price": 1000})

	require.Len(t, group.Options, 2)
	assert.Equal(t, "Size", group.Name)
	assert.Equal(t, int64(1000), group.Options[1].Price)

	rec := doJSON(e, http.MethodGet, "/api/option-groups", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []model.OptionGroup
	decodeJSON(t, rec, &groups)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Options, 2)
}

func TestOptionGroupCreateValidation(t *testing.T) {
	e, _ := newTestServer(t)
	token, _ := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	rec := doJSON(e, http.MethodPost, "/api/option-groups", token, map[string]interface{}{
		"options": []map[string]interface{}{{"name": "Large", "price": 1000}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/option-groups", token, map[string]interface{}{
		"name":    "Size",
		"options": []map[string]interface{}{{"name": "Large", "price": -100}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptionGroupUpdateRenamesOnly(t *testing.T) {
	e, db := newTestServer(t)
	token, _ := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	group := createOptionGroup(t, e, token, "Size",
		map[string]interface{}{"name": "Large", "price": 1000})

	rec := doJSON(e, http.MethodPut, fmt.Sprintf("/api/option-groups/%d", group.ID), token, map[string]interface{}{
		"name": "Cup Size",
		// The options list is fixed at creation; extra fields are ignored
		"options": []map[string]interface{}{{"name": "Venti", "price": 2000}},
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var stored model.OptionGroup
	require.NoError(t, db.Preload("Options").First(&stored, group.ID).Error)
	assert.Equal(t, "Cup Size", stored.Name)
	require.Len(t, stored.Options, 1)
	assert.Equal(t, "Large", stored.Options[0].Name)
}

func TestOptionGroupLinkedToProductCannotBeDeleted(t *testing.T) {
	e, db := newTestServer(t)
	token, _ := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	group := createOptionGroup(t, e, token, "Size",
		map[string]interface{}{"name": "Large", "price": 1000})
	createProduct(t, e, token, map[string]interface{}{
		"name":           "Americano",
		"price":          5000,
		"stock":          10,
		"optionGroupIds": []uint{group.ID},
	})

	rec := doJSON(e, http.MethodDelete, fmt.Sprintf("/api/option-groups/%d", group.ID), token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var stored model.OptionGroup
	require.NoError(t, db.First(&stored, group.ID).Error)
}

func TestOptionGroupUnlinkedDeleteSucceeds(t *testing.T) {
	e, _ := newTestServer(t)
	token, _ := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	group := createOptionGroup(t, e, token, "Size",
		map[string]interface{}{"name": "Large", "price": 1000})

	rec := doJSON(e, http.MethodDelete, fmt.Sprintf("/api/option-groups/%d", group.ID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/option-groups", token, nil)
	var groups []model.OptionGroup
	decodeJSON(t, rec, &groups)
	assert.Empty(t, groups)
}

func TestOptionGroupOwnershipIsEnforced(t *testing.T) {
	e, _ := newTestServer(t)
	token, _ := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")
	otherToken, _ := registerStore(t, e, "rival@cafe.kr", "Rival Cafe")

	group := createOptionGroup(t, e, token, "Size",
		map[string]interface{}{"name": "Large", "price": 1000})

	rec := doJSON(e, http.MethodPut, fmt.Sprintf("/api/option-groups/%d", group.ID), otherToken, map[string]string{
		"name": "Hijacked",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/api/option-groups/%d", group.ID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
