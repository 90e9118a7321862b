package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiosk-service/internal/model"
)

func createCategory(t *testing.T, e *echo.Echo, token, name string) model.Category {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/categories", token, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	var category model.Category
	decodeJSON(t, rec, &category)
	return category
}

func createOptionGroup(t *testing.T, e *echo.Echo, token, name string, options ...map[string]interface{}) model.OptionGroup {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/option-groups", token, map[string]interface{}{
		"name":    name,
		"options": options,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	var group model.OptionGroup
	decodeJSON(t, rec, &group)
	return group
}

func createProduct(t *testing.T, e *echo.Echo, token string, body map[string]interface{}) model.Product {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/products", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	var product model.Product
	decodeJSON(t, rec, &product)
	return product
}

func TestProductDetailRoundTripsOptionGroups(t *testing.T) {
	e, _ := newTestServer(t)
	token, _ := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	groupA := createOptionGroup(t, e, token, "Size",
		map[string]interface{}{"name": "Large", "price": 1000})
	groupB := createOptionGroup(t, e, token, "Shots",
		map[string]interface{}{"name": "Extra Shot", "price": 500},
		map[string]interface{}{"name": "Decaf", "price": 0})
	// A third group that must not show up on the product
	createOptionGroup(t, e, token, "Toppings",
		map[string]interface{}{"name": "Whipped Cream", "price": 700})

	category := createCategory(t, e, token, "Coffee")
	product := createProduct(t, e, token, map[string]interface{}{
		"name":           "Americano",
		"description":    "Iced",
		"price":          5000,
		"stock":          10,
		"categoryId":     category.ID,
		"optionGroupIds": []uint{groupA.ID, groupB.ID},
	})

	rec := doJSON(e, http.MethodGet, fmt.Sprintf("/api/products/detail/%d", product.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var detail model.Product
	decodeJSON(t, rec, &detail)
	require.Len(t, detail.OptionGroups, 2)

	byName := map[string]model.OptionGroup{}
	for _, group := range detail.OptionGroups {
		byName[group.Name] = group
	}
	require.Contains(t, byName, "Size")
	require.Contains(t, byName, "Shots")
	assert.Len(t, byName["Size"].Options, 1)
	assert.Len(t, byName["Shots"].Options, 2)
	assert.Equal(t, int64(1000), byName["Size"].Options[0].Price)
	require.NotNil(t, detail.CategoryID)
	assert.Equal(t, category.ID, *detail.CategoryID)
}

func TestProductCreateValidation(t *testing.T) {
	e, _ := newTestServer(t)
	token, _ := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"price": 1000, "stock": 1}},
		{"negative price", map[string]interface{}{"name": "Latte", "price": -1, "stock": 1}},
		{"negative stock", map[string]interface{}{"name": "Latte", "price": 1000, "stock": -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/products", token, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestProductCreateRejectsForeignReferences(t *testing.T) {
	e, _ := newTestServer(t)
	token, _ := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")
	otherToken, _ := registerStore(t, e, "rival@cafe.kr", "Rival Cafe")

	foreignCategory := createCategory(t, e, otherToken, "Rival Coffee")
	foreignGroup := createOptionGroup(t, e, otherToken, "Rival Size",
		map[string]interface{}{"name": "Large", "price": 1000})

	rec := doJSON(e, http.MethodPost, "/api/products", token, map[string]interface{}{
		"name":       "Latte",
		"price":      4000,
		"stock":      5,
		"categoryId": foreignCategory.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/products", token, map[string]interface{}{
		"name":           "Latte",
		"price":          4000,
		"stock":          5,
		"optionGroupIds": []uint{foreignGroup.ID},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductUpdateReplacesOptionGroupLinks(t *testing.T) {
	e, db := newTestServer(t)
	token, _ := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	groupA := createOptionGroup(t, e, token, "Size",
		map[string]interface{}{"name": "Large", "price": 1000})
	groupB := createOptionGroup(t, e, token, "Shots",
		map[string]interface{}{"name": "Extra Shot", "price": 500})

	product := createProduct(t, e, token, map[string]interface{}{
		"name":           "Americano",
		"price":          5000,
		"stock":          10,
		"optionGroupIds": []uint{groupA.ID},
	})

	rec := doJSON(e, http.MethodPut, fmt.Sprintf("/api/products/%d", product.ID), token, map[string]interface{}{
		"name":           "Americano",
		"price":          5500,
		"stock":          8,
		"optionGroupIds": []uint{groupB.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var links []model.ProductOptionGroup
	require.NoError(t, db.Where("product_id = ?", product.ID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, groupB.ID, links[0].OptionGroupID)

	var updated model.Product
	require.NoError(t, db.First(&updated, product.ID).Error)
	assert.Equal(t, int64(5500), updated.Price)
	assert.Equal(t, 8, updated.Stock)
}

func TestProductOwnershipIsEnforced(t *testing.T) {
	e, _ := newTestServer(t)
	token, _ := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")
	otherToken, _ := registerStore(t, e, "rival@cafe.kr", "Rival Cafe")

	product := createProduct(t, e, token, map[string]interface{}{
		"name":  "Americano",
		"price": 5000,
		"stock": 10,
	})

	target := fmt.Sprintf("/api/products/detail/%d", product.ID)
	rec := doJSON(e, http.MethodGet, target, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/api/products/%d", product.ID), otherToken, map[string]interface{}{
		"name":  "Hijacked",
		"price": 1,
		"stock": 1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/api/products/%d", product.ID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProductDeleteRemovesLinks(t *testing.T) {
	e, db := newTestServer(t)
	token, _ := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	group := createOptionGroup(t, e, token, "Size",
		map[string]interface{}{"name": "Large", "price": 1000})
	product := createProduct(t, e, token, map[string]interface{}{
		"name":           "Americano",
		"price":          5000,
		"stock":          10,
		"optionGroupIds": []uint{group.ID},
	})

	rec := doJSON(e, http.MethodDelete, fmt.Sprintf("/api/products/%d", product.ID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var linkCount int64
	require.NoError(t, db.Model(&model.ProductOptionGroup{}).
		Where("product_id = ?", product.ID).Count(&linkCount).Error)
	assert.Zero(t, linkCount)

	rec = doJSON(e, http.MethodGet, "/api/products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []model.Product
	decodeJSON(t, rec, &listed)
	assert.Empty(t, listed)
}

func TestKioskProductListingIsPublicAndScoped(t *testing.T) {
	e, _ := newTestServer(t)
	token, storeID := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")
	otherToken, otherStoreID := registerStore(t, e, "rival@cafe.kr", "Rival Cafe")

	group := createOptionGroup(t, e, token, "Size",
		map[string]interface{}{"name": "Large", "price": 1000})
	createProduct(t, e, token, map[string]interface{}{
		"name":           "Americano",
		"price":          5000,
		"stock":          10,
		"optionGroupIds": []uint{group.ID},
	})
	createProduct(t, e, otherToken, map[string]interface{}{
		"name":  "Rival Latte",
		"price": 4000,
		"stock": 3,
	})

	rec := doJSON(e, http.MethodGet, "/api/products/"+storeID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []model.Product
	decodeJSON(t, rec, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Americano", products[0].Name)
	require.Len(t, products[0].OptionGroups, 1)
	assert.Len(t, products[0].OptionGroups[0].Options, 1)

	rec = doJSON(e, http.MethodGet, "/api/products/"+otherStoreID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Rival Latte", products[0].Name)
}
