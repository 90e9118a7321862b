package handler_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiosk-service/internal/model"
)

func TestKioskOrderSubmission(t *testing.T) {
	e, db := newTestServer(t)
	token, storeID := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")

	group := createOptionGroup(t, e, token, "Size",
		map[string]interface{}{"name": "Large", "price": 1000})
	product := createProduct(t, e, token, map[string]interface{}{
		"name":           "Americano",
		"price":          5000,
		"stock":          3,
		"optionGroupIds": []uint{group.ID},
	})

	rec := doJSON(e, http.MethodPost, "/api/orders", "", map[string]interface{}{
		"storeId": storeID,
		"items": []map[string]interface{}{{
			"productId": product.ID,
			"quantity":  2,
			"selectedOptions": map[string]interface{}{
				fmt.Sprintf("%d", group.ID): map[string]interface{}{"optionId": group.Options[0].ID},
			},
		}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var placed model.Order
	decodeJSON(t, rec, &placed)
	assert.Equal(t, int64(12000), placed.TotalAmount)
	require.Len(t, placed.Items, 1)
	assert.Equal(t, int64(6000), placed.Items[0].PricePerItem)

	var stored model.Product
	require.NoError(t, db.First(&stored, product.ID).Error)
	assert.Equal(t, 1, stored.Stock)
}

func TestKioskOrderRejections(t *testing.T) {
	e, db := newTestServer(t)
	token, storeID := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")
	product := createProduct(t, e, token, map[string]interface{}{
		"name":  "Americano",
		"price": 5000,
		"stock": 1,
	})

	// Empty submission
	rec := doJSON(e, http.MethodPost, "/api/orders", "", map[string]interface{}{
		"storeId": storeID,
		"items":   []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown product
	rec = doJSON(e, http.MethodPost, "/api/orders", "", map[string]interface{}{
		"storeId": storeID,
		"items":   []map[string]interface{}{{"productId": 99999, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Insufficient stock, with the product name in the message
	rec = doJSON(e, http.MethodPost, "/api/orders", "", map[string]interface{}{
		"storeId": storeID,
		"items":   []map[string]interface{}{{"productId": product.ID, "quantity": 5}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Americano")

	// Nothing was written
	var orderCount int64
	require.NoError(t, db.Model(&model.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
	var stored model.Product
	require.NoError(t, db.First(&stored, product.ID).Error)
	assert.Equal(t, 1, stored.Stock)
}

func TestAdminOrderHistory(t *testing.T) {
	e, db := newTestServer(t)
	token, storeID := registerStore(t, e, "owner@cafe.kr", "Morning Cafe")
	product := createProduct(t, e, token, map[string]interface{}{
		"name":  "Americano",
		"price": 5000,
		"stock": 100,
	})

	for i := 0; i < 3; i++ {
		rec := doJSON(e, http.MethodPost, "/api/orders", "", map[string]interface{}{
			"storeId": storeID,
			"items":   []map[string]interface{}{{"productId": product.ID, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(e, http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []model.Order
	decodeJSON(t, rec, &orders)
	require.Len(t, orders, 3)

	// Detail includes the item snapshots and the product
	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/api/orders/%d", orders[0].ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	var detail model.Order
	decodeJSON(t, rec, &detail)
	require.Len(t, detail.Items, 1)
	require.NotNil(t, detail.Items[0].Product)
	assert.Equal(t, "Americano", detail.Items[0].Product.Name)

	// Orders of other stores are invisible
	otherToken, _ := registerStore(t, e, "rival@cafe.kr", "Rival Cafe")
	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/api/orders/%d", orders[0].ID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// A backdated order falls out of the date-range filter
	yesterday := time.Now().AddDate(0, 0, -2)
	require.NoError(t, db.Model(&model.Order{}).Where("id = ?", orders[0].ID).
		UpdateColumn("created_at", yesterday).Error)

	today := time.Now().Format("2006-01-02")
	rec = doJSON(e, http.MethodGet, "/api/orders?from="+today, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &orders)
	assert.Len(t, orders, 2)

	rec = doJSON(e, http.MethodGet, "/api/orders?from=not-a-date", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
