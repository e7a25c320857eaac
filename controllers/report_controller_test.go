package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/No9005/mini-moi/models"
)

func TestGetReport(t *testing.T) {
	db := setupControllerTestDB(t)

	// one order booked yesterday evening, delivered today
	order := models.Order{
		CustomerID: 1, ProductID: 1, ProductName: "Baguette", CategoryName: "Brot",
		Quantity: 2, Price: 2.00, Total: 4.00,
		Date: time.Now().UTC().AddDate(0, 0, -1),
	}
	assert.NoError(t, db.Create(&order).Error)

	router := setupTestRouter()
	router.GET("/reports", GetReport)

	req, _ := http.NewRequest(http.MethodGet, "/reports", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	year := data["year"].(map[string]interface{})
	selling := year["selling_overview"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Baguette"}, selling["index"].([]interface{}))
	assert.Equal(t, []interface{}{float64(2)}, selling["values"].([]interface{}))
}
