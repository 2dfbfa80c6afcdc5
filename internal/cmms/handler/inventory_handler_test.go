package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/testutil"
)

func TestInventoryCreateAndAdjust(t *testing.T) {
	router, _ := setupCMMSTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/cmms/inventory", map[string]interface{}{
		"part_number":   "FLT-100",
		"name":          "Air filter",
		"quantity":      4,
		"unit_cost":     8.75,
		"reorder_level": 2,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	item := testutil.ParseResponse(w)["data"].(map[string]interface{})
	itemID := item["id"].(string)

	// 正向调整
	w = testutil.DoRequest(router, "POST", "/api/v1/cmms/inventory/"+itemID+"/adjust",
		map[string]interface{}{"delta": 6, "notes": "restock"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	adjusted := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if adjusted["quantity"] != float64(10) {
		t.Errorf("Expected quantity 10, got %v", adjusted["quantity"])
	}

	// 不允许调成负库存
	w = testutil.DoRequest(router, "POST", "/api/v1/cmms/inventory/"+itemID+"/adjust",
		map[string]interface{}{"delta": -11}, token)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for overdraw, got %d: %s", w.Code, w.Body.String())
	}

	// 流水应只记成功的那次调整
	w = testutil.DoRequest(router, "GET", "/api/v1/cmms/inventory/"+itemID+"/transactions", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(items))
	}
	tx := items[0].(map[string]interface{})
	if tx["transaction_type"] != "ADJUSTMENT" {
		t.Errorf("Expected ADJUSTMENT, got %v", tx["transaction_type"])
	}
}

func TestInventoryAdjustNotFound(t *testing.T) {
	router, _ := setupCMMSTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/cmms/inventory/no-such-item/adjust",
		map[string]interface{}{"delta": 1}, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
