package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/testutil"
)

func createWorkOrder(t *testing.T, router *gin.Engine, token string, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})
}

func transition(t *testing.T, router *gin.Engine, token, woID, status string) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders/"+woID+"/transition",
		map[string]interface{}{"status": status}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("transition to %s: expected 200, got %d: %s", status, w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})
}

func TestWorkOrderCreate(t *testing.T) {
	router, _ := setupCMMSTest(t)
	token := testutil.DefaultTestToken()

	wo := createWorkOrder(t, router, token, map[string]interface{}{
		"title":    "Replace bearing",
		"asset_id": "asset-001",
		"priority": "high",
	})

	if wo["status"] != "requested" {
		t.Errorf("Expected initial status requested, got %v", wo["status"])
	}
	number, ok := wo["work_order_number"].(string)
	if !ok || len(number) == 0 {
		t.Error("Expected a work order number")
	}
	if wo["schedule_id"] != nil {
		t.Errorf("Manual work order should carry no schedule reference, got %v", wo["schedule_id"])
	}
}

func TestWorkOrderCreateUnknownAsset(t *testing.T) {
	router, _ := setupCMMSTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders",
		map[string]interface{}{"title": "Bad", "asset_id": "no-such-asset"}, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWorkOrderLifecycleHappyPath(t *testing.T) {
	router, db := setupCMMSTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedTestInventoryItem(t, db, "inv-001", "BRG-6204", 10, 12.5)

	wo := createWorkOrder(t, router, token, map[string]interface{}{
		"title":    "Replace bearing",
		"asset_id": "asset-001",
	})
	woID := wo["id"].(string)

	transition(t, router, token, woID, "approved")
	transition(t, router, token, woID, "scheduled")
	transition(t, router, token, woID, "in_progress")

	// 工时：2小时 × 50费率
	w := testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders/"+woID+"/labor",
		map[string]interface{}{"technician_id": "tech-001", "hours": 2}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("add labor: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	labor := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if labor["hourly_rate"] != float64(50) {
		t.Errorf("Expected rate snapshot 50, got %v", labor["hourly_rate"])
	}

	// 配件：3件 × 12.5单价
	w = testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders/"+woID+"/parts",
		map[string]interface{}{"inventory_item_id": "inv-001", "quantity": 3}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("issue parts: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	part := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if part["unit_cost"] != float64(12.5) {
		t.Errorf("Expected unit cost snapshot 12.5, got %v", part["unit_cost"])
	}
	if part["part_number"] != "BRG-6204" {
		t.Errorf("Expected part number snapshot, got %v", part["part_number"])
	}

	// 库存应已扣减
	var item entity.InventoryItem
	if err := db.First(&item, "id = ?", "inv-001").Error; err != nil {
		t.Fatalf("fetch inventory: %v", err)
	}
	if item.Quantity != 7 {
		t.Errorf("Expected quantity 7 after issue, got %v", item.Quantity)
	}

	// 完工：成本汇总 + 完工时间戳
	done := transition(t, router, token, woID, "completed")
	if done["status"] != "completed" {
		t.Errorf("Expected completed, got %v", done["status"])
	}
	if done["date_completed"] == nil {
		t.Error("Expected date_completed to be stamped")
	}
	wantCost := 2*50.0 + 3*12.5
	if done["actual_cost"] != wantCost {
		t.Errorf("Expected actual_cost %v, got %v", wantCost, done["actual_cost"])
	}

	// 终态不再接受迁移
	w = testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders/"+woID+"/transition",
		map[string]interface{}{"status": "in_progress"}, token)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 on transition out of completed, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWorkOrderInvalidTransitions(t *testing.T) {
	router, _ := setupCMMSTest(t)
	token := testutil.DefaultTestToken()

	wo := createWorkOrder(t, router, token, map[string]interface{}{"title": "Fix motor"})
	woID := wo["id"].(string)

	cases := []string{"completed", "scheduled", "in_progress", "on_hold"}
	for _, target := range cases {
		w := testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders/"+woID+"/transition",
			map[string]interface{}{"status": target}, token)
		if w.Code != http.StatusConflict {
			t.Errorf("requested -> %s: expected 409, got %d: %s", target, w.Code, w.Body.String())
		}
	}

	// 未知状态串是参数错误而非迁移冲突
	w := testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders/"+woID+"/transition",
		map[string]interface{}{"status": "done"}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown status: expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWorkOrderCancelReopen(t *testing.T) {
	router, _ := setupCMMSTest(t)
	token := testutil.DefaultTestToken()

	wo := createWorkOrder(t, router, token, map[string]interface{}{"title": "Fix motor"})
	woID := wo["id"].(string)

	transition(t, router, token, woID, "cancelled")

	// cancelled 只能重新打开回 requested
	w := testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders/"+woID+"/transition",
		map[string]interface{}{"status": "approved"}, token)
	if w.Code != http.StatusConflict {
		t.Errorf("cancelled -> approved: expected 409, got %d", w.Code)
	}

	reopened := transition(t, router, token, woID, "requested")
	if reopened["status"] != "requested" {
		t.Errorf("Expected requested after reopen, got %v", reopened["status"])
	}
}

func TestWorkOrderExplicitSchedule(t *testing.T) {
	router, _ := setupCMMSTest(t)
	token := testutil.DefaultTestToken()

	wo := createWorkOrder(t, router, token, map[string]interface{}{"title": "Fix motor"})
	woID := wo["id"].(string)
	transition(t, router, token, woID, "approved")

	w := testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders/"+woID+"/schedule",
		map[string]interface{}{"date": "2024-07-15"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["date_scheduled"] == nil {
		t.Error("Expected date_scheduled to be set")
	}
}

func TestIssuePartsInsufficientStock(t *testing.T) {
	router, db := setupCMMSTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedTestInventoryItem(t, db, "inv-001", "BRG-6204", 5, 12.5)

	wo := createWorkOrder(t, router, token, map[string]interface{}{"title": "Replace bearing"})
	woID := wo["id"].(string)
	transition(t, router, token, woID, "approved")
	transition(t, router, token, woID, "scheduled")
	transition(t, router, token, woID, "in_progress")

	// 超量领用整体失败
	w := testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders/"+woID+"/parts",
		map[string]interface{}{"inventory_item_id": "inv-001", "quantity": 10}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// 失败后库存必须原封不动
	var item entity.InventoryItem
	if err := db.First(&item, "id = ?", "inv-001").Error; err != nil {
		t.Fatalf("fetch inventory: %v", err)
	}
	if item.Quantity != 5 {
		t.Errorf("Expected quantity unchanged at 5, got %v", item.Quantity)
	}

	// 失败不应留下配件明细
	var parts []entity.WorkOrderPart
	db.Where("work_order_id = ?", woID).Find(&parts)
	if len(parts) != 0 {
		t.Errorf("Expected no part records after failed issue, got %d", len(parts))
	}

	// 刚好等于库存量可以领光
	w = testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders/"+woID+"/parts",
		map[string]interface{}{"inventory_item_id": "inv-001", "quantity": 5}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if err := db.First(&item, "id = ?", "inv-001").Error; err != nil {
		t.Fatalf("fetch inventory: %v", err)
	}
	if item.Quantity != 0 {
		t.Errorf("Expected quantity 0, got %v", item.Quantity)
	}

	// 发料应记一条出库流水
	var txs []entity.InventoryTransaction
	db.Where("inventory_item_id = ?", "inv-001").Find(&txs)
	if len(txs) != 1 {
		t.Fatalf("Expected 1 inventory transaction, got %d", len(txs))
	}
	if txs[0].TransactionType != entity.TxTypeIssue {
		t.Errorf("Expected ISSUE transaction, got %v", txs[0].TransactionType)
	}
	if txs[0].Quantity != -5 {
		t.Errorf("Expected quantity -5 in journal, got %v", txs[0].Quantity)
	}
}

func TestIssuePartsOnTerminalWorkOrder(t *testing.T) {
	router, db := setupCMMSTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedTestInventoryItem(t, db, "inv-001", "BRG-6204", 5, 12.5)

	wo := createWorkOrder(t, router, token, map[string]interface{}{"title": "Replace bearing"})
	woID := wo["id"].(string)
	transition(t, router, token, woID, "cancelled")

	w := testutil.DoRequest(router, "POST", "/api/v1/cmms/work-orders/"+woID+"/parts",
		map[string]interface{}{"inventory_item_id": "inv-001", "quantity": 1}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 on cancelled work order, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMaterializedWorkOrderCompletionMarksOccurrence(t *testing.T) {
	router, _ := setupCMMSTest(t)
	token := testutil.DefaultTestToken()

	sched := createSchedule(t, router, token, map[string]interface{}{
		"asset_id":         "asset-001",
		"title":            "Monthly pump inspection",
		"start_date":       "2024-01-01",
		"is_recurring":     true,
		"recurring_period": "monthly",
		"occurrences":      3,
	})
	schedID := sched["id"].(string)

	w := testutil.DoRequest(router, "POST",
		"/api/v1/cmms/pm-schedules/"+schedID+"/occurrences/0/materialize", nil, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	woID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	transition(t, router, token, woID, "approved")
	transition(t, router, token, woID, "scheduled")
	transition(t, router, token, woID, "in_progress")
	transition(t, router, token, woID, "completed")

	// 完成覆盖日期判定：即使期次早已过期也显示 completed
	w = testutil.DoRequest(router, "GET",
		"/api/v1/cmms/pm-schedules/"+schedID+"/occurrences?today=2024-06-01", nil, token)
	occs := testutil.ParseResponse(w)["data"].([]interface{})
	occ0 := occs[0].(map[string]interface{})
	if occ0["status"] != "completed" {
		t.Errorf("Expected occurrence 0 completed, got %v", occ0["status"])
	}
	occ1 := occs[1].(map[string]interface{})
	if occ1["status"] != "overdue" {
		t.Errorf("Expected occurrence 1 overdue, got %v", occ1["status"])
	}
}
